package host_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fieldsim/internal/host"
	"github.com/san-kum/fieldsim/internal/surface"
)

func TestMount(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Layer mount lifecycle")
}

var _ = Describe("Mount and Unmount", func() {
	var (
		rec  *surface.Recorder
		loop *host.Loop
	)

	BeforeEach(func() {
		rec = surface.NewRecorder()
		loop = host.NewLoop(host.Viewport{Width: 800, Height: 600, DPR: 2}, rec)
	})

	It("registers one frame, two listeners and one layer", func() {
		l, err := host.Mount(loop, host.Background, 0.2)
		Expect(err).NotTo(HaveOccurred())
		Expect(loop.Pending()).To(Equal(1))
		Expect(loop.Listeners()).To(Equal(2))
		Expect(loop.Layers()).To(ConsistOf(l))
	})

	It("leaves nothing behind across mount, unmount, mount", func() {
		for _, v := range []host.Variant{host.Background, host.MouseFollow, host.Trail} {
			l, err := host.Mount(loop, v, 0.6)
			Expect(err).NotTo(HaveOccurred())
			loop.Run(5)
			l.Unmount()

			Expect(loop.Pending()).To(BeZero(), "variant %s", v)
			Expect(loop.Listeners()).To(BeZero(), "variant %s", v)
			Expect(loop.Layers()).To(BeEmpty(), "variant %s", v)
			Expect(l.Surface().Attached()).To(BeFalse())
		}

		l, err := host.Mount(loop, host.Background, 0.2)
		Expect(err).NotTo(HaveOccurred())
		loop.Run(2)
		Expect(l.Frames()).To(Equal(2))
	})

	It("is idempotent", func() {
		l, err := host.Mount(loop, host.MouseFollow, 0.6)
		Expect(err).NotTo(HaveOccurred())
		l.Unmount()
		Expect(l.Unmount).NotTo(Panic())
		Expect(l.Detached()).To(BeTrue())
		Expect(loop.Pending()).To(BeZero())
	})

	It("ignores pointer and resize events after teardown", func() {
		l, err := host.Mount(loop, host.Background, 0.2)
		Expect(err).NotTo(HaveOccurred())
		l.Unmount()

		rec.Reset()
		loop.Move(10, 10)
		loop.Resize(host.Viewport{Width: 10, Height: 10, DPR: 1})
		loop.Run(3)
		Expect(rec.Ops()).To(BeEmpty())
		Expect(l.Tracker().Seq()).To(BeZero())
	})

	Context("when the host cannot cancel a requested frame", func() {
		BeforeEach(func() {
			loop.IgnoreCancel = true
		})

		It("drops the queued frame at the teardown sentinel", func() {
			l, err := host.Mount(loop, host.MouseFollow, 0.6)
			Expect(err).NotTo(HaveOccurred())
			loop.Advance()
			Expect(l.Frames()).To(Equal(1))

			l.Unmount()
			rec.Reset()

			Expect(loop.Advance()).To(Equal(1))
			Expect(rec.Ops()).To(BeEmpty())
			Expect(l.Frames()).To(Equal(1))
			Expect(loop.Pending()).To(BeZero())
		})
	})
})
