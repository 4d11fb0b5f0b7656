// Package server renders particle frames over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/export"
	"github.com/san-kum/fieldsim/internal/surface"
)

const (
	// MaxTicks caps how many frames a single request may simulate.
	MaxTicks = 600
	// MaxSide caps the logical width and height of a requested frame. The
	// device frame (size times dpr) may cover at most MaxSide*MaxSide pixels.
	MaxSide = 4096
	MaxDPR  = 4

	DefaultPreset = "hero"
	DefaultTicks  = 120
)

var (
	ErrBadQuery = errors.New("server: bad query")

	// Background is the page colour frames are composited over.
	Background = color.NRGBA{R: 12, G: 10, B: 9, A: 255}
)

type Server struct {
	router chi.Router
	log    *slog.Logger
}

func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{router: chi.NewRouter(), log: log}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogger)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/presets", s.handlePresets)
	s.router.Get("/frame.svg", s.handleSVG)
	s.router.Get("/frame.png", s.handlePNG)
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		s.log.Warn("write failed", "err", err)
	}
}

type presetInfo struct {
	Name    string  `json:"name"`
	Variant string  `json:"variant"`
	Opacity float64 `json:"opacity"`
	Count   int     `json:"count"`
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	names := config.ListPresets()
	out := make([]presetInfo, 0, len(names))
	for _, name := range names {
		cfg := config.GetPreset(name)
		out = append(out, presetInfo{Name: name, Variant: cfg.Variant, Opacity: cfg.Opacity, Count: cfg.Count})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.log.Warn("encode presets", "err", err)
	}
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	cfg, err := frameConfig(r.URL.Query())
	if err != nil {
		s.fail(w, err)
		return
	}
	acq := &export.SVGAcquirer{Background: Background, Opacity: cfg.Opacity}
	res, err := experiment.Run(r.Context(), cfg, acq)
	if res != nil {
		defer res.Close()
	}
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := acq.Last.WriteTo(w); err != nil {
		s.log.Warn("write svg", "err", err)
	}
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	cfg, err := frameConfig(r.URL.Query())
	if err != nil {
		s.fail(w, err)
		return
	}
	res, err := experiment.Run(r.Context(), cfg, surface.RasterAcquirer)
	if res != nil {
		defer res.Close()
	}
	if err != nil {
		s.fail(w, err)
		return
	}

	raster, ok := res.Layer.Surface().Context().(*surface.Raster)
	if !ok {
		s.fail(w, surface.ErrContextUnavailable)
		return
	}
	img := export.Flatten(Background, export.Layer{Image: raster.Image(), Opacity: cfg.Opacity})

	w.Header().Set("Content-Type", "image/png")
	if err := export.WritePNG(w, img); err != nil {
		s.log.Warn("write png", "err", err)
	}
}

// fail maps an error to a status code: bad input is 400, an unknown preset
// 404, a cancelled request 503 and anything else 500.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, config.ErrUnknownPreset):
		status = http.StatusNotFound
	case errors.Is(err, ErrBadQuery), errors.Is(err, config.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("frame failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

// frameConfig builds a run config from the query: the preset first, then
// any of variant, width, height, dpr, ticks, seed and px/py on top. A pointer
// position pins the pointer there for the whole run.
func frameConfig(q url.Values) (*config.Config, error) {
	name := q.Get("preset")
	if name == "" {
		name = DefaultPreset
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownPreset, name)
	}
	cfg.Ticks = DefaultTicks

	if v := q.Get("variant"); v != "" {
		cfg.Variant = v
	}
	var errs []error
	num := func(key string, dst *float64) {
		if v := q.Get(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				errs = append(errs, fmt.Errorf("%w: %s=%q", ErrBadQuery, key, v))
				return
			}
			*dst = f
		}
	}
	num("width", &cfg.Viewport.Width)
	num("height", &cfg.Viewport.Height)
	num("dpr", &cfg.Viewport.DPR)

	if v := q.Get("ticks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > MaxTicks {
			errs = append(errs, fmt.Errorf("%w: ticks=%q, want 0..%d", ErrBadQuery, v, MaxTicks))
		} else {
			cfg.Ticks = n
		}
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: seed=%q", ErrBadQuery, v))
		} else {
			cfg.Seed = n
		}
	}
	if q.Has("px") || q.Has("py") {
		num("px", &cfg.Pointer.X)
		num("py", &cfg.Pointer.Y)
		cfg.Pointer.Orbit = 0
		cfg.Pointer.MoveEvery = 1
	}

	if cfg.Viewport.Width > MaxSide || cfg.Viewport.Height > MaxSide {
		errs = append(errs, fmt.Errorf("%w: frame larger than %d", ErrBadQuery, MaxSide))
	}
	if cfg.Viewport.DPR > MaxDPR {
		errs = append(errs, fmt.Errorf("%w: dpr above %d", ErrBadQuery, MaxDPR))
	}
	vp := cfg.Viewport
	if vp.Width*vp.DPR*vp.Height*vp.DPR > MaxSide*MaxSide {
		errs = append(errs, fmt.Errorf("%w: device frame larger than %dx%d pixels", ErrBadQuery, MaxSide, MaxSide))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ListenAndServe serves h on addr until ctx is done, then shuts down with a
// five second grace period.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	log.Info("stopped")
	return nil
}
