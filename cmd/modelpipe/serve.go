package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"modelpipe/internal/backend"
	"modelpipe/internal/config"
	"modelpipe/internal/httpapi"
	"modelpipe/internal/images"
	"modelpipe/internal/manager"
	"modelpipe/internal/pipeapi"
)

const shutdownTimeout = 5 * time.Second

// serve wires the components and runs the service loop until in is
// exhausted, a fatal error occurs or ctx is canceled.
func serve(ctx context.Context, cfg config.Config, in io.Reader, out, errOut io.Writer) error {
	log, err := newLogger(errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	var publishers manager.MultiPublisher
	var admin *adminServer
	if cfg.AdminAddr != "" {
		sse, err := httpapi.NewSSEPublisher(10 * time.Minute)
		if err != nil {
			return err
		}
		publishers = append(publishers, sse)
		admin = &adminServer{events: sse}
	}

	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Runtime:    backend.New(&log),
		Logger:     &log,
		Publisher:  publishers,
		MaxHistory: cfg.MaxHistory,
	})
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Warn().Err(err).Msg("release session")
		}
	}()

	if admin != nil {
		if err := admin.start(ctx, cfg, mgr, log); err != nil {
			return err
		}
		defer admin.stop(log)
	}

	router := pipeapi.NewRouter(mgr,
		pipeapi.WithLogger(log),
		pipeapi.WithImages(images.NewScanner(cfg.ImageExtensions)),
	)
	loop := pipeapi.NewLoop(router, pipeapi.LoopConfig{MaxArgBytes: cfg.MaxArgBytes, Logger: &log})

	// A blocked read cannot observe ctx, so the loop runs on its own
	// goroutine and a signal ends serve without waiting for it.
	done := make(chan error, 1)
	go func() { done <- loop.Serve(ctx, in, out) }()
	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("service loop stopped")
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
		return nil
	}
}

type adminServer struct {
	events *httpapi.SSEPublisher
	srv    *http.Server
}

func (a *adminServer) start(ctx context.Context, cfg config.Config, mgr *manager.Manager, log zerolog.Logger) error {
	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
	ln, err := net.Listen("tcp", cfg.AdminAddr)
	if err != nil {
		return err
	}
	a.srv = &http.Server{
		Handler:           httpapi.NewMux(mgr, a.events),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("admin listening")
		if err := a.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("admin server error")
		}
	}()
	return nil
}

func (a *adminServer) stop(log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.events.Shutdown(ctx); err != nil {
		log.Debug().Err(err).Msg("event stream shutdown")
	}
	if err := a.srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("admin shutdown")
	}
}
