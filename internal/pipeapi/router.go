// Package pipeapi dispatches decoded protocol requests to the session
// manager and runs the sequential read/dispatch/write loop over a pair of
// byte streams.
package pipeapi

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"modelpipe/internal/images"
	"modelpipe/internal/manager"
	"modelpipe/internal/protocol"
)

// ImageSource reads the index-th image below dir.
type ImageSource interface {
	Read(dir string, index int) ([]byte, string, error)
}

// Router maps each command to its handler.
type Router struct {
	mgr    *manager.Manager
	images ImageSource
	log    zerolog.Logger
}

// Option customizes a Router.
type Option func(*Router)

// WithLogger sets the router's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(rt *Router) { rt.log = l.With().Str("component", "router").Logger() }
}

// WithImages replaces the image source used by READ_IMAGE.
func WithImages(src ImageSource) Option {
	return func(rt *Router) {
		if src != nil {
			rt.images = src
		}
	}
}

// NewRouter builds a router around mgr. READ_IMAGE defaults to a scanner
// with the default image extensions.
func NewRouter(mgr *manager.Manager, opts ...Option) *Router {
	rt := &Router{mgr: mgr, images: images.NewScanner(nil), log: zerolog.Nop()}
	for _, o := range opts {
		o(rt)
	}
	return rt
}

// Handle answers req. Recoverable failures come back as an ERROR response
// with a nil error. A non-nil error is always fatal and the returned
// response must not be written.
func (rt *Router) Handle(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	start := time.Now()
	resp, err := rt.dispatch(ctx, req)
	cmd := req.Cmd.String()
	if err != nil {
		if IsFatal(err) {
			fatalTotal.WithLabelValues("protocol").Inc()
			rt.log.Error().Uint32("ref", req.Ref).Str("cmd", cmd).Err(err).Msg("fatal request")
			return protocol.Response{}, err
		}
		kind := errorKind(err)
		requestsTotal.WithLabelValues(cmd, kind+"_error").Inc()
		requestDuration.WithLabelValues(cmd).Observe(time.Since(start).Seconds())
		rt.log.Warn().Uint32("ref", req.Ref).Str("cmd", cmd).Str("kind", kind).Err(err).Msg("request failed")
		return protocol.Error(req.Ref, err.Error()), nil
	}
	requestsTotal.WithLabelValues(cmd, "ok").Inc()
	requestDuration.WithLabelValues(cmd).Observe(time.Since(start).Seconds())
	rt.log.Debug().Uint32("ref", req.Ref).Str("cmd", cmd).Int("parts", len(resp.Parts)).Dur("dur", time.Since(start)).Msg("request done")
	return resp, nil
}

func (rt *Router) dispatch(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	switch req.Cmd {
	case protocol.CmdTestProtocol:
		return rt.testProtocol(req)
	case protocol.CmdReadImage:
		return rt.readImage(req)
	case protocol.CmdLoadModel:
		return rt.loadModel(ctx, req)
	case protocol.CmdRunModel:
		return rt.runModel(ctx, req, false)
	case protocol.CmdRunModelWithStats:
		return rt.runModel(ctx, req, true)
	case protocol.CmdModelInfo:
		return rt.modelInfo(ctx, req)
	case protocol.CmdModelStats:
		return rt.modelStats(ctx, req)
	default:
		return protocol.Response{}, protocolError(req, "unknown command")
	}
}

// expectArgs enforces an exact argument count.
func expectArgs(req protocol.Request, n int) error {
	if len(req.Args) != n {
		return protocolError(req, "expected %d arguments, got %d", n, len(req.Args))
	}
	return nil
}
