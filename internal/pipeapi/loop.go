package pipeapi

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"modelpipe/internal/protocol"
)

// Loop reads requests from in and writes responses to out, one at a time.
type Loop struct {
	router      *Router
	maxArgBytes int64
	log         zerolog.Logger
}

// LoopConfig tunes a Loop.
type LoopConfig struct {
	// MaxArgBytes bounds a declared argument length (0 = protocol default).
	MaxArgBytes int64
	Logger      *zerolog.Logger
}

// NewLoop builds a service loop around router.
func NewLoop(router *Router, cfg LoopConfig) *Loop {
	l := &Loop{router: router, maxArgBytes: cfg.MaxArgBytes, log: zerolog.Nop()}
	if cfg.Logger != nil {
		l.log = cfg.Logger.With().Str("component", "loop").Logger()
	}
	return l
}

// Serve runs until in reaches end of stream, ctx is canceled or a fatal
// error occurs. A clean end of stream returns nil. Fatal errors are
// returned without writing anything for the offending request; that
// includes malformed frames, protocol errors and failed writes.
//
// Cancellation is only observed between requests; a blocked read is
// released by closing in.
func (l *Loop) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	r := protocol.NewReader(in, l.maxArgBytes)
	w := protocol.NewWriter(out)
	l.log.Info().Msg("service loop started")
	var handled uint64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := r.ReadRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				l.log.Info().Uint64("requests", handled).Msg("input closed")
				return nil
			}
			fatalTotal.WithLabelValues("malformed_frame").Inc()
			l.log.Error().Err(err).Msg("read request")
			return err
		}
		resp, err := l.router.Handle(ctx, req)
		if err != nil {
			return err
		}
		if err := w.WriteResponse(resp); err != nil {
			fatalTotal.WithLabelValues("write").Inc()
			l.log.Error().Uint32("ref", req.Ref).Err(err).Msg("write response")
			return fmt.Errorf("write response %d: %w", req.Ref, err)
		}
		handled++
	}
}
