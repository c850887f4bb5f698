package pipeapi

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"modelpipe/internal/manager"
	"modelpipe/internal/protocol"
	"modelpipe/pkg/types"
)

// testProtocol echoes every argument back unchanged.
func (rt *Router) testProtocol(req protocol.Request) (protocol.Response, error) {
	return protocol.OK(req.Ref, req.Args...), nil
}

// readImage answers with the image bytes and the image's relative name.
func (rt *Router) readImage(req protocol.Request) (protocol.Response, error) {
	if err := expectArgs(req, 2); err != nil {
		return protocol.Response{}, err
	}
	idx, err := strconv.Atoi(strings.TrimSpace(string(req.Args[1])))
	if err != nil {
		return protocol.Response{}, manager.ErrBadRequest("invalid image index %q", req.Args[1])
	}
	data, name, err := rt.images.Read(string(req.Args[0]), idx)
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK(req.Ref, data, []byte(name)), nil
}

func (rt *Router) loadModel(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if err := expectArgs(req, 1); err != nil {
		return protocol.Response{}, err
	}
	if err := rt.mgr.EnsureServingPath(ctx, string(req.Args[0])); err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK(req.Ref), nil
}

func (rt *Router) runModel(ctx context.Context, req protocol.Request, withStats bool) (protocol.Response, error) {
	if err := expectArgs(req, 2); err != nil {
		return protocol.Response{}, err
	}
	if err := rt.mgr.EnsureServingPath(ctx, string(req.Args[0])); err != nil {
		return protocol.Response{}, err
	}
	var instances []types.Instance
	if err := json.Unmarshal(req.Args[1], &instances); err != nil {
		return protocol.Response{}, manager.ErrBadRequest("decode instances: %v", err)
	}
	records, err := rt.mgr.Run(ctx, instances, withStats)
	if err != nil {
		return protocol.Response{}, err
	}
	out, err := marshal(records)
	if err != nil {
		return protocol.Response{}, err
	}
	if !withStats {
		return protocol.OK(req.Ref, out), nil
	}
	st, err := rt.mgr.Stats()
	if err != nil {
		return protocol.Response{}, err
	}
	sb, err := marshal(st)
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK(req.Ref, out, sb), nil
}

func (rt *Router) modelInfo(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if err := expectArgs(req, 1); err != nil {
		return protocol.Response{}, err
	}
	if err := rt.mgr.EnsureServingPath(ctx, string(req.Args[0])); err != nil {
		return protocol.Response{}, err
	}
	info, err := rt.mgr.Info()
	if err != nil {
		return protocol.Response{}, err
	}
	b, err := marshal(info)
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK(req.Ref, b), nil
}

func (rt *Router) modelStats(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if err := expectArgs(req, 1); err != nil {
		return protocol.Response{}, err
	}
	if err := rt.mgr.EnsureServingPath(ctx, string(req.Args[0])); err != nil {
		return protocol.Response{}, err
	}
	st, err := rt.mgr.Stats()
	if err != nil {
		return protocol.Response{}, err
	}
	b, err := marshal(st)
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK(req.Ref, b), nil
}

// marshal encodes v as JSON. Outputs may carry values the encoder rejects
// (NaN, Inf); that is reported as a runtime error.
func marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, manager.ErrRuntime("encode response", err)
	}
	return b, nil
}
