package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"modelpipe/internal/backend"
	"modelpipe/internal/httpapi"
	"modelpipe/internal/manager"
	"modelpipe/internal/pipeapi"
	"modelpipe/internal/protocol"
)

const scalerManifest = `name: scaler
inputs:
  x: {dtype: float64, shape: [-1]}
  w: {dtype: float64, shape: [-1]}
outputs:
  - {name: scaled, op: product, args: [x, w]}
  - {name: x, op: identity, args: [x]}
`

// writeModels writes name -> manifest body files into a temp dir and
// returns their absolute paths in argument order.
func writeModels(t *testing.T, manifests ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i, body := range manifests {
		p := filepath.Join(dir, "model"+string(rune('a'+i))+".yaml")
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write manifest %s: %v", p, err)
		}
		paths = append(paths, p)
	}
	return paths
}

// harness runs the service loop over in-memory pipes with an admin server
// on the side.
type harness struct {
	mgr    *manager.Manager
	admin  *httptest.Server
	w      *protocol.Writer
	r      *protocol.Reader
	in     *io.PipeWriter
	done   chan error
	nextID uint32
}

func newHarness(t *testing.T, pubs ...manager.EventPublisher) *harness {
	t.Helper()
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Runtime:   backend.New(nil),
		Publisher: manager.MultiPublisher(pubs),
	})
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	loop := pipeapi.NewLoop(pipeapi.NewRouter(mgr), pipeapi.LoopConfig{})
	h := &harness{
		mgr:   mgr,
		admin: httptest.NewServer(httpapi.NewMux(mgr, nil)),
		w:     protocol.NewWriter(reqW),
		r:     protocol.NewReader(respR, 0),
		in:    reqW,
		done:  make(chan error, 1),
	}
	go func() {
		err := loop.Serve(context.Background(), reqR, respW)
		_ = respW.CloseWithError(io.EOF)
		h.done <- err
	}()
	t.Cleanup(func() {
		_ = reqW.Close()
		h.admin.Close()
		_ = mgr.Close()
	})
	return h
}

// call sends one request and waits for its response.
func (h *harness) call(t *testing.T, cmd protocol.Command, args ...string) protocol.Response {
	t.Helper()
	h.nextID++
	req := protocol.Request{Ref: h.nextID, Cmd: cmd}
	for _, a := range args {
		req.Args = append(req.Args, []byte(a))
	}
	if err := h.w.WriteRequest(req); err != nil {
		t.Fatalf("write request: %v", err)
	}
	resp, err := h.r.ReadResponse()
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.Ref != req.Ref {
		t.Fatalf("ref mismatch: got %d want %d", resp.Ref, req.Ref)
	}
	return resp
}

// finish closes the request stream and returns the loop's result.
func (h *harness) finish(t *testing.T) error {
	t.Helper()
	_ = h.in.Close()
	select {
	case err := <-h.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("loop did not stop")
		return nil
	}
}

func httpGetJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}
