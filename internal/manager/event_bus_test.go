package manager

import (
	"testing"

	"modelpipe/pkg/types"
)

func TestEventPublisher_EnsureRunRelease_EmitsEvents(t *testing.T) {
	m := New(newFakeRuntime("a.yaml", "b.yaml"))
	pub := NewMemoryPublisher()
	m.SetEventPublisher(pub)
	ctx := testCtx(t)
	if err := m.EnsureServingPath(ctx, "a.yaml"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := m.Run(ctx, []types.Instance{{"x": 1.0}}, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := m.EnsureServingPath(ctx, "b.yaml"); err != nil {
		t.Fatalf("swap: %v", err)
	}
	_ = m.EnsureServingPath(ctx, "nope.yaml")

	want := []string{
		"ensure_start", "ensure_ready",
		"run_done",
		"ensure_start", "session_released", "ensure_ready",
		"ensure_start", "session_released", "ensure_error",
	}
	got := pub.Names()
	if len(got) != len(want) {
		t.Fatalf("events=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events=%v want %v", got, want)
		}
	}
	for _, e := range pub.Events() {
		if e.ID == "" || e.Time.IsZero() || e.Fields == nil {
			t.Fatalf("event not stamped: %+v", e)
		}
	}
}

func TestMultiPublisher_FansOut(t *testing.T) {
	a, b := NewMemoryPublisher(), NewMemoryPublisher()
	MultiPublisher{a, nil, b}.Publish(Event{Name: "x"})
	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Fatalf("expected both publishers to receive the event")
	}
}
