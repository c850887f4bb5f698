package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tmaxmax/go-sse"

	"modelpipe/internal/manager"
)

// eventsTopic is the single topic all manager events are published on.
const eventsTopic = "manager"

// eventPayload is the JSON body of one SSE message.
type eventPayload struct {
	ID     string         `json:"id"`
	Time   time.Time      `json:"time"`
	Name   string         `json:"name"`
	Path   string         `json:"path,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// SSEPublisher implements manager.EventPublisher by fanning events out to
// /events subscribers. Recent events are replayed to clients that
// reconnect with Last-Event-ID.
type SSEPublisher struct {
	provider *sse.Joe
}

// NewSSEPublisher keeps events replayable for replayTTL.
func NewSSEPublisher(replayTTL time.Duration) (*SSEPublisher, error) {
	if replayTTL <= 0 {
		replayTTL = 10 * time.Minute
	}
	replayer, err := sse.NewValidReplayer(replayTTL, false)
	if err != nil {
		return nil, err
	}
	return &SSEPublisher{provider: &sse.Joe{Replayer: replayer}}, nil
}

// Publish implements manager.EventPublisher.
func (p *SSEPublisher) Publish(e manager.Event) {
	payload, err := json.Marshal(eventPayload{ID: e.ID, Time: e.Time, Name: e.Name, Path: e.Path, Fields: e.Fields})
	if err != nil {
		zlog.Warn().Err(err).Str("event", e.Name).Msg("encode event")
		return
	}
	msg := &sse.Message{ID: sse.ID(e.ID), Type: sse.Type(e.Name)}
	msg.AppendData(string(payload))
	if err := p.provider.Publish(msg, []string{eventsTopic}); err != nil {
		zlog.Debug().Err(err).Str("event", e.Name).Msg("publish event")
	}
}

// Shutdown disconnects every subscriber.
func (p *SSEPublisher) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}

type channelMessageWriter struct {
	ch chan *sse.Message
}

func (w *channelMessageWriter) Send(message *sse.Message) error {
	select {
	case w.ch <- message.Clone():
		return nil
	default:
		return errors.New("sse subscriber is backpressured")
	}
}

func (w *channelMessageWriter) Flush() error {
	return nil
}

// ServeHTTP streams events until the client goes away or the server base
// context is canceled.
func (p *SSEPublisher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := joinContexts(r.Context(), serverBaseCtx)
	defer cancel()

	lastEventID := strings.TrimSpace(r.Header.Get("Last-Event-ID"))
	if lastEventID == "" {
		lastEventID = strings.TrimSpace(r.URL.Query().Get("lastEventId"))
	}

	sess, err := sse.Upgrade(w, r)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sseSubscribers.Inc()
	defer sseSubscribers.Dec()

	ready := &sse.Message{}
	ready.AppendComment("ready")
	if err := sess.Send(ready); err != nil {
		return
	}
	_ = sess.Flush()

	writer := &channelMessageWriter{ch: make(chan *sse.Message, 128)}
	sub := sse.Subscription{Client: writer, Topics: []string{eventsTopic}}
	if lastEventID != "" {
		sub.LastEventID = sse.ID(lastEventID)
	}
	subscribeErr := make(chan error, 1)
	go func() {
		subscribeErr <- p.provider.Subscribe(ctx, sub)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-subscribeErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				zlog.Debug().Err(err).Msg("event subscription ended")
			}
			return
		case message := <-writer.ch:
			if err := sess.Send(message); err != nil {
				return
			}
			_ = sess.Flush()
		}
	}
}
