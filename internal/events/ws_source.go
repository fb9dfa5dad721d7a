package events

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"collabdesk/pkg/logger"
)

const (
	wsReadDeadline   = 90 * time.Second
	wsPingInterval   = 30 * time.Second
	wsReconnectDelay = 5 * time.Second
)

// WebSocketSource consumes the platform's push stream. On connection loss
// it reconnects after a fixed delay until the context is cancelled; the
// engine's state machine never sees the difference.
type WebSocketSource struct {
	url    string
	token  string
	out    chan RemoteEvent
	logger *logger.Logger
}

func NewWebSocketSource(url, token string, l *logger.Logger) *WebSocketSource {
	return &WebSocketSource{
		url:    url,
		token:  token,
		out:    make(chan RemoteEvent, 64),
		logger: l,
	}
}

func (s *WebSocketSource) Events() <-chan RemoteEvent {
	return s.out
}

func (s *WebSocketSource) Start(ctx context.Context) error {
	go s.run(ctx)
	return nil
}

func (s *WebSocketSource) run(ctx context.Context) {
	defer close(s.out)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.connectAndRead(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warnf("event stream disconnected: %s, reconnecting in %s", err, wsReconnectDelay)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wsReconnectDelay):
		}
	}
}

func (s *WebSocketSource) connectAndRead(ctx context.Context) error {
	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	})

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Debugf("skipping malformed stream frame: %s", err)
			continue
		}
		evt, ok := DecodeEnvelope(env)
		if !ok {
			continue
		}
		select {
		case s.out <- evt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
