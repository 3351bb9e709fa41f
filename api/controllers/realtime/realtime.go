// Package realtime streams marketplace events to websocket clients.
package realtime

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/angelmondragon/marketplace-backend/api/responses"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/events"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

const (
	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 30 * time.Second
	maxInboundMessage   = 4096
)

type subscriber interface {
	Subscribe() (*events.Subscription, error)
}

// Frame is the message written for every event.
type Frame struct {
	Event events.Type `json:"event"`
	Data  any         `json:"data"`
}

// Handler upgrades the request and relays bus events until either side
// goes away. Clients never send anything meaningful; inbound frames are
// read only to observe pongs and close messages.
func Handler(bus subscriber, cfg config.RealtimeConfig, cors config.CORSConfig, logg *logger.Logger) http.HandlerFunc {
	if logg == nil {
		logg = logger.Nop()
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	pingInterval := cfg.PingInterval
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	pongWait := pingInterval + writeTimeout

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cors.AllowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if bus == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event bus unavailable"))
			return
		}
		sub, err := bus.Subscribe()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe to events"))
			return
		}
		defer sub.Close()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the HTTP error.
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "realtime.upgrade_failed")
			return
		}
		defer conn.Close()

		ctx := logg.WithField(context.WithoutCancel(r.Context()), "remote_addr", r.RemoteAddr)
		logg.Debug(ctx, "realtime.connected")

		done := make(chan struct{})
		go readPump(conn, pongWait, done)

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case evt, ok := <-sub.Events():
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
						time.Now().Add(writeTimeout))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(Frame{Event: evt.Type, Data: evt.Data}); err != nil {
					logg.Debug(logg.WithField(ctx, "error", err.Error()), "realtime.write_failed")
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					logg.Debug(logg.WithField(ctx, "error", err.Error()), "realtime.ping_failed")
					return
				}
			case <-done:
				logg.Debug(ctx, "realtime.disconnected")
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn, pongWait time.Duration, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxInboundMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
		switch origin {
		case "":
			continue
		case "*":
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}
