package wshandler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/metrics"
	ws "github.com/Psychoriddler/Emergilink-prototype/pkg/wsHub"
)

const pingInterval = 30 * time.Second

// Feed pushes alert publications and SOS status changes to every subscriber.
type Feed struct {
	hub      *ws.ConnectionHub
	upgrader websocket.Upgrader
	l        logger.Logger
}

func NewFeed(hub *ws.ConnectionHub, serviceName string, l logger.Logger) *Feed {
	hub.OnChange = func(n int) {
		metrics.WebSocketConnectionsGauge.WithLabelValues(serviceName).Set(float64(n))
	}

	return &Feed{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// mobile clients connect from arbitrary origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		l: l,
	}
}

// Broadcast implements the broadcaster the alert manager and SOS dispatcher call.
func (f *Feed) Broadcast(ctx context.Context, msg models.FeedMessage) {
	sent := f.hub.Broadcast(ctx, msg)
	f.l.Debug(ctx, "feed message broadcast", "type", msg.Type.String(), "clients", sent)
}

// ServeAlerts godoc
// @Summary      Live feed
// @Description  Websocket stream of ALERT_PUBLISHED, SOS_STATUS and BOOKING_STATUS messages
// @Tags         Alerts
// @Router       /ws/alerts [get]
func (f *Feed) ServeAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_alert_feed")

	wsConn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.l.Warn(ctx, "websocket upgrade failed", "error", err.Error())
		return
	}

	conn := ws.NewConn(context.WithoutCancel(ctx), uuid.NewString(), wsConn)
	if err := f.hub.Add(conn); err != nil {
		f.l.Error(ctx, "failed to register websocket client", err)
		_ = wsConn.Close()
		return
	}

	_ = conn.Send(models.FeedMessage{Type: types.FeedConnected, Data: map[string]string{"client_id": conn.ID()}})
	go f.keepAlive(conn)

	if err := conn.Listen(); err != nil {
		f.l.Debug(ctx, "websocket client left", "client_id", conn.ID(), "reason", err.Error())
	}
	_ = f.hub.Delete(conn.ID())
}

func (f *Feed) keepAlive(conn *ws.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-conn.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				_ = f.hub.Delete(conn.ID())
				return
			}
		}
	}
}
