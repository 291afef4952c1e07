package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/yeremiapane/table-order/utils"
)

const (
	subjectPrefix   = "orders."
	subjectWildcard = "orders.>"
	staffSubject    = "orders.staff"
)

// NATSBridge menghubungkan Hub lokal dengan instance lain lewat NATS.
// Setiap event lokal dipublish, event dari instance lain di-deliver ke Hub lokal.
type NATSBridge struct {
	conn   *nats.Conn
	sub    *nats.Subscription
	hub    *Hub
	origin string
}

func NewNATSBridge(url string, hub *Hub) (*NATSBridge, error) {
	conn, err := nats.Connect(url,
		nats.Name("table-order"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				utils.ErrorLogger.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			utils.InfoLogger.Printf("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	b := &NATSBridge{conn: conn, hub: hub, origin: uuid.NewString()}
	b.sub, err = conn.Subscribe(subjectWildcard, b.handle)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to subscribe %s: %w", subjectWildcard, err)
	}

	hub.SetRelay(b)
	utils.InfoLogger.Printf("Realtime bridge connected to NATS %s", conn.ConnectedUrl())
	return b, nil
}

func subjectFor(env Envelope) string {
	if env.Topic == "" {
		return staffSubject
	}
	return subjectPrefix + env.Topic
}

func (b *NATSBridge) Publish(env Envelope) error {
	env.Origin = b.origin
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.conn.Publish(subjectFor(env), data)
}

func (b *NATSBridge) handle(msg *nats.Msg) {
	var env Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		utils.ErrorLogger.Printf("Invalid realtime envelope on %s: %v", msg.Subject, err)
		return
	}
	// event dari instance ini sendiri sudah di-deliver lokal
	if env.Origin == b.origin {
		return
	}
	b.hub.Deliver(env)
}

func (b *NATSBridge) Close() error {
	b.hub.SetRelay(nil)
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			utils.ErrorLogger.Printf("NATS unsubscribe: %v", err)
		}
	}
	return b.conn.Drain()
}
