package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-order/middlewares"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/realtime"
	"github.com/yeremiapane/table-order/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// OrderReader -> sumber snapshot order untuk stream customer
type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (models.Order, error)
}

// RealtimeController -> endpoint websocket untuk staff/KDS dan tracker customer
type RealtimeController struct {
	Hub           *realtime.Hub
	Orders        OrderReader
	AllowedOrigin string
	upgrader      websocket.Upgrader
}

func NewRealtimeController(hub *realtime.Hub, orders OrderReader, allowedOrigin string) *RealtimeController {
	rc := &RealtimeController{Hub: hub, Orders: orders, AllowedOrigin: allowedOrigin}
	rc.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     rc.checkOrigin,
	}
	return rc
}

func (rc *RealtimeController) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || rc.AllowedOrigin == "" || rc.AllowedOrigin == "*" {
		return true
	}
	return strings.EqualFold(origin, rc.AllowedOrigin)
}

// StaffStream -> semua event order/table/menu untuk dashboard staff & KDS
func (rc *RealtimeController) StaffStream(c *gin.Context) {
	ws, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	sub := rc.Hub.SubscribeStaff()
	utils.InfoLogger.Printf("Staff websocket connected (role=%s)", c.GetString(middlewares.ContextRole))
	rc.pump(ws, sub, nil)
}

// OpenOrderStream subscribes to one order and then reads its snapshot. Any write
// after the subscription is queued on the subscription; writes the snapshot
// already contains arrive again with a version the client has seen.
func (rc *RealtimeController) OpenOrderStream(ctx context.Context, orderID string) (*realtime.Subscription, models.Order, error) {
	id, ok := ordering.ParseID(orderID)
	if !ok {
		return nil, models.Order{}, ordering.ErrInvalidOrderID
	}

	sub := rc.Hub.SubscribeOrder(id.String())
	order, err := rc.Orders.GetOrder(ctx, orderID)
	if err != nil {
		rc.Hub.Unsubscribe(sub)
		return nil, models.Order{}, err
	}
	return sub, order, nil
}

// OrderStream -> event untuk satu order saja, snapshot dikirim lebih dulu
func (rc *RealtimeController) OrderStream(c *gin.Context) {
	sub, order, err := rc.OpenOrderStream(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ws, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		rc.Hub.Unsubscribe(sub)
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	snapshot, err := json.Marshal(realtime.Message{Event: realtime.EventOrderSnapshot, Data: order})
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling snapshot for %s: %v", order.ID, err)
		snapshot = nil
	}
	rc.pump(ws, sub, snapshot)
}

// pump menjalankan read loop (untuk pong/close) dan write loop sampai salah satu berhenti
func (rc *RealtimeController) pump(ws *websocket.Conn, sub *realtime.Subscription, first []byte) {
	done := make(chan struct{})
	defer func() {
		rc.Hub.Unsubscribe(sub)
		ws.Close()
	}()

	go func() {
		defer close(done)
		ws.SetReadLimit(512)
		ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if first != nil {
		ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteMessage(websocket.TextMessage, first); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-sub.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub ditutup (shutdown)
				ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
