package realtime

import (
	"encoding/json"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
)

// Event types
const (
	EventOrderInsert = "order_insert"
	EventOrderUpdate = "order_update"
	EventTableCreate = "table_create"
	EventTableUpdate = "table_update"
	EventTableDelete = "table_delete"
	EventMenuUpdate  = "menu_update"
)

// EventOrderSnapshot dikirim sekali saat client websocket baru tersambung
const EventOrderSnapshot = "order_snapshot"

const (
	defaultBuffer = 32
	// jumlah order yang versinya diingat untuk dedup, yang paling lama tidak aktif dibuang dulu
	versionMemory = 4096
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Envelope adalah pesan yang sudah di-marshal beserta metadata untuk dedup.
// Topic berisi order id untuk event order, kosong untuk event staff-only.
type Envelope struct {
	Origin  string          `json:"origin,omitempty"`
	Topic   string          `json:"topic,omitempty"`
	Version uint            `json:"version,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Relay forwards envelopes to other instances.
type Relay interface {
	Publish(env Envelope) error
}

type Subscription struct {
	C       <-chan []byte
	ch      chan []byte
	orderID string
	staff   bool
}

func (s *Subscription) wants(env Envelope) bool {
	return s.staff || (env.Topic != "" && env.Topic == s.orderID)
}

// Hub menampung semua subscriber realtime: staff (semua event) dan
// customer (hanya event untuk satu order).
type Hub struct {
	mu       sync.Mutex
	subs     map[*Subscription]struct{}
	versions *lru.Cache
	relay    Relay
	buffer   int
}

func NewHub() *Hub {
	return &Hub{
		subs:     make(map[*Subscription]struct{}),
		versions: lru.New(versionMemory),
		buffer:   defaultBuffer,
	}
}

func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.relay = r
}

// SubscribeStaff -> menerima semua event
func (h *Hub) SubscribeStaff() *Subscription {
	return h.subscribe(&Subscription{staff: true})
}

// SubscribeOrder -> hanya event untuk orderID
func (h *Hub) SubscribeOrder(orderID string) *Subscription {
	return h.subscribe(&Subscription{orderID: orderID})
}

func (h *Hub) subscribe(s *Subscription) *Subscription {
	s.ch = make(chan []byte, h.buffer)
	s.C = s.ch

	h.mu.Lock()
	h.subs[s] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()

	utils.InfoLogger.Debugf("Realtime subscriber added (staff=%t order=%s), total %d", s.staff, s.orderID, count)
	return s
}

// Unsubscribe removes s and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close -> melepas semua subscriber, dipakai saat shutdown
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
}

// BroadcastOrderInsert -> order baru, hanya relevan untuk staff dan subscriber order tsb
func (h *Hub) BroadcastOrderInsert(order models.Order) {
	h.publishOrder(EventOrderInsert, order)
}

// BroadcastOrderUpdate -> perubahan status/item/waiter pada order
func (h *Hub) BroadcastOrderUpdate(order models.Order) {
	h.publishOrder(EventOrderUpdate, order)
}

func (h *Hub) BroadcastTableCreate(table models.Table) {
	h.BroadcastMessage(Message{Event: EventTableCreate, Data: table})
}

func (h *Hub) BroadcastTableUpdate(table models.Table) {
	h.BroadcastMessage(Message{Event: EventTableUpdate, Data: table})
}

func (h *Hub) BroadcastTableDelete(table models.Table) {
	h.BroadcastMessage(Message{Event: EventTableDelete, Data: map[string]interface{}{"id": table.ID}})
}

func (h *Hub) BroadcastMenuUpdate(item models.MenuItem) {
	h.BroadcastMessage(Message{Event: EventMenuUpdate, Data: item})
}

// BroadcastMessage -> event untuk staff saja, tanpa dedup
func (h *Hub) BroadcastMessage(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}
	h.publish(Envelope{Payload: payload})
}

func (h *Hub) publishOrder(event string, order models.Order) {
	payload, err := json.Marshal(Message{Event: event, Data: order})
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling order %s: %v", order.ID, err)
		return
	}
	h.publish(Envelope{
		Topic:   order.ID.String(),
		Version: order.Version,
		Payload: payload,
	})
}

func (h *Hub) publish(env Envelope) {
	if !h.Deliver(env) {
		return
	}

	h.mu.Lock()
	relay := h.relay
	h.mu.Unlock()

	if relay != nil {
		if err := relay.Publish(env); err != nil {
			utils.ErrorLogger.Printf("Error relaying event for %q: %v", env.Topic, err)
		}
	}
}

// Deliver sends env to local subscribers only. Order events whose version is
// not newer than the last delivered one for the same order are dropped, so
// push, relay and backfill copies of one write reach each client once.
// It reports whether the envelope was delivered.
func (h *Hub) Deliver(env Envelope) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if env.Topic != "" && env.Version > 0 {
		if last, ok := h.versions.Get(env.Topic); ok && env.Version <= last.(uint) {
			return false
		}
		h.versions.Add(env.Topic, env.Version)
	}

	for s := range h.subs {
		if !s.wants(env) {
			continue
		}
		select {
		case s.ch <- env.Payload:
		default:
			// client lambat, pesan dibuang; client akan backfill sendiri
			utils.ErrorLogger.Printf("Dropping realtime message for slow subscriber (order=%s)", s.orderID)
		}
	}
	return true
}

// TrackedOrders -> jumlah order yang versinya sedang diingat
func (h *Hub) TrackedOrders() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.versions.Len()
}
