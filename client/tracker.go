package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/realtime"
	"github.com/yeremiapane/table-order/utils"
)

const (
	DefaultBillDelay     = 2 * time.Second
	DefaultCompleteDelay = 3 * time.Second
	DefaultPollInterval  = 5 * time.Second
)

var errFinished = errors.New("order finished")

// Notification is shown to the customer when the order reaches a status
// that has a customer message.
type Notification struct {
	Status  ordering.Status
	Message string
}

// Tracker mengikuti satu order lewat websocket. Kalau koneksi gagal atau
// putus, order diambil ulang lewat GET lalu koneksi dicoba lagi setelah
// PollInterval. Update hanya diterapkan kalau version-nya lebih baru.
type Tracker struct {
	OrderID string

	OnUpdate   func(models.Order)
	OnNotify   func(Notification)
	OnBill     func()
	OnComplete func()

	BillDelay     time.Duration
	CompleteDelay time.Duration
	PollInterval  time.Duration
	Dialer        *websocket.Dialer

	client  *Client
	mu      sync.Mutex
	version uint
	status  ordering.Status

	billTimer *time.Timer
	doneTimer *time.Timer
	billC     <-chan time.Time
	doneC     <-chan time.Time
}

// Track siapkan tracker untuk orderID; jalankan dengan Run
func (c *Client) Track(orderID string) *Tracker {
	return &Tracker{
		OrderID:       orderID,
		BillDelay:     DefaultBillDelay,
		CompleteDelay: DefaultCompleteDelay,
		PollInterval:  DefaultPollInterval,
		Dialer:        websocket.DefaultDialer,
		client:        c,
	}
}

// Version returns the version of the last applied update.
func (t *Tracker) Version() uint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// Run blocks until the session completes (nil) or ctx is done (ctx.Err()).
func (t *Tracker) Run(ctx context.Context) error {
	if err := ordering.ValidateOrderID(t.OrderID); err != nil {
		return err
	}
	defer t.stopTimers()

	for {
		err := t.stream(ctx)
		if errors.Is(err, errFinished) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		utils.InfoLogger.Debugf("Tracker for %s disconnected: %v", t.OrderID, err)

		if err := t.backfill(ctx); err != nil && ctx.Err() == nil {
			utils.ErrorLogger.Printf("Tracker backfill for %s failed: %v", t.OrderID, err)
		}
		finished, err := t.wait(ctx, t.PollInterval)
		if finished {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (t *Tracker) streamURL() (string, error) {
	u, err := url.Parse(t.client.BaseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/orders/" + t.OrderID
	return u.String(), nil
}

// stream membaca event dari websocket sampai koneksi putus, ctx selesai,
// atau session complete (errFinished)
func (t *Tracker) stream(ctx context.Context) error {
	target, err := t.streamURL()
	if err != nil {
		return err
	}
	conn, _, err := t.Dialer.DialContext(ctx, target, nil)
	if err != nil {
		return err
	}

	msgs := make(chan []byte)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- data:
			case <-stop:
				return
			}
		}
	}()
	defer func() {
		close(stop)
		conn.Close()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case data := <-msgs:
			t.handle(data)
		case <-t.billC:
			t.fireBill()
		case <-t.doneC:
			t.fireComplete()
			return errFinished
		}
	}
}

// wait menunggu d sambil tetap menjalankan timer bill/complete
func (t *Tracker) wait(ctx context.Context, d time.Duration) (bool, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
			return false, nil
		case <-t.billC:
			t.fireBill()
		case <-t.doneC:
			t.fireComplete()
			return true, nil
		}
	}
}

func (t *Tracker) backfill(ctx context.Context) error {
	view, err := t.client.Order(ctx, t.OrderID)
	if err != nil {
		return err
	}
	t.Apply(view.Order)
	return nil
}

func (t *Tracker) handle(data []byte) {
	var msg struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		utils.ErrorLogger.Printf("Tracker got malformed message: %v", err)
		return
	}
	switch msg.Event {
	case realtime.EventOrderSnapshot, realtime.EventOrderInsert, realtime.EventOrderUpdate:
	default:
		return
	}

	var order models.Order
	if err := json.Unmarshal(msg.Data, &order); err != nil {
		utils.ErrorLogger.Printf("Tracker got malformed order: %v", err)
		return
	}
	t.Apply(order)
}

// Apply applies an order read from any channel and reports whether it was
// newer than what the tracker already had. Not safe to call while Run is
// running in another goroutine.
func (t *Tracker) Apply(order models.Order) bool {
	if order.ID.String() != t.OrderID {
		return false
	}

	t.mu.Lock()
	if t.version != 0 && order.Version <= t.version {
		t.mu.Unlock()
		return false
	}
	prev := t.status
	next := ordering.Status(order.Status)
	t.version = order.Version
	t.status = next
	t.mu.Unlock()

	if t.OnUpdate != nil {
		t.OnUpdate(order)
	}
	if next == prev {
		return true
	}

	// update pertama hanya state awal, tidak perlu notifikasi
	if prev != "" && t.OnNotify != nil {
		if msg, ok := next.CustomerMessage(); ok {
			t.OnNotify(Notification{Status: next, Message: msg})
		}
	}

	switch next {
	case ordering.StatusServed:
		if t.billTimer == nil {
			t.billTimer = time.NewTimer(t.BillDelay)
			t.billC = t.billTimer.C
		}
	case ordering.StatusCompleted:
		if t.billTimer != nil {
			t.billTimer.Stop()
			t.billC = nil
		}
		if t.doneTimer == nil {
			t.doneTimer = time.NewTimer(t.CompleteDelay)
			t.doneC = t.doneTimer.C
		}
	}
	return true
}

func (t *Tracker) fireBill() {
	t.billC = nil
	t.client.Session.SetMode(ordering.ModeBill, t.OrderID)
	if t.OnBill != nil {
		t.OnBill()
	}
}

func (t *Tracker) fireComplete() {
	t.doneC = nil
	t.client.Session.Reset()
	if t.OnComplete != nil {
		t.OnComplete()
	}
}

func (t *Tracker) stopTimers() {
	if t.billTimer != nil {
		t.billTimer.Stop()
	}
	if t.doneTimer != nil {
		t.doneTimer.Stop()
	}
}
