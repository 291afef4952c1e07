package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/realtime"
	"go.uber.org/goleak"
)

// fakeOrderServer melayani GET /orders/:id dan (opsional) /ws/orders/:id
type fakeOrderServer struct {
	mu        sync.Mutex
	order     models.Order
	updates   chan models.Order
	websocket bool
	upgrader  websocket.Upgrader
}

func newFakeOrderServer(order models.Order, ws bool) *fakeOrderServer {
	return &fakeOrderServer{order: order, updates: make(chan models.Order, 8), websocket: ws}
}

func (f *fakeOrderServer) set(o models.Order) {
	f.mu.Lock()
	f.order = o
	f.mu.Unlock()
}

func (f *fakeOrderServer) current() models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.order
}

func (f *fakeOrderServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/ws/orders/"):
		if !f.websocket {
			writeEnvelope(w, http.StatusNotFound, "not found", nil)
			return
		}
		f.stream(w, r)
	case strings.HasPrefix(r.URL.Path, "/orders/"):
		writeEnvelope(w, http.StatusOK, "Order detail", f.current())
	default:
		writeEnvelope(w, http.StatusNotFound, "not found", nil)
	}
}

func (f *fakeOrderServer) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(event string, o models.Order) bool {
		data, _ := json.Marshal(realtime.Message{Event: event, Data: o})
		return conn.WriteMessage(websocket.TextMessage, data) == nil
	}
	if !send(realtime.EventOrderSnapshot, f.current()) {
		return
	}
	for {
		select {
		case o := <-f.updates:
			f.set(o)
			if !send(realtime.EventOrderUpdate, o) {
				return
			}
		case <-closed:
			return
		}
	}
}

func orderAt(id uuid.UUID, status ordering.Status, version uint) models.Order {
	return models.Order{
		ID:      id,
		Status:  string(status),
		Version: version,
		Items:   []models.OrderLine{{ID: 1, Name: "Pad Thai", Price: 16.99, Quantity: 2}},
	}
}

func fastTracker(c *Client, orderID string) *Tracker {
	tr := c.Track(orderID)
	tr.BillDelay = 20 * time.Millisecond
	tr.CompleteDelay = 20 * time.Millisecond
	tr.PollInterval = 20 * time.Millisecond
	return tr
}

func TestTrackerAppliesOnlyNewerVersions(t *testing.T) {
	id := uuid.New()
	c := New("http://unused", nil)
	tr := c.Track(id.String())
	defer tr.stopTimers()

	var applied []uint
	tr.OnUpdate = func(o models.Order) { applied = append(applied, o.Version) }

	assert.True(t, tr.Apply(orderAt(id, ordering.StatusPending, 1)))
	assert.True(t, tr.Apply(orderAt(id, ordering.StatusPreparing, 3)))
	assert.False(t, tr.Apply(orderAt(id, ordering.StatusPending, 2)), "older version from a late push")
	assert.False(t, tr.Apply(orderAt(id, ordering.StatusPreparing, 3)), "same version from backfill")
	assert.False(t, tr.Apply(orderAt(uuid.New(), ordering.StatusReady, 9)), "another order")

	assert.Equal(t, []uint{1, 3}, applied)
	assert.Equal(t, uint(3), tr.Version())
}

func TestTrackerNotifiesAllowListedStatuses(t *testing.T) {
	id := uuid.New()
	c := New("http://unused", nil)
	tr := c.Track(id.String())
	tr.BillDelay = time.Hour
	defer tr.stopTimers()

	var got []ordering.Status
	tr.OnNotify = func(n Notification) {
		assert.NotEmpty(t, n.Message)
		got = append(got, n.Status)
	}

	tr.Apply(orderAt(id, ordering.StatusPending, 1))
	tr.Apply(orderAt(id, ordering.StatusPreparing, 2))
	waiter := orderAt(id, ordering.StatusPreparing, 3)
	waiter.WaiterCalled = true
	tr.Apply(waiter)
	tr.Apply(orderAt(id, ordering.StatusReady, 4))
	tr.Apply(orderAt(id, ordering.StatusServed, 5))

	assert.Equal(t, []ordering.Status{ordering.StatusPreparing, ordering.StatusReady, ordering.StatusServed}, got)
}

func TestTrackerServedThenCompletedOverWebsocket(t *testing.T) {
	defer goleak.VerifyNone(t)

	id := uuid.New()
	fake := newFakeOrderServer(orderAt(id, ordering.StatusPending, 1), true)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := New(srv.URL, nil)
	c.HTTP = srv.Client()
	c.Session.SetTable(tableID, ordering.Resolution{Mode: ordering.ModeTracker, OrderID: id.String()})

	tr := fastTracker(c, id.String())
	billed := make(chan struct{}, 1)
	tr.OnBill = func() { billed <- struct{}{} }
	completed := make(chan struct{}, 1)
	tr.OnComplete = func() { completed <- struct{}{} }

	done := make(chan error, 1)
	go func() { done <- tr.Run(context.Background()) }()

	fake.updates <- orderAt(id, ordering.StatusServed, 2)
	select {
	case <-billed:
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not switch to bill")
	}
	st := c.Session.Snapshot()
	assert.Equal(t, ordering.ModeBill, st.Mode)
	assert.Equal(t, id.String(), st.OrderID)

	fake.updates <- orderAt(id, ordering.StatusCompleted, 3)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not finish")
	}
	assert.Len(t, completed, 1)
	assert.False(t, c.Session.Snapshot().Active(), "session is reset after completion")
}

func TestTrackerFallsBackToPolling(t *testing.T) {
	defer goleak.VerifyNone(t)

	id := uuid.New()
	fake := newFakeOrderServer(orderAt(id, ordering.StatusReady, 4), false)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := New(srv.URL, nil)
	c.HTTP = srv.Client()
	tr := fastTracker(c, id.String())

	seen := make(chan uint, 4)
	tr.OnUpdate = func(o models.Order) { seen <- o.Version }

	done := make(chan error, 1)
	go func() { done <- tr.Run(context.Background()) }()

	select {
	case v := <-seen:
		assert.Equal(t, uint(4), v)
	case <-time.After(2 * time.Second):
		t.Fatal("no backfill")
	}

	fake.set(orderAt(id, ordering.StatusCompleted, 5))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not finish from polling")
	}
	assert.Equal(t, uint(5), tr.Version())
}

func TestTrackerStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	id := uuid.New()
	fake := newFakeOrderServer(orderAt(id, ordering.StatusPending, 1), true)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := New(srv.URL, nil)
	c.HTTP = srv.Client()
	tr := fastTracker(c, id.String())

	snapshot := make(chan struct{}, 1)
	tr.OnUpdate = func(models.Order) {
		select {
		case snapshot <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	select {
	case <-snapshot:
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot")
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("tracker ignored cancellation")
	}
}

func TestTrackerRejectsMalformedOrderID(t *testing.T) {
	c := New("http://unused", nil)
	err := c.Track("not-an-id").Run(context.Background())
	assert.ErrorIs(t, err, ordering.ErrInvalidOrderID)
}
