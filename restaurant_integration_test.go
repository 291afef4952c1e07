package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-order/client"
	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/realtime"
	"github.com/yeremiapane/table-order/router"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	utils.SetLogLevel("warn")
	utils.SetJWTSecret("integration-secret", time.Hour)
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func staffLogin(t *testing.T, baseURL, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(baseURL+"/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Data.Token
}

func advance(t *testing.T, baseURL, token, orderID, status string) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"status": status})
	req, err := http.NewRequest(http.MethodPatch, baseURL+"/staff/orders/"+orderID+"/status", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, status)
}

// TestEndToEndIntegration menguji flow utama:
// 0. Seed admin, menu, meja; staff login -> token
// 1. Customer scan QR -> mode menu, pesan 2x Pad Thai
// 2. Tracker websocket mengikuti order, staff memajukan status
// 3. Served -> bill otomatis, total 33.98 + pajak
// 4. Bayar -> completed, session customer selesai
func TestEndToEndIntegration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	require.NoError(t, services.SeedAdmin(ctx, db, "admin", "admin-pass"))
	_, err := services.SeedMenu(ctx, db)
	require.NoError(t, err)
	_, err = services.SeedTables(ctx, db, 3, "http://localhost")
	require.NoError(t, err)

	var table models.Table
	require.NoError(t, db.Where("table_number = ?", 2).First(&table).Error)

	hub := realtime.NewHub()
	defer hub.Close()
	// backfill poll server ikut jalan; duplikat harus dibuang hub
	monitor := services.NewChangeMonitor(db, hub, 10*time.Millisecond)
	monitor.Start()
	defer monitor.Stop()

	srv := httptest.NewServer(router.SetupRouter(router.Options{DB: db, Hub: hub, CORSOrigin: "*", PublicBaseURL: "http://localhost"}))
	defer srv.Close()

	token := staffLogin(t, srv.URL, "admin", "admin-pass")

	// 1. scan + order
	customer := client.New(srv.URL, nil)
	res, err := customer.Scan(ctx, table.ID.String())
	require.NoError(t, err)
	assert.Equal(t, ordering.ModeMenu, res.Mode)
	assert.Equal(t, 2, res.TableNumber)

	catalog, err := customer.Menu(ctx, "", "pad thai")
	require.NoError(t, err)
	require.Len(t, catalog.Items, 1)
	customer.AddToCart(catalog.Items[0], 2)

	order, err := customer.SendOrder(ctx, "Ana", "no peanuts")
	require.NoError(t, err)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, 33.98, order.TotalAmount)

	// 2. tracker
	tracker := customer.Track(order.ID.String())
	tracker.BillDelay = 50 * time.Millisecond
	tracker.CompleteDelay = 50 * time.Millisecond
	tracker.PollInterval = 100 * time.Millisecond

	var mu sync.Mutex
	var versions []uint
	var notified []ordering.Status
	connected := make(chan struct{}, 1)
	billed := make(chan struct{}, 1)
	tracker.OnUpdate = func(o models.Order) {
		mu.Lock()
		versions = append(versions, o.Version)
		mu.Unlock()
		select {
		case connected <- struct{}{}:
		default:
		}
	}
	tracker.OnNotify = func(n client.Notification) {
		mu.Lock()
		notified = append(notified, n.Status)
		mu.Unlock()
	}
	tracker.OnBill = func() { billed <- struct{}{} }

	done := make(chan error, 1)
	go func() { done <- tracker.Run(ctx) }()

	select {
	case <-connected:
	case <-time.After(3 * time.Second):
		t.Fatal("tracker never received the order")
	}

	for _, st := range []string{"preparing", "ready", "served"} {
		advance(t, srv.URL, token, order.ID.String(), st)
	}

	// 3. served -> bill
	select {
	case <-billed:
	case <-time.After(3 * time.Second):
		t.Fatal("tracker did not switch to bill")
	}
	assert.Equal(t, ordering.ModeBill, customer.Session.Snapshot().Mode)

	bill, err := customer.Bill(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$33.98", bill.Display.Subtotal)
	assert.Equal(t, "$2.89", bill.Display.Tax)
	assert.Equal(t, "$36.87", bill.Display.Total)
	assert.True(t, bill.Payable)

	// 4. bayar
	paid, err := customer.Pay(ctx, order.ID.String())
	require.NoError(t, err)
	assert.True(t, paid.Paid)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("tracker did not finish")
	}
	assert.False(t, customer.Session.Snapshot().Active())

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(versions); i++ {
		assert.Greater(t, versions[i], versions[i-1], "each version applied once, in order")
	}
	assert.Equal(t, uint(5), versions[len(versions)-1])
	assert.Equal(t, []ordering.Status{
		ordering.StatusPreparing, ordering.StatusReady, ordering.StatusServed, ordering.StatusCompleted,
	}, notified)

	// meja kembali ke menu
	res, err = client.New(srv.URL, nil).Scan(ctx, table.ID.String())
	require.NoError(t, err)
	assert.Equal(t, ordering.ModeMenu, res.Mode)
}
