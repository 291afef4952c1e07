package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/middlewares"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/realtime"
	"github.com/yeremiapane/table-order/router"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testBaseURL = "http://table-order.test"

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("controllers-test-secret", time.Hour)
}

type testApp struct {
	db     *gorm.DB
	hub    *realtime.Hub
	router *gin.Engine
	admin  string
	staff  string
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupTestDB -> SQLite in-memory per test, dimigrasi seperti di production
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := setupTestDB(t)
	hub := realtime.NewHub()
	t.Cleanup(hub.Close)

	r := router.SetupRouter(router.Options{
		DB:            db,
		Hub:           hub,
		CORSOrigin:    "*",
		PublicBaseURL: testBaseURL,
		LoginLimiter:  middlewares.NewRateLimiter(100, time.Second),
	})

	admin, err := utils.GenerateToken(uuid.New(), models.RoleAdmin)
	require.NoError(t, err)
	staff, err := utils.GenerateToken(uuid.New(), "chef")
	require.NoError(t, err)

	return &testApp{db: db, hub: hub, router: r, admin: admin, staff: staff}
}

// seed -> menu statis (id 1..5) dan satu meja
func (a *testApp) seed(t *testing.T) models.Table {
	t.Helper()
	_, err := services.SeedMenu(context.Background(), a.db)
	require.NoError(t, err)
	table, err := services.CreateTable(a.db, 1, testBaseURL)
	require.NoError(t, err)
	return table
}

func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
}

type orderResp struct {
	models.Order
	StatusLabel string `json:"status_label"`
	Editable    bool   `json:"editable"`
	ShortID     string `json:"short_id"`
	TableNumber int    `json:"table_number"`
	NextStatus  string `json:"next_status"`
}

type resolveResp struct {
	TableID string `json:"table_id"`
	Mode    string `json:"mode"`
	OrderID string `json:"order_id"`
	Warning string `json:"warning"`
}

func (a *testApp) placeOrder(t *testing.T, tableID string, items ...models.OrderLine) orderResp {
	t.Helper()
	w, env := a.request(t, http.MethodPost, "/tables/"+tableID+"/orders", "", gin.H{"items": items})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var order orderResp
	decode(t, env, &order)
	return order
}

func (a *testApp) setStatus(t *testing.T, orderID, status string) orderResp {
	t.Helper()
	w, env := a.request(t, http.MethodPatch, "/staff/orders/"+orderID+"/status", a.staff, gin.H{"status": status})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var order orderResp
	decode(t, env, &order)
	return order
}

func (a *testApp) resolve(t *testing.T, tableID string) resolveResp {
	t.Helper()
	w, env := a.request(t, http.MethodGet, "/tables/"+tableID+"/resolve", "", nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var res resolveResp
	decode(t, env, &res)
	return res
}
