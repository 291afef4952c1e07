package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-order/models"
)

type billResp struct {
	Order   models.Order      `json:"order"`
	Display map[string]string `json:"display"`
	Payable bool              `json:"payable"`
	Paid    bool              `json:"paid"`
}

func TestOrderLifecycle(t *testing.T) {
	app := newTestApp(t)
	table := app.seed(t)
	tableID := table.ID.String()

	assert.Equal(t, "menu", app.resolve(t, tableID).Mode)

	// harga dari client diabaikan, server pakai harga menu
	order := app.placeOrder(t, tableID, models.OrderLine{ID: 1, Name: "Cheap", Price: 0.01, Quantity: 2})
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, 33.98, order.TotalAmount)
	assert.Equal(t, uint(1), order.Version)
	assert.False(t, order.WaiterCalled)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Pad Thai", order.Items[0].Name)
	assert.Equal(t, 16.99, order.Items[0].Price)

	res := app.resolve(t, tableID)
	assert.Equal(t, "tracker", res.Mode)
	assert.Equal(t, order.ID.String(), res.OrderID)

	for _, st := range []string{"preparing", "ready"} {
		app.setStatus(t, order.ID.String(), st)
		res = app.resolve(t, tableID)
		assert.Equal(t, "tracker", res.Mode, st)
	}
	served := app.setStatus(t, order.ID.String(), "served")
	assert.Equal(t, "completed", served.NextStatus)

	res = app.resolve(t, tableID)
	assert.Equal(t, "bill", res.Mode)
	assert.Empty(t, res.OrderID)

	w, env := app.request(t, http.MethodGet, "/tables/"+tableID+"/bill", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bill billResp
	decode(t, env, &bill)
	assert.Equal(t, "$33.98", bill.Display["subtotal"])
	assert.Equal(t, "$2.89", bill.Display["tax"])
	assert.Equal(t, "$36.87", bill.Display["total"])
	assert.True(t, bill.Payable)

	w, env = app.request(t, http.MethodPost, "/orders/"+order.ID.String()+"/pay", "", nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	decode(t, env, &bill)
	assert.True(t, bill.Paid)
	assert.Equal(t, "completed", bill.Order.Status)

	// bayar dua kali tetap sukses tanpa menulis ulang
	w, env = app.request(t, http.MethodPost, "/orders/"+order.ID.String()+"/pay", "", nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	decode(t, env, &bill)
	assert.Equal(t, uint(5), bill.Order.Version)

	assert.Equal(t, "menu", app.resolve(t, tableID).Mode)
}

func TestCreateOrderValidation(t *testing.T) {
	app := newTestApp(t)
	table := app.seed(t)
	tableID := table.ID.String()
	padThai := models.OrderLine{ID: 1, Quantity: 1}

	cases := []struct {
		name  string
		path  string
		items []models.OrderLine
		code  int
	}{
		{"malformed table id", "/tables/table-1/orders", []models.OrderLine{padThai}, http.StatusBadRequest},
		{"unknown table", "/tables/" + uuid.NewString() + "/orders", []models.OrderLine{padThai}, http.StatusNotFound},
		{"empty cart", "/tables/" + tableID + "/orders", nil, http.StatusBadRequest},
		{"zero quantity", "/tables/" + tableID + "/orders", []models.OrderLine{{ID: 1, Quantity: 0}}, http.StatusBadRequest},
		{"unknown item", "/tables/" + tableID + "/orders", []models.OrderLine{{ID: 99, Quantity: 1}}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := app.request(t, http.MethodPost, tc.path, "", gin.H{"items": tc.items})
			assert.Equal(t, tc.code, w.Code, env.Message)
			assert.False(t, env.Status)
		})
	}

	var count int64
	require.NoError(t, app.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrderRejectsUnavailableItem(t *testing.T) {
	app := newTestApp(t)
	table := app.seed(t)
	require.NoError(t, app.db.Model(&models.MenuItem{}).Where("id = ?", 2).Update("available", false).Error)

	w, env := app.request(t, http.MethodPost, "/tables/"+table.ID.String()+"/orders", "",
		gin.H{"items": []models.OrderLine{{ID: 2, Quantity: 1}}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Message, "not available")
}

func TestUpdateOrderItems(t *testing.T) {
	app := newTestApp(t)
	table := app.seed(t)
	order := app.placeOrder(t, table.ID.String(), models.OrderLine{ID: 1, Quantity: 1})
	path := "/orders/" + order.ID.String() + "/items"

	w, env := app.request(t, http.MethodPatch, path, "", gin.H{
		"items":   []models.OrderLine{{ID: 1, Quantity: 2}, {ID: 4, Quantity: 1}},
		"version": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var updated orderResp
	decode(t, env, &updated)
	assert.Equal(t, uint(2), updated.Version)
	assert.Equal(t, 38.97, updated.TotalAmount)
	assert.Equal(t, "Your order has been updated successfully.", env.Message)

	// version lama -> conflict
	w, _ = app.request(t, http.MethodPatch, path, "", gin.H{
		"items":   []models.OrderLine{{ID: 1, Quantity: 1}},
		"version": 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = app.request(t, http.MethodPatch, path, "", gin.H{"items": []models.OrderLine{{ID: 1, Quantity: 1}}})
	assert.Equal(t, http.StatusBadRequest, w.Code, "version is required")

	// semua item dihapus
	w, env = app.request(t, http.MethodPatch, path, "", gin.H{
		"items":   []models.OrderLine{},
		"version": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	decode(t, env, &updated)
	assert.Equal(t, uint(3), updated.Version)
	assert.Empty(t, updated.Items)
	assert.Zero(t, updated.TotalAmount)

	app.setStatus(t, order.ID.String(), "ready")
	w, env = app.request(t, http.MethodPatch, path, "", gin.H{
		"items":   []models.OrderLine{{ID: 1, Quantity: 1}},
		"version": 4,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Order can no longer be modified", env.Message)
}

func TestUpdateOrderStatusRules(t *testing.T) {
	app := newTestApp(t)
	table := app.seed(t)
	order := app.placeOrder(t, table.ID.String(), models.OrderLine{ID: 3, Quantity: 1})
	path := "/staff/orders/" + order.ID.String() + "/status"

	w, _ := app.request(t, http.MethodPatch, path, "", gin.H{"status": "preparing"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	ready := app.setStatus(t, order.ID.String(), "ready")
	assert.Equal(t, uint(2), ready.Version, "skipping preparing is allowed")

	again := app.setStatus(t, order.ID.String(), "ready")
	assert.Equal(t, uint(2), again.Version, "same status is a no-op")

	w, _ = app.request(t, http.MethodPatch, path, app.staff, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = app.request(t, http.MethodPatch, path, app.staff, gin.H{"status": "cooking"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = app.request(t, http.MethodPatch, path, app.staff, gin.H{"status": "served", "version": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = app.request(t, http.MethodPatch, "/staff/orders/bad-id/status", app.staff, gin.H{"status": "served"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.request(t, http.MethodPatch, "/staff/orders/"+uuid.NewString()+"/status", app.staff, gin.H{"status": "served"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayRequiresReadyOrServed(t *testing.T) {
	app := newTestApp(t)
	table := app.seed(t)
	order := app.placeOrder(t, table.ID.String(), models.OrderLine{ID: 1, Quantity: 1})

	w, _ := app.request(t, http.MethodPost, "/orders/"+order.ID.String()+"/pay", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	app.setStatus(t, order.ID.String(), "ready")
	w, env := app.request(t, http.MethodPost, "/orders/"+order.ID.String()+"/pay", "", gin.H{"version": 2})
	assert.Equal(t, http.StatusOK, w.Code, env.Message)
}

func TestWaiterCall(t *testing.T) {
	app := newTestApp(t)
	table := app.seed(t)
	order := app.placeOrder(t, table.ID.String(), models.OrderLine{ID: 5, Quantity: 2})

	w, env := app.request(t, http.MethodPost, "/orders/"+order.ID.String()+"/waiter", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var called orderResp
	decode(t, env, &called)
	assert.True(t, called.WaiterCalled)
	assert.Equal(t, "pending", called.Status)

	w, env = app.request(t, http.MethodGet, "/staff/orders", app.staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board struct {
		Active    []orderResp `json:"active"`
		Completed []orderResp `json:"completed"`
	}
	decode(t, env, &board)
	require.Len(t, board.Active, 1)
	assert.True(t, board.Active[0].WaiterCalled)
	assert.Equal(t, 1, board.Active[0].TableNumber)
	assert.Len(t, board.Active[0].ShortID, 8)
	assert.Empty(t, board.Completed)

	w, env = app.request(t, http.MethodDelete, "/staff/orders/"+order.ID.String()+"/waiter", app.staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env, &called)
	assert.False(t, called.WaiterCalled)
}

func TestKitchenDisplay(t *testing.T) {
	app := newTestApp(t)
	table := app.seed(t)
	first := app.placeOrder(t, table.ID.String(), models.OrderLine{ID: 1, Quantity: 1})
	second := app.placeOrder(t, table.ID.String(), models.OrderLine{ID: 2, Quantity: 1})
	third := app.placeOrder(t, table.ID.String(), models.OrderLine{ID: 3, Quantity: 1})
	app.setStatus(t, second.ID.String(), "preparing")
	app.setStatus(t, third.ID.String(), "ready")

	w, env := app.request(t, http.MethodGet, "/staff/kds", app.staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var kds struct {
		Pending   []orderResp `json:"pending"`
		Preparing []orderResp `json:"preparing"`
	}
	decode(t, env, &kds)
	require.Len(t, kds.Pending, 1)
	require.Len(t, kds.Preparing, 1)
	assert.Equal(t, first.ID, kds.Pending[0].ID)
	assert.Equal(t, second.ID, kds.Preparing[0].ID)
}

func TestGetOrder(t *testing.T) {
	app := newTestApp(t)
	table := app.seed(t)
	order := app.placeOrder(t, table.ID.String(), models.OrderLine{ID: 1, Quantity: 1})

	w, env := app.request(t, http.MethodGet, "/orders/"+order.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got orderResp
	decode(t, env, &got)
	assert.Equal(t, "Order Received", got.StatusLabel)
	assert.True(t, got.Editable)

	w, env = app.request(t, http.MethodGet, "/orders/12345", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid order ID format", env.Message)

	w, _ = app.request(t, http.MethodGet, "/orders/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrdersRelationMissing(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.db.Migrator().DropTable(&models.Order{}))

	w, env := app.request(t, http.MethodGet, "/orders/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Orders table not found. Please contact support.", env.Message)
}
