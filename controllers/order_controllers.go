package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
)

type OrderController struct {
	Orders *services.OrderService
	Now    func() time.Time
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders, Now: time.Now}
}

// trackerView -> order plus info yang ditampilkan di order tracker
type trackerView struct {
	models.Order
	StatusLabel string `json:"status_label"`
	Progress    int    `json:"progress"`
	Estimate    string `json:"estimate"`
	Editable    bool   `json:"editable"`
}

type billView struct {
	Order   models.Order         `json:"order"`
	Bill    ordering.Bill        `json:"bill"`
	Display ordering.BillDisplay `json:"display"`
	Payable bool                 `json:"payable"`
	Paid    bool                 `json:"paid"`
}

type staffCard struct {
	models.Order
	ShortID     string            `json:"short_id"`
	TableNumber int               `json:"table_number"`
	Elapsed     string            `json:"elapsed"`
	Priority    ordering.Priority `json:"priority"`
	NextStatus  string            `json:"next_status,omitempty"`
}

func (oc *OrderController) tracker(o models.Order) trackerView {
	st := ordering.Status(o.Status)
	return trackerView{
		Order:       o,
		StatusLabel: st.Label(),
		Progress:    st.Progress(),
		Estimate:    ordering.EstimateLabel(st, o.CreatedAt, oc.Now()),
		Editable:    st.CanEditItems(),
	}
}

func newBillView(o models.Order) billView {
	bill := ordering.ComputeBill(o.Items)
	st := ordering.Status(o.Status)
	return billView{
		Order:   o,
		Bill:    bill,
		Display: bill.Display(),
		Payable: st.CanPay(),
		Paid:    st == ordering.StatusCompleted,
	}
}

func (oc *OrderController) card(o models.Order, now time.Time) staffCard {
	card := staffCard{
		Order:    o,
		ShortID:  ordering.ShortID(o.ID.String()),
		Elapsed:  ordering.ElapsedLabel(o.CreatedAt, now),
		Priority: ordering.OrderPriority(o.CreatedAt, now),
	}
	if o.Table != nil {
		card.TableNumber = o.Table.TableNumber
	}
	if next, ok := ordering.Status(o.Status).Next(); ok {
		card.NextStatus = string(next)
	}
	return card
}

// CreateOrder -> POST /tables/:table_id/orders, customer tanpa login
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.PlaceOrder(c.Request.Context(), c.Param("table_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", oc.tracker(order))
}

// GetOrderByID -> data untuk order tracker
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, err := oc.Orders.GetOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", oc.tracker(order))
}

// UpdateOrderItems -> customer mengubah item selama pending/preparing.
// version wajib diisi dari order yang terakhir dibaca.
func (oc *OrderController) UpdateOrderItems(c *gin.Context) {
	var req struct {
		Items   []models.OrderLine `json:"items"`
		Version *uint              `json:"version" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.EditItems(c.Request.Context(), c.Param("order_id"), req.Items, *req.Version)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Your order has been updated successfully.", oc.tracker(order))
}

// CallWaiter -> set waiter_called, status order tidak berubah
func (oc *OrderController) CallWaiter(c *gin.Context) {
	order, err := oc.Orders.SetWaiterCalled(c.Request.Context(), c.Param("order_id"), true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "A waiter will be with you shortly!", oc.tracker(order))
}

func (oc *OrderController) GetOrderBill(c *gin.Context) {
	order, err := oc.Orders.GetOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill", newBillView(order))
}

// GetTableBill -> bill untuk order terbaru di meja (tampilan bill dari QR)
func (oc *OrderController) GetTableBill(c *gin.Context) {
	order, err := oc.Orders.LatestTableOrder(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill", newBillView(order))
}

// PayBill -> tanpa payment gateway, hanya menandai order completed
func (oc *OrderController) PayBill(c *gin.Context) {
	var req struct {
		Version *uint `json:"version"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	order, err := oc.Orders.PayBill(c.Request.Context(), c.Param("order_id"), req.Version)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Order %s paid (%.2f)", order.ID, order.TotalAmount)
	utils.RespondJSON(c, http.StatusOK, "Thank you for your payment!", newBillView(order))
}

// GetStaffOrders -> dashboard staff: active (prioritas lalu terlama) dan completed
func (oc *OrderController) GetStaffOrders(c *gin.Context) {
	orders, err := oc.Orders.ListOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	now := oc.Now()
	var active, completed []models.Order
	for _, o := range orders {
		switch ordering.Status(o.Status) {
		case ordering.StatusCompleted:
			completed = append(completed, o)
		case ordering.StatusCancelled:
		default:
			active = append(active, o)
		}
	}
	ordering.SortByPriority(active, now)

	activeCards := make([]staffCard, 0, len(active))
	for _, o := range active {
		activeCards = append(activeCards, oc.card(o, now))
	}
	completedCards := make([]staffCard, 0, len(completed))
	for _, o := range completed {
		completedCards = append(completedCards, oc.card(o, now))
	}

	utils.RespondJSON(c, http.StatusOK, "Staff orders", gin.H{
		"active":    activeCards,
		"completed": completedCards,
	})
}

// GetKitchenDisplay -> kolom pending dan preparing, terlama dulu
func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	orders, err := oc.Orders.ListOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	now := oc.Now()
	ordering.SortOldestFirst(orders)
	pending := make([]staffCard, 0)
	preparing := make([]staffCard, 0)
	for _, o := range orders {
		switch ordering.Status(o.Status) {
		case ordering.StatusPending:
			pending = append(pending, oc.card(o, now))
		case ordering.StatusPreparing:
			preparing = append(preparing, oc.card(o, now))
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Kitchen display", gin.H{
		"pending":   pending,
		"preparing": preparing,
	})
}

// UpdateOrderStatus -> staff memajukan status. version opsional.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status  string `json:"status" binding:"required"`
		Version *uint  `json:"version"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	target, err := ordering.ParseStatus(req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), c.Param("order_id"), target, req.Version)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Order %s status now %s", order.ID, order.Status)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", oc.card(order, oc.Now()))
}

// ClearWaiterCall -> staff sudah datang ke meja
func (oc *OrderController) ClearWaiterCall(c *gin.Context) {
	order, err := oc.Orders.SetWaiterCalled(c.Request.Context(), c.Param("order_id"), false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waiter call cleared", oc.card(order, oc.Now()))
}
