package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
)

// ModeScanner adalah tampilan awal sebelum meja diketahui
const ModeScanner = "scanner"

type CustomerController struct {
	Orders *services.OrderService
}

func NewCustomerController(orders *services.OrderService) *CustomerController {
	return &CustomerController{Orders: orders}
}

// Root -> alur scanner/order. Query: tableId, mode, orderId.
// mode dan orderId hanya petunjuk dari redirect; mode selalu dihitung ulang.
func (cc *CustomerController) Root(c *gin.Context) {
	tableID := c.Query("tableId")
	if tableID == "" {
		utils.RespondJSON(c, http.StatusOK, "Scan a table QR code to start", gin.H{"mode": ModeScanner})
		return
	}
	if m := c.Query("mode"); m != "" {
		if _, err := ordering.ParseMode(m); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}
	if oid := c.Query("orderId"); oid != "" {
		if err := ordering.ValidateOrderID(oid); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	res, err := cc.Orders.ResolveTable(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table session", res)
}

// ResolveTable -> GET /tables/:table_id/resolve
func (cc *CustomerController) ResolveTable(c *gin.Context) {
	res, err := cc.Orders.ResolveTable(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Table %s resolved to %s", res.TableID, res.Mode)
	utils.RespondJSON(c, http.StatusOK, "Table resolved", res)
}

// TableLanding -> URL yang ada di QR code. Resolve lalu redirect ke root.
func (cc *CustomerController) TableLanding(c *gin.Context) {
	res, err := cc.Orders.ResolveTable(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	q := url.Values{}
	q.Set("tableId", res.TableID)
	q.Set("mode", string(res.Mode))
	if res.OrderID != "" {
		q.Set("orderId", res.OrderID)
	}
	c.Redirect(http.StatusFound, "/?"+q.Encode())
}
