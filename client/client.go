// Package client is the customer side of table ordering: it scans a table,
// keeps the cart in a session and talks to the HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/session"
)

// Client tidak menyimpan state selain Session
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session *session.Session
}

func New(baseURL string, sess *session.Session) *Client {
	if sess == nil {
		sess = session.New()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Session: sess,
	}
}

// Resolution -> hasil scan meja
type Resolution struct {
	TableID     string `json:"table_id"`
	TableNumber int    `json:"table_number,omitempty"`
	ordering.Resolution
	Warning string `json:"warning,omitempty"`
}

type Catalog struct {
	Items      []models.MenuItem `json:"items"`
	Categories []string          `json:"categories"`
	Fallback   bool              `json:"fallback"`
}

// OrderView is an order as the tracker shows it.
type OrderView struct {
	models.Order
	StatusLabel string `json:"status_label"`
	Progress    int    `json:"progress"`
	Estimate    string `json:"estimate"`
	Editable    bool   `json:"editable"`
}

type BillView struct {
	Order   models.Order         `json:"order"`
	Bill    ordering.Bill        `json:"bill"`
	Display ordering.BillDisplay `json:"display"`
	Payable bool                 `json:"payable"`
	Paid    bool                 `json:"paid"`
}

// Scan memvalidasi id dulu, lalu resolve mode. Session hanya diubah kalau berhasil.
func (c *Client) Scan(ctx context.Context, tableID string) (Resolution, error) {
	tableID = strings.TrimSpace(tableID)
	if err := ordering.ValidateTableID(tableID); err != nil {
		return Resolution{}, err
	}

	var res Resolution
	if err := c.do(ctx, http.MethodGet, "/tables/"+tableID+"/resolve", nil, &res); err != nil {
		return Resolution{}, err
	}
	c.Session.SetTable(tableID, res.Resolution)
	return res, nil
}

func (c *Client) Menu(ctx context.Context, category, query string) (Catalog, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if query != "" {
		q.Set("q", query)
	}
	path := "/menu"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var catalog Catalog
	err := c.do(ctx, http.MethodGet, path, nil, &catalog)
	return catalog, err
}

// AddToCart menambah (atau mengurangi, delta negatif) quantity item di cart
func (c *Client) AddToCart(item models.MenuItem, delta int) []models.OrderLine {
	line := models.OrderLine{ID: item.ID, Name: item.Name, Price: item.Price}
	cart := ordering.AdjustQuantity(c.Session.Snapshot().Cart, line, delta)
	c.Session.ReplaceCart(cart)
	return cart
}

func (c *Client) SetCartQuantity(itemID uint, qty int) []models.OrderLine {
	cart := ordering.SetQuantity(c.Session.Snapshot().Cart, itemID, qty)
	c.Session.ReplaceCart(cart)
	return cart
}

// SendOrder mengirim cart sebagai order baru lalu pindah ke tracker
func (c *Client) SendOrder(ctx context.Context, customerName, notes string) (OrderView, error) {
	st := c.Session.Snapshot()
	if !st.Active() {
		return OrderView{}, ordering.ErrInvalidTableID
	}
	if err := ordering.ValidateLines(st.Cart, false); err != nil {
		return OrderView{}, err
	}

	body := map[string]interface{}{"items": st.Cart}
	if name := strings.TrimSpace(customerName); name != "" {
		body["customer_name"] = name
	}
	if n := strings.TrimSpace(notes); n != "" {
		body["notes"] = n
	}

	var order OrderView
	if err := c.do(ctx, http.MethodPost, "/tables/"+st.TableID+"/orders", body, &order); err != nil {
		return OrderView{}, err
	}
	c.Session.ReplaceCart(nil)
	c.Session.SetMode(ordering.ModeTracker, order.ID.String())
	return order, nil
}

func (c *Client) Order(ctx context.Context, orderID string) (OrderView, error) {
	if err := ordering.ValidateOrderID(orderID); err != nil {
		return OrderView{}, err
	}
	var order OrderView
	err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &order)
	return order, err
}

// EditOrder -> version harus dari order yang terakhir dibaca.
// lines boleh kosong: semua item dihapus, total jadi 0.
func (c *Client) EditOrder(ctx context.Context, orderID string, lines []models.OrderLine, version uint) (OrderView, error) {
	if err := ordering.ValidateOrderID(orderID); err != nil {
		return OrderView{}, err
	}
	if err := ordering.ValidateLines(lines, true); err != nil {
		return OrderView{}, err
	}
	if lines == nil {
		lines = []models.OrderLine{}
	}
	var order OrderView
	err := c.do(ctx, http.MethodPatch, "/orders/"+orderID+"/items", map[string]interface{}{
		"items":   lines,
		"version": version,
	}, &order)
	return order, err
}

func (c *Client) CallWaiter(ctx context.Context, orderID string) (OrderView, error) {
	if err := ordering.ValidateOrderID(orderID); err != nil {
		return OrderView{}, err
	}
	var order OrderView
	err := c.do(ctx, http.MethodPost, "/orders/"+orderID+"/waiter", nil, &order)
	return order, err
}

// Bill -> bill order yang sedang dilacak, atau order terbaru di meja
func (c *Client) Bill(ctx context.Context) (BillView, error) {
	st := c.Session.Snapshot()
	var path string
	switch {
	case st.OrderID != "":
		path = "/orders/" + st.OrderID + "/bill"
	case st.Active():
		path = "/tables/" + st.TableID + "/bill"
	default:
		return BillView{}, ordering.ErrInvalidTableID
	}

	var bill BillView
	err := c.do(ctx, http.MethodGet, path, nil, &bill)
	return bill, err
}

func (c *Client) Pay(ctx context.Context, orderID string) (BillView, error) {
	if err := ordering.ValidateOrderID(orderID); err != nil {
		return BillView{}, err
	}
	var bill BillView
	err := c.do(ctx, http.MethodPost, "/orders/"+orderID+"/pay", nil, &bill)
	return bill, err
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
