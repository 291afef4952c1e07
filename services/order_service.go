package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/realtime"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// berapa kali write diulang kalau kalah race dengan writer lain
const maxWriteAttempts = 3

// Broadcaster is the part of the realtime hub the order workflow needs.
type Broadcaster interface {
	BroadcastOrderInsert(order models.Order)
	BroadcastOrderUpdate(order models.Order)
}

type PlaceOrderInput struct {
	Items        []models.OrderLine `json:"items"`
	CustomerName *string            `json:"customer_name"`
	Notes        *string            `json:"notes"`
}

// TableResolution is the result of scanning a table.
type TableResolution struct {
	TableID     string `json:"table_id"`
	TableNumber int    `json:"table_number,omitempty"`
	ordering.Resolution
	Warning string `json:"warning,omitempty"`
}

type OrderService struct {
	DB   *gorm.DB
	Hub  Broadcaster
	Menu *MenuService
	Now  func() time.Time
}

func NewOrderService(db *gorm.DB, hub Broadcaster, menu *MenuService) *OrderService {
	return &OrderService{DB: db, Hub: hub, Menu: menu, Now: time.Now}
}

var _ Broadcaster = (*realtime.Hub)(nil)

func (s *OrderService) classify(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case database.IsNotFound(err):
		return notFound
	case database.IsMissingRelation(err):
		return ordering.ErrRelationMissing
	}
	return err
}

// ResolveTable -> satu-satunya jalur untuk menentukan mode meja.
// ID tidak valid ditolak sebelum query. Gagal membaca order = mode menu.
func (s *OrderService) ResolveTable(ctx context.Context, tableID string) (TableResolution, error) {
	id, ok := ordering.ParseID(tableID)
	if !ok {
		return TableResolution{}, ordering.ErrInvalidTableID
	}

	res := TableResolution{TableID: id.String()}

	var table models.Table
	if err := s.DB.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return TableResolution{}, ordering.ErrTableNotFound
		}
		utils.ErrorLogger.Printf("Table lookup failed for %s, defaulting to menu: %v", id, err)
		res.Resolution = ordering.Resolution{Mode: ordering.ModeMenu}
		res.Warning = "Could not check table status, showing the menu"
		return res, nil
	}
	res.TableNumber = table.TableNumber

	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Where("table_id = ? AND status NOT IN ?", id, []string{string(ordering.StatusCompleted), string(ordering.StatusCancelled)}).
		Find(&orders).Error
	if err != nil {
		utils.ErrorLogger.Printf("Order lookup failed for table %s, defaulting to menu: %v", id, err)
		res.Resolution = ordering.Resolution{Mode: ordering.ModeMenu}
		res.Warning = "Could not check table status, showing the menu"
		return res, nil
	}

	res.Resolution = ordering.ResolveMode(orders)
	return res, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	id, ok := ordering.ParseID(orderID)
	if !ok {
		return models.Order{}, ordering.ErrInvalidOrderID
	}

	var order models.Order
	err := s.DB.WithContext(ctx).Preload("Table").First(&order, "id = ?", id).Error
	if err != nil {
		return models.Order{}, s.classify(err, ordering.ErrOrderNotFound)
	}
	return order, nil
}

// ListOrders -> semua order, terbaru dulu
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).Preload("Table").Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, s.classify(err, ordering.ErrOrderNotFound)
	}
	return orders, nil
}

// LatestTableOrder returns the newest order of a table in any status. The bill
// view reads it, so a just-completed order is still shown as paid.
func (s *OrderService) LatestTableOrder(ctx context.Context, tableID string) (models.Order, error) {
	id, ok := ordering.ParseID(tableID)
	if !ok {
		return models.Order{}, ordering.ErrInvalidTableID
	}

	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Table").
		Where("table_id = ?", id).
		Order("created_at DESC").
		Order("id DESC").
		First(&order).Error
	if err != nil {
		return models.Order{}, s.classify(err, ordering.ErrOrderNotFound)
	}
	return order, nil
}

// PlaceOrder creates a pending order from a cart. Names and prices come from
// the menu, not from the caller.
func (s *OrderService) PlaceOrder(ctx context.Context, tableID string, in PlaceOrderInput) (models.Order, error) {
	id, ok := ordering.ParseID(tableID)
	if !ok {
		return models.Order{}, ordering.ErrInvalidTableID
	}
	if err := ordering.ValidateLines(in.Items, false); err != nil {
		return models.Order{}, err
	}

	var table models.Table
	if err := s.DB.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return models.Order{}, s.classify(err, ordering.ErrTableNotFound)
	}

	lines, err := s.snapshotLines(ctx, in.Items, nil)
	if err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		TableID:      table.ID,
		Items:        datatypes.JSONSlice[models.OrderLine](lines),
		TotalAmount:  ordering.OrderTotal(lines),
		Status:       string(ordering.StatusPending),
		CustomerName: trimmed(in.CustomerName),
		Notes:        trimmed(in.Notes),
		Version:      1,
	}
	if err := s.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return models.Order{}, s.classify(err, ordering.ErrOrderNotFound)
	}
	order.Table = &table

	utils.InfoLogger.Printf("Order %s placed for table %d (%d items, total %.2f)",
		order.ID, table.TableNumber, ordering.ItemCount(lines), order.TotalAmount)
	s.Hub.BroadcastOrderInsert(order)
	return order, nil
}

// UpdateStatus moves an order forward. Asking for the current status is a
// no-op. When expectedVersion is set the write only succeeds against that version.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, target ordering.Status, expectedVersion *uint) (models.Order, error) {
	return s.mutate(ctx, orderID, expectedVersion, func(order *models.Order) (map[string]interface{}, error) {
		noop, err := ordering.CheckTransition(ordering.Status(order.Status), target)
		if err != nil || noop {
			return nil, err
		}
		return map[string]interface{}{"status": string(target)}, nil
	})
}

// PayBill -> ready/served menjadi completed. Order yang sudah completed dianggap sudah dibayar.
func (s *OrderService) PayBill(ctx context.Context, orderID string, expectedVersion *uint) (models.Order, error) {
	return s.mutate(ctx, orderID, expectedVersion, func(order *models.Order) (map[string]interface{}, error) {
		status := ordering.Status(order.Status)
		if status == ordering.StatusCompleted {
			return nil, nil
		}
		if !status.CanPay() {
			return nil, fmt.Errorf("%w (status %s)", ordering.ErrNotPayable, status)
		}
		return map[string]interface{}{"status": string(ordering.StatusCompleted)}, nil
	})
}

// EditItems replaces the items of an order while the kitchen has not finished it.
// Items and total are written together in one conditional update.
func (s *OrderService) EditItems(ctx context.Context, orderID string, items []models.OrderLine, expectedVersion uint) (models.Order, error) {
	if err := ordering.ValidateLines(items, true); err != nil {
		return models.Order{}, err
	}

	return s.mutate(ctx, orderID, &expectedVersion, func(order *models.Order) (map[string]interface{}, error) {
		if !ordering.Status(order.Status).CanEditItems() {
			return nil, ordering.ErrOrderLocked
		}
		lines, err := s.snapshotLines(ctx, items, order.Items)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"items":        datatypes.JSONSlice[models.OrderLine](lines),
			"total_amount": ordering.OrderTotal(lines),
		}, nil
	})
}

// SetWaiterCalled sets or clears the waiter flag. It does not depend on status.
func (s *OrderService) SetWaiterCalled(ctx context.Context, orderID string, called bool) (models.Order, error) {
	return s.mutate(ctx, orderID, nil, func(order *models.Order) (map[string]interface{}, error) {
		if order.WaiterCalled == called {
			return nil, nil
		}
		return map[string]interface{}{"waiter_called": called}, nil
	})
}

type mutation func(order *models.Order) (map[string]interface{}, error)

// mutate reads the order, lets mut decide the fields to write and applies them
// with a compare-and-set on version. nil fields means nothing to do. A lost
// race is retried from a fresh read unless the caller pinned a version.
func (s *OrderService) mutate(ctx context.Context, orderID string, expectedVersion *uint, mut mutation) (models.Order, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		order, err := s.GetOrder(ctx, orderID)
		if err != nil {
			return models.Order{}, err
		}

		fields, err := mut(&order)
		if err != nil {
			return order, err
		}
		if fields == nil {
			return order, nil
		}
		if expectedVersion != nil && *expectedVersion != order.Version {
			return order, ordering.ErrStaleOrder
		}

		fields["version"] = gorm.Expr("version + ?", 1)
		fields["updated_at"] = s.Now()

		res := s.DB.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(fields)
		if res.Error != nil {
			return order, s.classify(res.Error, ordering.ErrOrderNotFound)
		}
		if res.RowsAffected == 0 {
			utils.InfoLogger.Printf("Order %s changed during write (version %d), retrying", order.ID, order.Version)
			continue
		}

		updated, err := s.GetOrder(ctx, orderID)
		if err != nil {
			return order, err
		}
		s.Hub.BroadcastOrderUpdate(updated)
		return updated, nil
	}
	return models.Order{}, ordering.ErrStaleOrder
}

// snapshotLines merges duplicate ids and fills name and price. Lines already in
// the order keep their original snapshot; new ones are read from the menu.
func (s *OrderService) snapshotLines(ctx context.Context, items []models.OrderLine, existing []models.OrderLine) ([]models.OrderLine, error) {
	known := make(map[uint]models.OrderLine, len(existing))
	for _, l := range existing {
		known[l.ID] = l
	}

	var seq []uint
	qty := make(map[uint]int, len(items))
	var missing []uint
	for _, it := range items {
		if _, seen := qty[it.ID]; !seen {
			seq = append(seq, it.ID)
			if _, ok := known[it.ID]; !ok {
				missing = append(missing, it.ID)
			}
		}
		qty[it.ID] += it.Quantity
	}

	menu, err := s.Menu.Lookup(ctx, missing)
	if err != nil {
		return nil, err
	}

	lines := make([]models.OrderLine, 0, len(seq))
	for _, id := range seq {
		line, ok := known[id]
		if !ok {
			item, found := menu[id]
			if !found || !item.Available {
				return nil, fmt.Errorf("%w: item %d", ordering.ErrItemUnavailable, id)
			}
			line = models.OrderLine{ID: item.ID, Name: item.Name, Price: item.Price}
		}
		line.Quantity = qty[id]
		lines = append(lines, line)
	}
	return lines, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
