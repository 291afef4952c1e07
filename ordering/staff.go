package ordering

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yeremiapane/table-order/models"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	}
	return 1
}

// OrderPriority -> high kalau lebih dari 30 menit, medium lebih dari 15 menit
func OrderPriority(createdAt, now time.Time) Priority {
	minutes := int(now.Sub(createdAt) / time.Minute)
	switch {
	case minutes > 30:
		return PriorityHigh
	case minutes > 15:
		return PriorityMedium
	}
	return PriorityLow
}

// ElapsedLabel formats the time since t as "1h 5m" or "12m".
func ElapsedLabel(t, now time.Time) string {
	minutes := int(now.Sub(t) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	if hours := minutes / 60; hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}

// ShortID -> 8 karakter pertama id, huruf besar
func ShortID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// EstimateLabel is the tracker's elapsed/remaining hint for an order.
func EstimateLabel(status Status, createdAt, now time.Time) string {
	elapsed := int(now.Sub(createdAt) / time.Minute)
	switch status {
	case StatusPending:
		return fmt.Sprintf("%d min elapsed • ~15-20 min total", elapsed)
	case StatusPreparing:
		return fmt.Sprintf("%d min elapsed • ~10-15 min remaining", elapsed)
	case StatusReady:
		return fmt.Sprintf("%d min elapsed • Ready for pickup", elapsed)
	case StatusServed:
		return fmt.Sprintf("%d min elapsed • Enjoy your meal!", elapsed)
	}
	return fmt.Sprintf("%d min total", elapsed)
}

// SortByPriority orders staff cards: higher priority first, then oldest first.
func SortByPriority(orders []models.Order, now time.Time) {
	sort.SliceStable(orders, func(i, j int) bool {
		pi := OrderPriority(orders[i].CreatedAt, now).weight()
		pj := OrderPriority(orders[j].CreatedAt, now).weight()
		if pi != pj {
			return pi > pj
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}

// SortOldestFirst orders by created_at ascending.
func SortOldestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}
