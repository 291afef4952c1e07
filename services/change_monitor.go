package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/realtime"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

const changeBatchSize = 100

// ChangeMonitor polling tabel orders dan mem-broadcast order yang updated_at-nya
// lewat dari watermark. Ini menangkap perubahan yang tidak lewat proses ini
// (instance lain tanpa NATS, edit manual di database). Duplikat dibuang oleh Hub.
type ChangeMonitor struct {
	DB       *gorm.DB
	Hub      *realtime.Hub
	Interval time.Duration
	StopChan chan struct{}

	watermark time.Time
	stopOnce  sync.Once
	done      chan struct{}
}

func NewChangeMonitor(db *gorm.DB, hub *realtime.Hub, interval time.Duration) *ChangeMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ChangeMonitor{
		DB:        db,
		Hub:       hub,
		Interval:  interval,
		StopChan:  make(chan struct{}),
		watermark: time.Now(),
		done:      make(chan struct{}),
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		defer close(cm.done)
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.CheckChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

// Stop menghentikan polling dan menunggu goroutine selesai
func (cm *ChangeMonitor) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.StopChan)
	})
	<-cm.done
}

// CheckChanges runs one poll and returns how many orders were broadcast.
func (cm *ChangeMonitor) CheckChanges() int {
	ctx, cancel := context.WithTimeout(context.Background(), cm.Interval)
	defer cancel()

	var orders []models.Order
	err := cm.DB.WithContext(ctx).
		Preload("Table").
		Where("updated_at >= ?", cm.watermark).
		Order("updated_at ASC").
		Limit(changeBatchSize).
		Find(&orders).Error
	if err != nil {
		utils.ErrorLogger.Printf("Error fetching changed orders: %v", err)
		return 0
	}

	for _, order := range orders {
		if order.Version <= 1 {
			cm.Hub.BroadcastOrderInsert(order)
		} else {
			cm.Hub.BroadcastOrderUpdate(order)
		}
		if order.UpdatedAt.After(cm.watermark) {
			cm.watermark = order.UpdatedAt
		}
	}

	if len(orders) > 0 {
		utils.InfoLogger.Debugf("Change monitor replayed %d orders", len(orders))
	}
	return len(orders)
}
