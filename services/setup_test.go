package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-order/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB -> SQLite in-memory per test supaya data tidak bocor antar test
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

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type recorder struct {
	mu      sync.Mutex
	inserts []models.Order
	updates []models.Order
}

func (r *recorder) BroadcastOrderInsert(order models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts = append(r.inserts, order)
}

func (r *recorder) BroadcastOrderUpdate(order models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, order)
}

func (r *recorder) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}
