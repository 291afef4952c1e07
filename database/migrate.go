package database

import (
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

// expectedIndexes diverifikasi setelah AutoMigrate, key = model, value = nama index
var expectedIndexes = []struct {
	model interface{}
	name  string
}{
	{&models.Order{}, "idx_orders_table_created"},
	{&models.Order{}, "idx_orders_status"},
	{&models.Order{}, "idx_orders_updated_at"},
	{&models.MenuItem{}, "idx_menu_items_category"},
	{&models.StaffProfile{}, "idx_staff_profiles_username"},
}

// Migrate -> AutoMigrate semua model lalu cek index yang dipakai query utama
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	migrator := db.Migrator()
	for _, idx := range expectedIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			utils.InfoLogger.Debugf("Index verified: %s", idx.name)
			continue
		}
		utils.ErrorLogger.Printf("Index %s missing after migration", idx.name)
	}
	return nil
}
