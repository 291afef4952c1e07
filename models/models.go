package models

// All -> daftar model untuk AutoMigrate, urutan sesuai foreign key
func All() []interface{} {
	return []interface{}{
		&Table{},
		&MenuItem{},
		&Order{},
		&StaffProfile{},
		&RestaurantSettings{},
	}
}
