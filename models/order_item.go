package models

// OrderLine adalah snapshot item menu saat order dibuat/diedit.
// Disimpan sebagai JSON di kolom orders.items.
type OrderLine struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}
