package services

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// CategoryAll selalu jadi kategori pertama di daftar filter
const CategoryAll = "All"

//go:embed fallback_menu.yaml
var fallbackMenuYAML []byte

var (
	fallbackOnce  sync.Once
	fallbackItems []models.MenuItem
	fallbackErr   error
)

// FallbackMenu returns a copy of the built-in menu.
func FallbackMenu() ([]models.MenuItem, error) {
	fallbackOnce.Do(func() {
		fallbackErr = yaml.Unmarshal(fallbackMenuYAML, &fallbackItems)
		if fallbackErr != nil {
			fallbackErr = fmt.Errorf("parse fallback menu: %w", fallbackErr)
		}
	})
	if fallbackErr != nil {
		return nil, fallbackErr
	}
	out := make([]models.MenuItem, len(fallbackItems))
	copy(out, fallbackItems)
	return out, nil
}

type MenuFilter struct {
	Category string
	Query    string
}

type MenuCatalog struct {
	Items      []models.MenuItem `json:"items"`
	Categories []string          `json:"categories"`
	Fallback   bool              `json:"fallback"`
}

type MenuService struct {
	DB *gorm.DB
}

func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{DB: db}
}

// available -> item yang bisa dipesan, urut kategori lalu nama.
// Kalau tabel menu belum ada, pakai menu statis.
func (s *MenuService) available(ctx context.Context) ([]models.MenuItem, bool, error) {
	var items []models.MenuItem
	err := s.DB.WithContext(ctx).
		Where("available = ?", true).
		Order("category ASC").
		Order("name ASC").
		Find(&items).Error
	if err == nil {
		return items, false, nil
	}
	if !database.IsMissingRelation(err) {
		return nil, false, err
	}

	utils.ErrorLogger.Printf("Menu table not found, using fallback data: %v", err)
	items, ferr := FallbackMenu()
	if ferr != nil {
		return nil, true, ferr
	}
	sortMenu(items)
	return items, true, nil
}

// Catalog returns the customer-facing menu after applying the filter.
// Categories are computed before filtering so the filter bar stays stable.
func (s *MenuService) Catalog(ctx context.Context, filter MenuFilter) (MenuCatalog, error) {
	items, fallback, err := s.available(ctx)
	if err != nil {
		return MenuCatalog{}, err
	}

	catalog := MenuCatalog{
		Items:      make([]models.MenuItem, 0, len(items)),
		Categories: categories(items),
		Fallback:   fallback,
	}
	for _, item := range items {
		if matches(item, filter) {
			catalog.Items = append(catalog.Items, item)
		}
	}
	return catalog, nil
}

// Lookup -> item menu yang tersedia berdasarkan id, untuk snapshot harga order
func (s *MenuService) Lookup(ctx context.Context, ids []uint) (map[uint]models.MenuItem, error) {
	out := make(map[uint]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var items []models.MenuItem
	err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		if !database.IsMissingRelation(err) {
			return nil, err
		}
		if items, err = FallbackMenu(); err != nil {
			return nil, err
		}
	}

	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	for _, item := range items {
		if wanted[item.ID] {
			out[item.ID] = item
		}
	}
	return out, nil
}

func matches(item models.MenuItem, f MenuFilter) bool {
	if f.Category != "" && f.Category != CategoryAll && !strings.EqualFold(item.Category, f.Category) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), q) ||
		strings.Contains(strings.ToLower(item.Description), q) ||
		strings.Contains(strings.ToLower(item.Category), q)
}

func categories(items []models.MenuItem) []string {
	out := []string{CategoryAll}
	seen := map[string]bool{}
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	return out
}

func sortMenu(items []models.MenuItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
}
