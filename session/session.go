// Package session holds the state of one customer table visit: which table
// was scanned, which view it is in, the tracked order and the unsent cart.
package session

import (
	"sync"

	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/ordering"
)

// State adalah salinan isi session pada satu waktu
type State struct {
	TableID string
	Mode    ordering.Mode
	OrderID string
	Cart    []models.OrderLine
}

// Active reports whether a table has been scanned.
func (st State) Active() bool {
	return st.TableID != ""
}

// Session aman dipakai bersamaan oleh handler UI dan callback tracker.
type Session struct {
	mu    sync.RWMutex
	state State
}

func New() *Session {
	return &Session{}
}

// SetTable memulai kunjungan baru: meja diganti, cart dikosongkan
func (s *Session) SetTable(tableID string, res ordering.Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{TableID: tableID, Mode: res.Mode, OrderID: res.OrderID}
}

// SetMode pindah view. orderID hanya disimpan untuk tracker; bill tetap
// mengingat order terakhir supaya bisa dibayar.
func (s *Session) SetMode(mode ordering.Mode, orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Mode = mode
	switch mode {
	case ordering.ModeMenu:
		s.state.OrderID = ""
	default:
		if orderID != "" {
			s.state.OrderID = orderID
		}
	}
}

func (s *Session) ReplaceCart(lines []models.OrderLine) {
	cart := make([]models.OrderLine, len(lines))
	copy(cart, lines)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart = cart
}

// Reset kembali ke layar scanner
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
}

func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Cart = make([]models.OrderLine, len(s.state.Cart))
	copy(st.Cart, s.state.Cart)
	return st
}
