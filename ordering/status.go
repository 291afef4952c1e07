package ordering

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCompleted Status = "completed"
	// StatusCancelled dikenali sebagai status akhir tapi tidak pernah ditulis oleh workflow
	StatusCancelled Status = "cancelled"
)

// Workflow is the kitchen order of statuses, first to last.
var Workflow = []Status{StatusPending, StatusPreparing, StatusReady, StatusServed, StatusCompleted}

var statusLabels = map[Status]string{
	StatusPending:   "Order Received",
	StatusPreparing: "Preparing",
	StatusReady:     "Ready to Serve",
	StatusServed:    "Served",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

var customerMessages = map[Status]string{
	StatusPreparing: "Your order is being prepared!",
	StatusReady:     "Your order is ready!",
	StatusServed:    "Your order has been served!",
	StatusCompleted: "Thank you for dining with us!",
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st.Known() {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s Status) Known() bool {
	return s == StatusCancelled || s.Rank() >= 0
}

// Rank -> posisi status di Workflow, -1 untuk status di luar workflow
func (s Status) Rank() int {
	for i, st := range Workflow {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsOpen -> order masih berjalan (belum completed/cancelled). Served dan status
// yang tidak dikenal tetap dianggap open.
func (s Status) IsOpen() bool {
	return !s.IsTerminal()
}

// CanEditItems: customer boleh ubah item hanya saat pending atau preparing.
func (s Status) CanEditItems() bool {
	return s == StatusPending || s == StatusPreparing
}

func (s Status) CanPay() bool {
	return s == StatusReady || s == StatusServed
}

// Next returns the status a staff "advance" action moves to.
func (s Status) Next() (Status, bool) {
	r := s.Rank()
	if r < 0 || r >= len(Workflow)-1 {
		return "", false
	}
	return Workflow[r+1], true
}

// CustomerMessage returns the notification shown to the customer for s.
// Only preparing, ready, served and completed produce a message.
func (s Status) CustomerMessage() (string, bool) {
	m, ok := customerMessages[s]
	return m, ok
}

// Progress returns the tracker progress bar value, 0 to 100.
func (s Status) Progress() int {
	r := s.Rank()
	if r < 0 {
		return 0
	}
	return r * 100 / (len(Workflow) - 1)
}

// CheckTransition validates moving an order from one status to another.
// Same-status moves are a no-op (noop is true, err is nil). Forward moves,
// including skips, are allowed. Backward moves, moves out of a terminal
// status and moves to cancelled are rejected.
func CheckTransition(from, to Status) (noop bool, err error) {
	if !from.Known() {
		return false, fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	if !to.Known() {
		return false, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if from == to {
		return true, nil
	}
	if from.IsTerminal() || to == StatusCancelled || to.Rank() < from.Rank() {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return false, nil
}
