// Package visit provides the field visit domain model and data access.
package visit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical day format. Lexicographic order of dates in
// this layout is chronological order.
const DateLayout = "2006-01-02"

// Status is the lifecycle state of a visit.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ValidStatuses is the set of allowed statuses.
var ValidStatuses = []Status{StatusPending, StatusCompleted}

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Address is the postal address of a visit. Scheduling never looks at it.
type Address struct {
	PostalCode   string `json:"postal_code"`
	State        string `json:"state"`
	City         string `json:"city"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
}

// Visit is a scheduled field visit.
type Visit struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"` // YYYY-MM-DD
	Status       Status  `json:"status"`
	FormCount    int     `json:"form_count"`
	ProductCount int     `json:"product_count"`
	Address      Address `json:"address"`
}

// Day returns the date portion of the visit's date.
func (v Visit) Day() string {
	return DateOnly(v.Date)
}

// Input holds the caller-editable fields of a visit.
type Input struct {
	Date         string  `json:"date"`
	FormCount    int     `json:"form_count"`
	ProductCount int     `json:"product_count"`
	Address      Address `json:"address"`
}

// Validate normalizes the date and checks the workload counts.
func (in *Input) Validate() error {
	day, err := ParseDate(in.Date)
	if err != nil {
		return err
	}
	in.Date = day
	if in.FormCount < 0 {
		return fmt.Errorf("invalid form count %d: must not be negative", in.FormCount)
	}
	if in.ProductCount < 0 {
		return fmt.Errorf("invalid product count %d: must not be negative", in.ProductCount)
	}
	return nil
}

// New creates a pending visit with a fresh ID.
func New(in Input) (Visit, error) {
	if err := in.Validate(); err != nil {
		return Visit{}, err
	}
	return Visit{
		ID:           NewID(),
		Date:         in.Date,
		Status:       StatusPending,
		FormCount:    in.FormCount,
		ProductCount: in.ProductCount,
		Address:      in.Address,
	}, nil
}

// Edit returns a copy of v with the editable fields replaced.
// ID and status are kept.
func (v Visit) Edit(in Input) (Visit, error) {
	if err := in.Validate(); err != nil {
		return Visit{}, err
	}
	v.Date = in.Date
	v.FormCount = in.FormCount
	v.ProductCount = in.ProductCount
	v.Address = in.Address
	return v, nil
}

// Validate checks a visit reconstructed from storage or an import.
func (v Visit) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("visit has no id")
	}
	if !v.Status.IsValid() {
		return fmt.Errorf("visit %s: invalid status %q", v.ID, v.Status)
	}
	in := Input{Date: v.Date, FormCount: v.FormCount, ProductCount: v.ProductCount}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("visit %s: %w", v.ID, err)
	}
	return nil
}

// NewID returns a fresh opaque visit identifier.
func NewID() string {
	return uuid.NewString()
}

// DateOnly returns the YYYY-MM-DD part of a date or ISO timestamp.
func DateOnly(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

// ParseDate validates s as a day (a time-of-day part is dropped) and
// returns it in DateLayout.
func ParseDate(s string) (string, error) {
	day := DateOnly(strings.TrimSpace(s))
	if _, err := time.Parse(DateLayout, day); err != nil {
		return "", fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return day, nil
}
