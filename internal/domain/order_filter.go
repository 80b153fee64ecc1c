package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// OrderFilter has AND semantics across fields, OR semantics within Statuses.
// An empty filter lists every order.
type OrderFilter struct {
	Statuses  []OrderStatus
	CreatedAt *TimeRange
	Limit     int
	Offset    int
}

func (f OrderFilter) Validate() error {
	for _, status := range f.Statuses {
		if _, err := ToOrderStatus(string(status)); err != nil {
			return fmt.Errorf("status[%s]: %w", status, err)
		}
	}

	if f.CreatedAt != nil {
		if err := f.CreatedAt.Validate(); err != nil {
			return fmt.Errorf("createdAt: %w", err)
		}
	}

	if f.Limit < 0 || f.Limit > MaxListLimit {
		return fmt.Errorf("limit must be between 0 and %d", MaxListLimit)
	}

	if f.Offset < 0 {
		return errors.New("offset must not be negative")
	}

	return nil
}

// EffectiveLimit substitutes DefaultListLimit for a zero limit.
func (f OrderFilter) EffectiveLimit() int {
	if f.Limit == 0 {
		return DefaultListLimit
	}
	return f.Limit
}

type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

func (t TimeRange) Validate() error {
	if t.Before == nil && t.After == nil {
		return errors.New("both Before and After are nil")
	}

	if t.Before != nil && t.After != nil {
		if t.Before.Before(*t.After) {
			return fmt.Errorf("before is before After")
		}
	}

	return nil
}
