package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownViewType = errors.New("unknown view type")

// ViewType selects one of the four page layouts.
type ViewType int

const (
	OneDay ViewType = iota
	ThreeDay
	TwoWeek
	Month
)

// DefaultViewType is used when no valid preference is stored.
const DefaultViewType = TwoWeek

// ViewTypes lists the variants in the order the view switcher shows them.
func ViewTypes() []ViewType {
	return []ViewType{TwoWeek, Month, ThreeDay, OneDay}
}

// String returns the canonical stored name.
func (v ViewType) String() string {
	switch v {
	case OneDay:
		return "ONE_DAY"
	case ThreeDay:
		return "THREE_DAY"
	case TwoWeek:
		return "TWO_WEEK"
	case Month:
		return "MONTH"
	}
	return fmt.Sprintf("ViewType(%d)", int(v))
}

// Label is a human readable name.
func (v ViewType) Label() string {
	switch v {
	case OneDay:
		return "1 Day"
	case ThreeDay:
		return "3 Days"
	case TwoWeek:
		return "2 Weeks"
	case Month:
		return "Month"
	}
	return v.String()
}

// StrideDays is the number of days one page advances. Month pages advance by
// calendar month instead and report 0.
func (v ViewType) StrideDays() int {
	switch v {
	case OneDay:
		return 1
	case ThreeDay:
		return 3
	case TwoWeek:
		return 14
	case Month:
		return 0
	}
	panic(fmt.Sprintf("model: unhandled view type %d", int(v)))
}

// Valid reports whether v is one of the four variants.
func (v ViewType) Valid() bool {
	return v >= OneDay && v <= Month
}

// ParseViewType accepts the canonical names case-insensitively, with "-" or
// spaces in place of "_".
func ParseViewType(s string) (ViewType, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, v := range ViewTypes() {
		if v.String() == norm {
			return v, nil
		}
	}
	return DefaultViewType, fmt.Errorf("%w: %q", ErrUnknownViewType, s)
}

func (v ViewType) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *ViewType) UnmarshalText(b []byte) error {
	parsed, err := ParseViewType(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
