package enums

import "fmt"

// DiscountKind identifies the discount applied to an order at pricing time.
type DiscountKind string

const (
	DiscountKindNone   DiscountKind = "none"
	DiscountKindBundle DiscountKind = "bundle"
)

var validDiscountKinds = []DiscountKind{
	DiscountKindNone,
	DiscountKindBundle,
}

// String implements fmt.Stringer.
func (d DiscountKind) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountKind.
func (d DiscountKind) IsValid() bool {
	for _, candidate := range validDiscountKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountKind converts raw input into a DiscountKind.
func ParseDiscountKind(value string) (DiscountKind, error) {
	for _, candidate := range validDiscountKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount kind %q", value)
}
