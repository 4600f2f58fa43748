package enums

// AccessReason explains why a user may (or may not) open an item's content.
type AccessReason string

const (
	AccessReasonFree      AccessReason = "free"
	AccessReasonPurchased AccessReason = "purchased"
	AccessReasonOwner     AccessReason = "owner"
	AccessReasonNone      AccessReason = "none"
)

// String implements fmt.Stringer.
func (a AccessReason) String() string {
	return string(a)
}

// Grants reports whether the reason allows content access.
func (a AccessReason) Grants() bool {
	return a == AccessReasonFree || a == AccessReasonPurchased || a == AccessReasonOwner
}
