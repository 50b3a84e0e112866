package enums

import "fmt"

// SideEffectType names a reconciliation side effect that may fire at most once
// per order. Applied effects are recorded in an append-only ledger keyed by
// (order_id, effect_type).
type SideEffectType string

const (
	SideEffectInventoryReserved SideEffectType = "inventory_reserved"
	SideEffectStockCommitted    SideEffectType = "stock_committed"
	SideEffectInventoryReleased SideEffectType = "inventory_released"
	SideEffectPaymentCaptured   SideEffectType = "payment_captured"
	SideEffectRefundIssued      SideEffectType = "refund_issued"
)

var validSideEffectTypes = []SideEffectType{
	SideEffectInventoryReserved,
	SideEffectStockCommitted,
	SideEffectInventoryReleased,
	SideEffectPaymentCaptured,
	SideEffectRefundIssued,
}

// String implements fmt.Stringer.
func (s SideEffectType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SideEffectType.
func (s SideEffectType) IsValid() bool {
	for _, candidate := range validSideEffectTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSideEffectType converts raw input into a SideEffectType.
func ParseSideEffectType(value string) (SideEffectType, error) {
	for _, candidate := range validSideEffectTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid side effect type %q", value)
}
