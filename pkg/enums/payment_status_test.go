package enums

import "testing"

func TestPaymentStatusParseRoundTrip(t *testing.T) {
	for _, status := range validPaymentStatuses {
		parsed, err := ParsePaymentStatus(status.String())
		if err != nil {
			t.Fatalf("parse %s: %v", status, err)
		}
		if parsed != status {
			t.Fatalf("round trip mismatch: %s vs %s", parsed, status)
		}
	}

	if _, err := ParsePaymentStatus("settled"); err == nil {
		t.Fatalf("unknown status should not parse")
	}
}

func TestPaymentStatusTerminality(t *testing.T) {
	if PaymentStatusPending.IsTerminal() {
		t.Fatalf("pending must not be terminal")
	}
	if !PaymentStatusPaid.IsTerminal() || !PaymentStatusFailed.IsTerminal() {
		t.Fatalf("paid and failed are terminal")
	}
}
