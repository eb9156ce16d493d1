package app

import "testing"

func TestQuote_SingleResourceFlatRate(t *testing.T) {
	// 2 slots x $40 x 3 months, one kiosk, no discount.
	got := Quote(2, 40, 3, 1, 0)
	if got != 240.00 {
		t.Fatalf("expected 240.00, got %.2f", got)
	}
}

func TestQuote_NoDurationBreak(t *testing.T) {
	// Longer durations pay strictly proportionally.
	three := Quote(2, 40, 3, 1, 0)
	twelve := Quote(2, 40, 12, 1, 0)
	if twelve != three*4 {
		t.Fatalf("expected 12-month cost %.2f to be 4x the 3-month cost %.2f", twelve, three)
	}
}

func TestQuote_AdditionalResourceDiscount(t *testing.T) {
	// 1 slot x $100 x 1 month across 3 kiosks with 20% off additional kiosks:
	// 100 + 2 x 80 = 260.
	got := Quote(1, 100, 1, 3, 20)
	if got != 260.00 {
		t.Fatalf("expected 260.00, got %.2f", got)
	}
}

func TestQuote_ZeroDiscountFailOpen(t *testing.T) {
	// A missing tenant setting falls back to 0: additional kiosks at full rate.
	got := Quote(1, 100, 1, 2, 0)
	if got != 200.00 {
		t.Fatalf("expected 200.00, got %.2f", got)
	}
}

func TestQuote_InvalidInputs(t *testing.T) {
	if got := Quote(0, 100, 1, 1, 0); got != 0 {
		t.Fatalf("expected 0 for zero slots, got %.2f", got)
	}
	if got := Quote(1, 100, 0, 1, 0); got != 0 {
		t.Fatalf("expected 0 for zero duration, got %.2f", got)
	}
	if got := Quote(1, 100, 1, 0, 0); got != 0 {
		t.Fatalf("expected 0 for zero resources, got %.2f", got)
	}
}

func TestQuote_RoundsFinalTotalOnly(t *testing.T) {
	// 3 slots x $33.335 x 1 month = 100.005, which rounds half-up to 100.01.
	got := Quote(3, 33.335, 1, 1, 0)
	if got != 100.01 {
		t.Fatalf("expected 100.01, got %.4f", got)
	}
}

func TestRoundCurrency_HalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{2.005, 2.01},
		{2.004, 2.00},
		{26.0, 26.0},
		{0.125, 0.13},
	}
	for _, c := range cases {
		if got := RoundCurrency(c.in); got != c.want {
			t.Fatalf("RoundCurrency(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
