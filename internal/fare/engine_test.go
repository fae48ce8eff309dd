package fare

import "testing"

func items(prices ...Money) []LineItem {
	out := make([]LineItem, 0, len(prices))
	for _, p := range prices {
		out = append(out, LineItem{UnitPrice: p})
	}
	return out
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := AggregateItems(items(500, 300, 200))
	b := AggregateItems(items(200, 500, 300))
	if a != b {
		t.Fatalf("aggregate depends on order: %d vs %d", a, b)
	}
	if a != 1000 {
		t.Fatalf("expected 1000, got %d", a)
	}
}

func TestAggregateClampsNegative(t *testing.T) {
	if got := AggregateItems(items(500, -200)); got != 500 {
		t.Fatalf("expected negative price treated as zero, got %d", got)
	}
}

func TestAdditionIsFlatPerBooking(t *testing.T) {
	// Two passengers must not double the addition.
	got := Total(items(500, 500), 100)
	if got != 1100 {
		t.Fatalf("expected flat addition, got %d", got)
	}
}

func TestResolveDeposit(t *testing.T) {
	tests := []struct {
		name       string
		total      Money
		useDeposit bool
		available  Money
		deducted   Money
		due        Money
	}{
		{"partial cover", 1100, true, 300, 300, 800},
		{"full cover capped at total", 1100, true, 1500, 1100, 0},
		{"toggle off ignores balance", 1100, false, 1500, 0, 1100},
		{"zero balance", 1100, true, 0, 0, 1100},
		{"negative balance treated as zero", 1100, true, -50, 0, 1100},
		{"zero total", 0, true, 500, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ResolveDeposit(tt.total, tt.useDeposit, tt.available)
			if d.DepositDeducted != tt.deducted || d.AmountDue != tt.due {
				t.Fatalf("got deducted=%d due=%d, want deducted=%d due=%d",
					d.DepositDeducted, d.AmountDue, tt.deducted, tt.due)
			}
			if d.AmountDue < 0 {
				t.Fatalf("amount due went negative: %d", d.AmountDue)
			}
		})
	}
}

func TestPerPersonZeroCountFallsBack(t *testing.T) {
	if got := PerPerson(1100, 0); got != 1100 {
		t.Fatalf("expected fallback to total, got %d", got)
	}
	if got := PerPerson(1100, 2); got != 550 {
		t.Fatalf("expected 550, got %d", got)
	}
}

func TestQuoteScenario(t *testing.T) {
	in := Input{
		Items:            items(500, 500),
		Addition:         100,
		PassengerCount:   2,
		UseDeposit:       true,
		AvailableDeposit: 300,
	}
	s := Quote(in)
	if s.FaceValue != 1100 {
		t.Fatalf("face value = %d, want 1100", s.FaceValue)
	}
	if s.PerPerson != 550 {
		t.Fatalf("per person = %d, want 550", s.PerPerson)
	}
	if s.DepositDeducted != 300 || s.AmountDue != 800 {
		t.Fatalf("deduction = %d/%d, want 300/800", s.DepositDeducted, s.AmountDue)
	}
}

func TestQuoteIdempotent(t *testing.T) {
	in := Input{Items: items(450, 450, 200), Addition: 75, PassengerCount: 3, UseDeposit: true, AvailableDeposit: 10_000}
	first := Quote(in)
	second := Quote(in)
	if first != second {
		t.Fatalf("quote not idempotent: %+v vs %+v", first, second)
	}
}

func TestSourceValid(t *testing.T) {
	for _, s := range []Source{SourceDirect, SourceVendor, SourceAgent} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if Source("walkin").Valid() {
		t.Fatal("unexpected valid source")
	}
}
