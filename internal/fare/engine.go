package fare

import "time"

// Money represents a monetary value stored in minor units.
type Money = int64

// Source identifies where a ticket was procured from. It decides which legacy
// payload field receives the per-person price.
type Source string

const (
	// SourceDirect indicates a ticket issued directly against an airline.
	SourceDirect Source = "direct"
	// SourceVendor indicates a ticket bought through a consolidator/vendor.
	SourceVendor Source = "vendor"
	// SourceAgent indicates a ticket issued on behalf of a sub-agent.
	SourceAgent Source = "agent"
)

// Valid reports whether the source is one of the known discriminants.
func (s Source) Valid() bool {
	switch s {
	case SourceDirect, SourceVendor, SourceAgent:
		return true
	}
	return false
}

// LineItem describes one passenger row on a ticket invoice.
type LineItem struct {
	PassengerName string
	Sector        string
	TravelDate    time.Time
	TicketNumber  string
	UnitPrice     Money
}

// Input carries every field the calculation depends on. All amounts are
// sanitized rather than rejected: negative values count as zero.
type Input struct {
	Items            []LineItem
	Addition         Money
	PassengerCount   int
	UseDeposit       bool
	AvailableDeposit Money
}

// Summary aggregates the computed fare components for one booking.
type Summary struct {
	FaceValue       Money
	Addition        Money
	DepositDeducted Money
	AmountDue       Money
	PassengerCount  int
	PerPerson       Money
}

// Clamp normalizes an amount to the non-negative range.
func Clamp(v Money) Money {
	if v < 0 {
		return 0
	}
	return v
}

// AggregateItems sums the per-item prices. The sum is order-independent and
// treats negative prices as zero.
func AggregateItems(items []LineItem) Money {
	var total Money
	for _, it := range items {
		total += Clamp(it.UnitPrice)
	}
	return total
}

// Total folds the flat booking addition into the aggregated item prices. The
// addition applies once per booking, never per passenger.
func Total(items []LineItem, addition Money) Money {
	return AggregateItems(items) + Clamp(addition)
}

// Deduction is the outcome of resolving a total against a deposit balance.
type Deduction struct {
	DepositDeducted Money
	AmountDue       Money
}

// ResolveDeposit decides how much of the total is drawn from the customer's
// prepaid deposit and how much remains due in cash. When the deposit toggle is
// off the deduction is exactly zero regardless of balance.
func ResolveDeposit(total Money, useDeposit bool, available Money) Deduction {
	total = Clamp(total)
	if !useDeposit {
		return Deduction{DepositDeducted: 0, AmountDue: total}
	}
	deducted := Clamp(available)
	if deducted > total {
		deducted = total
	}
	return Deduction{DepositDeducted: deducted, AmountDue: total - deducted}
}

// PerPerson back-computes the average unit price kept for legacy payload
// fields. A zero passenger count falls back to the total itself.
func PerPerson(total Money, passengerCount int) Money {
	total = Clamp(total)
	if passengerCount <= 0 {
		return total
	}
	return total / Money(passengerCount)
}

// Quote runs the full pipeline: aggregate, combine, resolve deposit, divide.
// It is pure; callers re-run it whenever any input field changes.
func Quote(in Input) Summary {
	addition := Clamp(in.Addition)
	total := AggregateItems(in.Items) + addition
	d := ResolveDeposit(total, in.UseDeposit, in.AvailableDeposit)
	count := in.PassengerCount
	if count < 0 {
		count = 0
	}
	return Summary{
		FaceValue:       total,
		Addition:        addition,
		DepositDeducted: d.DepositDeducted,
		AmountDue:       d.AmountDue,
		PassengerCount:  count,
		PerPerson:       PerPerson(total, count),
	}
}
