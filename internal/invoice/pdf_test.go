package invoice

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/fare"
)

func sampleInvoice() Invoice {
	inv := Invoice{
		ID:              uuid.New(),
		InvoiceNo:       "INV-202608-000042",
		CustomerID:      uuid.New(),
		Source:          "vendor",
		Status:          StatusIssued,
		FaceValue:       110000,
		Addition:        10000,
		DepositDeducted: 30000,
		AmountDue:       80000,
		PassengerCount:  2,
		PerPerson:       55000,
		Currency:        "BDT",
		CreatedAt:       time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		Items: []Item{
			{PassengerName: "Karim Ahmed", Sector: "DAC-JED", TravelDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), UnitPrice: 50000},
			{PassengerName: "Rahim Ahmed", Sector: "DAC-JED", TravelDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), UnitPrice: 50000},
		},
	}
	inv.RoutePerPerson()
	return inv
}

func TestPDFRendererProducesDocument(t *testing.T) {
	renderer := PDFRenderer{AgencyName: "Silkway Travels", AgencyPhone: "+880-1700-000000"}

	data, filename, err := renderer.Render(sampleInvoice(), "Karim Ahmed", "+880-1800-000000")
	require.NoError(t, err)
	require.Equal(t, "INV-202608-000042.pdf", filename)
	require.NotEmpty(t, data)
	require.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFRendererMarksVoidInvoices(t *testing.T) {
	inv := sampleInvoice()
	inv.Status = StatusVoid
	inv.VoidReason = "duplicate entry"

	data, _, err := PDFRenderer{}.Render(inv, "Karim Ahmed", "")
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestSummaryRowsSubtotalExcludesAddition(t *testing.T) {
	inv := sampleInvoice()

	rows := summaryRows(inv)
	require.Len(t, rows, 5)
	require.Equal(t, "Subtotal", rows[0].label)
	require.Equal(t, fare.Money(100000), rows[0].amount)
	require.Equal(t, "Total", rows[2].label)
	require.Equal(t, inv.FaceValue, rows[2].amount)
	require.Equal(t, "Amount due", rows[4].label)
	require.Equal(t, inv.AmountDue, rows[4].amount)
}

func TestRoutePerPerson(t *testing.T) {
	tests := []struct {
		source      string
		wantVendor  bool
		wantAirline bool
	}{
		{source: "vendor", wantVendor: true},
		{source: "agent", wantVendor: true},
		{source: "direct", wantAirline: true},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			inv := sampleInvoice()
			inv.Source = fare.Source(tt.source)
			inv.RoutePerPerson()
			if tt.wantVendor {
				require.NotNil(t, inv.VendorPrice)
				require.Equal(t, inv.PerPerson, *inv.VendorPrice)
				require.Nil(t, inv.AirlinePrice)
			}
			if tt.wantAirline {
				require.NotNil(t, inv.AirlinePrice)
				require.Equal(t, inv.PerPerson, *inv.AirlinePrice)
				require.Nil(t, inv.VendorPrice)
			}
		})
	}
}
