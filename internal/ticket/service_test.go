package ticket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/fare"
)

func validParams() IssueParams {
	return IssueParams{
		CustomerID: uuid.New(),
		Source:     fare.SourceVendor,
		Items: []ItemParams{
			{PassengerName: "Karim Ahmed", Sector: "DAC-JED", TravelDate: time.Now(), UnitPrice: 50000},
			{PassengerName: "Rahim Ahmed", Sector: "DAC-JED", TravelDate: time.Now(), UnitPrice: 50000},
		},
		Addition:   10000,
		UseDeposit: true,
	}
}

func TestIssueParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*IssueParams)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *IssueParams) {}},
		{name: "unknown source", mutate: func(p *IssueParams) { p.Source = "broker" }, wantErr: true},
		{name: "no items", mutate: func(p *IssueParams) { p.Items = nil }, wantErr: true},
		{name: "blank passenger", mutate: func(p *IssueParams) { p.Items[0].PassengerName = "  " }, wantErr: true},
		{name: "blank sector", mutate: func(p *IssueParams) { p.Items[1].Sector = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			err := p.validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFareInputUsesLiveBalanceAndLineCount(t *testing.T) {
	p := validParams()
	in := p.fareInput(30000)

	require.Equal(t, 2, in.PassengerCount)
	require.Equal(t, int64(30000), in.AvailableDeposit)
	require.True(t, in.UseDeposit)

	summary := fare.Quote(in)
	require.Equal(t, int64(110000), summary.FaceValue)
	require.Equal(t, int64(30000), summary.DepositDeducted)
	require.Equal(t, int64(80000), summary.AmountDue)
	require.Equal(t, int64(55000), summary.PerPerson)
}

func TestQuoteResponseRoutesPerPersonBySource(t *testing.T) {
	summary := fare.Summary{FaceValue: 1100, AmountDue: 1100, PassengerCount: 2, PerPerson: 550}

	vendor := quoteResponse(summary, fare.SourceVendor)
	require.NotNil(t, vendor.VendorPrice)
	require.Equal(t, int64(550), *vendor.VendorPrice)
	require.Nil(t, vendor.AirlinePrice)

	agent := quoteResponse(summary, fare.SourceAgent)
	require.NotNil(t, agent.VendorPrice)
	require.Nil(t, agent.AirlinePrice)

	direct := quoteResponse(summary, fare.SourceDirect)
	require.NotNil(t, direct.AirlinePrice)
	require.Equal(t, int64(550), *direct.AirlinePrice)
	require.Nil(t, direct.VendorPrice)
}
