package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageLimitsParse(t *testing.T) {
	tests := []struct {
		name        string
		limits      PageLimits
		url         string
		wantPage    int
		wantPerPage int
	}{
		{name: "defaults applied", limits: PageLimits{Default: 25, Max: 50}, url: "/api/v1/invoices", wantPage: 1, wantPerPage: 25},
		{name: "explicit page and limit", limits: PageLimits{Default: 25, Max: 50}, url: "/api/v1/invoices?page=3&limit=10", wantPage: 3, wantPerPage: 10},
		{name: "limit capped at max", limits: PageLimits{Default: 25, Max: 50}, url: "/api/v1/invoices?limit=500", wantPage: 1, wantPerPage: 50},
		{name: "garbage falls back", limits: PageLimits{Default: 25, Max: 50}, url: "/api/v1/invoices?page=abc&limit=xyz", wantPage: 1, wantPerPage: 25},
		{name: "negative falls back", limits: PageLimits{Default: 25, Max: 50}, url: "/api/v1/invoices?page=-2&limit=-9", wantPage: 1, wantPerPage: 25},
		{name: "zero value limits use built-in bounds", limits: PageLimits{}, url: "/api/v1/invoices?limit=500", wantPage: 1, wantPerPage: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			page, perPage := tt.limits.Parse(r)
			require.Equal(t, tt.wantPage, page)
			require.Equal(t, tt.wantPerPage, perPage)
		})
	}
}

func TestAtoiDefault(t *testing.T) {
	require.Equal(t, 7, AtoiDefault("7", 3))
	require.Equal(t, 3, AtoiDefault("", 3))
	require.Equal(t, 3, AtoiDefault("seven", 3))
	require.Equal(t, -7, AtoiDefault("-7", 3))
}

func TestParseAmount(t *testing.T) {
	require.Equal(t, int64(150000), ParseAmount("150000"))
	require.Equal(t, int64(0), ParseAmount(""))
	require.Equal(t, int64(0), ParseAmount("12.5"))
	require.Equal(t, int64(0), ParseAmount("-100"))
}

func TestOffset(t *testing.T) {
	require.Equal(t, 0, Offset(1, 20))
	require.Equal(t, 40, Offset(3, 20))
	require.Equal(t, 0, Offset(0, 20))
}
