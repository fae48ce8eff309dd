package receipt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMethodValid(t *testing.T) {
	for _, m := range []Method{MethodCash, MethodBank, MethodMobile} {
		require.True(t, m.Valid(), string(m))
	}
	for _, m := range []Method{"", "cheque", "CASH", "crypto"} {
		require.False(t, m.Valid(), string(m))
	}
}
