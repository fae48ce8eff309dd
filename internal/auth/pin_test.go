package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/staff"
)

func newPINGuard(t *testing.T, pin string) (PINGuard, uuid.UUID) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	account := staff.Staff{
		ID:     uuid.New(),
		Name:   "Nadia",
		Email:  "nadia@agency.local",
		Roles:  []string{staff.RoleBillCreator},
		Active: true,
	}
	if pin != "" {
		hash, err := argon2id.CreateHash(pin, argon2id.DefaultParams)
		require.NoError(t, err)
		account.PINHash = hash
		account.PINSet = true
	}

	guard := PINGuard{
		Staff:         &fakeDirectory{accounts: map[uuid.UUID]staff.Staff{account.ID: account}},
		R:             rdb,
		MaxAttempts:   3,
		LockoutWindow: time.Minute,
	}
	return guard, account.ID
}

func TestPINVerifyAccepts(t *testing.T) {
	guard, id := newPINGuard(t, "4321")
	require.NoError(t, guard.Verify(context.Background(), id, "4321"))
}

func TestPINVerifyRejectsWrongPIN(t *testing.T) {
	guard, id := newPINGuard(t, "4321")

	err := guard.Verify(context.Background(), id, "0000")
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "PIN_INVALID", appErr.Code)
}

func TestPINVerifyRejectsWhenUnset(t *testing.T) {
	guard, id := newPINGuard(t, "")

	err := guard.Verify(context.Background(), id, "1234")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "PIN_NOT_SET", appErr.Code)
}

func TestPINVerifyLocksAfterMaxAttempts(t *testing.T) {
	guard, id := newPINGuard(t, "4321")

	for i := 0; i < guard.MaxAttempts; i++ {
		require.Error(t, guard.Verify(context.Background(), id, "9999"))
	}

	// Correct PIN is refused while the account is locked.
	err := guard.Verify(context.Background(), id, "4321")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "PIN_LOCKED", appErr.Code)
}

func TestPINVerifySuccessResetsCounter(t *testing.T) {
	guard, id := newPINGuard(t, "4321")

	require.Error(t, guard.Verify(context.Background(), id, "9999"))
	require.Error(t, guard.Verify(context.Background(), id, "9999"))
	require.NoError(t, guard.Verify(context.Background(), id, "4321"))

	// The slate is clean, so another run of failures is needed to lock.
	require.Error(t, guard.Verify(context.Background(), id, "9999"))
	require.NoError(t, guard.Verify(context.Background(), id, "4321"))
}
