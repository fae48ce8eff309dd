package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/obs"
)

const (
	defaultPINMaxAttempts   = 5
	defaultPINLockoutWindow = 15 * time.Minute
)

// PINGuard verifies transaction PINs with a Redis-backed attempt counter.
// After MaxAttempts failures within LockoutWindow the account is locked
// until the window expires.
type PINGuard struct {
	Staff         StaffDirectory
	R             *redis.Client
	MaxAttempts   int
	LockoutWindow time.Duration
}

func (g PINGuard) maxAttempts() int {
	if g.MaxAttempts > 0 {
		return g.MaxAttempts
	}
	return defaultPINMaxAttempts
}

func (g PINGuard) window() time.Duration {
	if g.LockoutWindow > 0 {
		return g.LockoutWindow
	}
	return defaultPINLockoutWindow
}

func pinAttemptKey(staffID uuid.UUID) string {
	return "agency:pin:attempts:" + staffID.String()
}

// Verify checks the supplied PIN against the staff member's stored hash.
func (g PINGuard) Verify(ctx context.Context, staffID uuid.UUID, pin string) error {
	if g.Staff == nil {
		return fmt.Errorf("auth: pin guard not configured")
	}
	pin = strings.TrimSpace(pin)
	if pin == "" {
		pinOutcome("missing")
		return common.NewAppError("PIN_REQUIRED", "transaction pin is required", http.StatusForbidden, nil)
	}

	if g.R != nil {
		attempts, err := g.R.Get(ctx, pinAttemptKey(staffID)).Int()
		if err == nil && attempts >= g.maxAttempts() {
			pinOutcome("locked")
			return common.NewAppError("PIN_LOCKED", "too many failed pin attempts, try again later", http.StatusForbidden, nil)
		}
	}

	account, err := g.Staff.GetByID(ctx, staffID)
	if err != nil {
		return common.ErrUnauthorized()
	}
	if account.PINHash == "" {
		pinOutcome("unset")
		return common.NewAppError("PIN_NOT_SET", "no transaction pin configured for this account", http.StatusForbidden, nil)
	}

	ok, err := argon2id.ComparePasswordAndHash(pin, account.PINHash)
	if err != nil {
		return fmt.Errorf("compare pin: %w", err)
	}
	if !ok {
		g.recordFailure(ctx, staffID)
		pinOutcome("mismatch")
		return common.NewAppError("PIN_INVALID", "incorrect transaction pin", http.StatusForbidden, nil)
	}

	if g.R != nil {
		_ = g.R.Del(ctx, pinAttemptKey(staffID)).Err()
	}
	pinOutcome("ok")
	return nil
}

func (g PINGuard) recordFailure(ctx context.Context, staffID uuid.UUID) {
	if g.R == nil {
		return
	}
	key := pinAttemptKey(staffID)
	count, err := g.R.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	if count == 1 {
		_ = g.R.Expire(ctx, key, g.window()).Err()
	}
}

func pinOutcome(result string) {
	if obs.PINGateTotal != nil {
		obs.PINGateTotal.WithLabelValues(result).Inc()
	}
}
