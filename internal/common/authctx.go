package common

import "context"

type ctxKey string

const (
	staffIDKey    ctxKey = "auth/staff-id"
	staffRolesKey ctxKey = "auth/staff-roles"
	pinOKKey      ctxKey = "auth/pin-verified"
)

// WithStaff stores the authenticated staff identifier and roles on the context.
func WithStaff(ctx context.Context, id string, roles []string) context.Context {
	ctx = context.WithValue(ctx, staffIDKey, id)
	return context.WithValue(ctx, staffRolesKey, roles)
}

// StaffID extracts the authenticated staff identifier from the context.
func StaffID(ctx context.Context) (string, bool) {
	v := ctx.Value(staffIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// StaffRoles returns the roles attached to the authenticated staff member.
func StaffRoles(ctx context.Context) []string {
	if v, ok := ctx.Value(staffRolesKey).([]string); ok {
		return v
	}
	return nil
}

// HasRole reports whether the context carries the given role.
func HasRole(ctx context.Context, role string) bool {
	for _, r := range StaffRoles(ctx) {
		if r == role {
			return true
		}
	}
	return false
}

// WithPINVerified marks the request as having passed the transaction PIN gate.
func WithPINVerified(ctx context.Context) context.Context {
	return context.WithValue(ctx, pinOKKey, true)
}

// PINVerified reports whether the PIN gate was satisfied for this request.
func PINVerified(ctx context.Context) bool {
	ok, _ := ctx.Value(pinOKKey).(bool)
	return ok
}
