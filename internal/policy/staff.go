package policy

import (
	"context"

	"github.com/diewo77/blog-api/internal/gate"
)

// StaffOnly allows every action to staff users and nothing to anyone else.
// The lookup is injected so the policy stays free of DB imports.
type StaffOnly struct {
	IsStaff func(ctx context.Context, userID uint) bool
}

func NewStaffOnly(isStaff func(ctx context.Context, userID uint) bool) StaffOnly {
	return StaffOnly{IsStaff: isStaff}
}

func (p StaffOnly) Can(ctx context.Context, userID uint, _ gate.Action, _ any) bool {
	return p.IsStaff != nil && p.IsStaff(ctx, userID)
}

// Authenticated admits any non-anonymous user; the Gate's zero-value check
// already filtered anonymous callers, so this is a constant true.
type Authenticated struct{}

func (Authenticated) Can(context.Context, uint, gate.Action, any) bool { return true }
