package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/blog-api/auth"
	"github.com/diewo77/blog-api/httpx"
	"github.com/diewo77/blog-api/internal/gate"
	"github.com/diewo77/blog-api/internal/models"
	"gorm.io/gorm"
)

// AuthGate is the central authorization point: a configured Gate plus a
// cached staff lookup.
type AuthGate struct {
	Gate       *gate.Gate[uint]
	staffCheck *gate.CachedCheck[uint]
}

// NewAuthGate wires the policies for every resource type.
//   - "post": author-or-read-only
//   - "user": staff only (cached DB lookup)
//   - catalog types: any authenticated user
func NewAuthGate(db *gorm.DB, staffTTL time.Duration) *AuthGate {
	staffCheck := gate.NewCachedCheck(func(ctx context.Context, uid uint) bool {
		var count int64
		err := db.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND is_staff = ? AND is_active = ?", uid, true, true).
			Limit(1).Count(&count).Error
		return err == nil && count > 0
	}, staffTTL)

	g := gate.NewGate[uint]()
	g.Register("post", NewAuthorOnly())
	g.Register("user", NewStaffOnly(staffCheck.Check))
	for _, rt := range []string{"category", "book", "book_author", "publisher"} {
		g.Register(rt, Authenticated{})
	}
	return &AuthGate{Gate: g, staffCheck: staffCheck}
}

// Authorize checks whether the current user may perform action on resource.
// Returns nil if authorized, gate.ErrUnauthorized otherwise.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, userID, action, resourceType, resource)
}

// Can is a convenience method that returns bool instead of error.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	return ag.Authorize(ctx, action, resourceType, resource) == nil
}

// InvalidateUser clears the cached staff answer for a user.
// Call this when the staff or active flag changes.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.staffCheck.Invalidate(userID)
}

// Require returns middleware performing the collection-level check for a
// resource type (resource nil). Instance-level checks happen in the handlers
// once the resource is loaded; both must pass.
func (ag *AuthGate) Require(resourceType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action := ActionForMethod(r.Method, false)
			if err := ag.Authorize(r.Context(), action, resourceType, nil); err != nil {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
