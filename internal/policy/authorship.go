// Package policy holds the authorization rules for the API resources.
// Collection-level and instance-level checks are independent; a route passes
// only when both do.
package policy

import (
	"context"
	"net/http"

	"github.com/diewo77/blog-api/internal/gate"
)

// Authored is implemented by resources that carry an author reference.
type Authored interface {
	GetAuthorID() uint
}

// IsSafeMethod reports whether the HTTP method has no side effects.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// ActionForMethod maps an HTTP method to a gate action. hasResource
// distinguishes a collection GET (list) from an instance GET (view).
func ActionForMethod(method string, hasResource bool) gate.Action {
	switch method {
	case http.MethodPost:
		return gate.ActionCreate
	case http.MethodPut, http.MethodPatch:
		return gate.ActionUpdate
	case http.MethodDelete:
		return gate.ActionDelete
	default:
		if hasResource {
			return gate.ActionView
		}
		return gate.ActionList
	}
}

// CollectionPermitted is the collection-level check: any authenticated user
// may list or create; anonymous callers may not, not even for reads.
func CollectionPermitted(userID uint) bool { return userID != 0 }

// InstancePermitted is the instance-level check: reads are open to anyone
// who got past the collection check, writes only to the resource's author.
func InstancePermitted(userID uint, method string, resource any) bool {
	if IsSafeMethod(method) {
		return true
	}
	a, ok := resource.(Authored)
	if !ok {
		// Resources without an author reference cannot be mutated through
		// this policy.
		return false
	}
	return userID != 0 && a.GetAuthorID() == userID
}

// AuthorOnly is the gate.Policy form of the same two rules: the Gate already
// rejects anonymous users, a nil resource means collection-level access,
// read actions bypass the authorship comparison.
type AuthorOnly struct{}

func NewAuthorOnly() AuthorOnly { return AuthorOnly{} }

func (AuthorOnly) Can(_ context.Context, userID uint, action gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	if action.ReadOnly() {
		return true
	}
	a, ok := resource.(Authored)
	if !ok {
		return false
	}
	return a.GetAuthorID() == userID
}
