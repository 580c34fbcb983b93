// Package policy holds the authorization predicates shared by every
// operation that exposes another account's content.
package policy

import "github.com/maheshrc27/social-api/internal/models"

// CanListPosts reports whether viewer may list target's posts. followsTarget
// states whether target is in the viewer's following set; it is ignored for
// anonymous viewers.
func CanListPosts(viewer models.Identity, target *models.Account, followsTarget bool) bool {
	if target == nil {
		return false
	}
	switch {
	case target.Role == models.RolePublicUser:
		return true
	case viewer.IsAdmin():
		return true
	case viewer.Anonymous():
		return false
	case viewer.AccountID == target.ID:
		return true
	default:
		return followsTarget
	}
}
