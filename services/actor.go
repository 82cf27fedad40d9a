package services

import (
	"github.com/anvilworks/cms-api/models"
)

type Permission string

const (
	PermModerateComments Permission = "comments.moderate"
	PermPinComments      Permission = "comments.pin"
	PermResolveReports   Permission = "reports.resolve"
)

// Actor is the already-resolved identity every service call receives. A nil
// *Actor means an anonymous caller.
type Actor struct {
	ID          uint
	Name        string
	Email       string
	Avatar      string
	Permissions map[Permission]struct{}
}

func (a *Actor) Can(p Permission) bool {
	if a == nil {
		return false
	}
	_, ok := a.Permissions[p]
	return ok
}

func (a *Actor) IsModerator() bool {
	return a.Can(PermModerateComments)
}

// IsAuthor reports whether the actor is the registered author of the comment.
// Guest comments have no actor identity, so they can never be matched.
func (a *Actor) IsAuthor(c *models.Comment) bool {
	if a == nil || c.UserID == nil {
		return false
	}
	return a.ID == *c.UserID
}

// PermissionsForRole maps the identity collaborator's role claim onto the
// comment subsystem's permission set.
func PermissionsForRole(role string) map[Permission]struct{} {
	switch role {
	case models.RoleModerator, models.RoleAdmin:
		return map[Permission]struct{}{
			PermModerateComments: {},
			PermPinComments:      {},
			PermResolveReports:   {},
		}
	default:
		return nil
	}
}
