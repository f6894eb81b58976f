package services

import (
	"context"

	"tripmarket/internal/domain"
	"tripmarket/internal/utils"
)

// RoleGuard checks a session against the role persisted in the users table.
// The role carried by the token is never trusted.
type RoleGuard struct {
	Users RoleLookup
}

func (g RoleGuard) RequireRole(ctx context.Context, session *domain.Session, minimum domain.Role) (domain.Session, error) {
	return g.RequireAnyRole(ctx, session, minimum)
}

// RequireAnyRole passes when the persisted role satisfies at least one of roles.
func (g RoleGuard) RequireAnyRole(ctx context.Context, session *domain.Session, roles ...domain.Role) (domain.Session, error) {
	if session.Empty() {
		return domain.Session{}, domain.UnauthorizedError{Msg: "missing session"}
	}

	stored, err := g.Users.GetRole(ctx, session.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Session{}, domain.UnauthorizedError{Msg: "unknown user"}
		}
		return domain.Session{}, err
	}
	role, ok := domain.ParseRole(string(stored))
	if !ok {
		return domain.Session{}, domain.UnauthorizedError{Msg: "unknown role"}
	}

	for _, required := range roles {
		if role.Satisfies(required) {
			return domain.Session{UserID: session.UserID, Role: role}, nil
		}
	}

	utils.Logger(ctx, "guard").WithField("user_id", session.UserID).WithField("role", role).Info("role check denied")
	return domain.Session{}, domain.UnauthorizedError{Msg: "insufficient role"}
}
