package services

import (
	"context"
	"strings"

	"github.com/yungbote/recharge-backend/internal/platform/apierr"
	"github.com/yungbote/recharge-backend/internal/platform/ctxutil"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

// AdminAuthorizer checks the caller identity on the context against the
// admin allow-list. Identity comes from an upstream collaborator.
type AdminAuthorizer interface {
	IsAdmin(email string) bool
	Require(ctx context.Context) error
}

type adminAuthorizer struct {
	log    *logger.Logger
	admins map[string]struct{}
}

func NewAdminAuthorizer(log *logger.Logger, emails []string) AdminAuthorizer {
	admins := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &adminAuthorizer{
		log:    log.With("service", "AdminAuthorizer"),
		admins: admins,
	}
}

func (a *adminAuthorizer) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	_, ok := a.admins[email]
	return ok
}

func (a *adminAuthorizer) Require(ctx context.Context) error {
	id := ctxutil.GetIdentity(ctx)
	if id == nil || id.Email == "" {
		return apierr.Forbidden("admin_required", "missing admin identity")
	}
	if !a.IsAdmin(id.Email) {
		a.log.Warn("admin access denied", "email", id.Email, "source", id.Source)
		return apierr.Forbidden("admin_required", "caller is not an admin")
	}
	return nil
}
