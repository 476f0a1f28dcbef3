package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/recharge-backend/internal/platform/apierr"
)

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, apierr.Invalid("invalid_"+name, "invalid %s", name)
	}
	return id, nil
}

// optionalUserID reads ?user_id=. Absent yields nil; malformed is a 400.
func optionalUserID(c *gin.Context) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query("user_id"))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierr.Invalid("invalid_user_id", "invalid user_id %q", raw)
	}
	return &id, nil
}
