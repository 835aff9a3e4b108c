package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/zaivio/nodes-api/internal/api/handler/v1/response"
	"github.com/zaivio/nodes-api/internal/api/middleware"
	"github.com/zaivio/nodes-api/internal/domain"
)

var errAdminOnly = errors.New("admin access required")

// UserGetter resolves the authenticated user for role checks.
type UserGetter interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

func currentUserID(ctx *gin.Context) (uint, bool) {
	value, ok := ctx.Get(middleware.ContextKeyUserID)
	if !ok {
		return 0, false
	}

	userID, ok := value.(uint)
	return userID, ok
}

// mustCurrentUserID reads the authenticated user id, rendering a 401 when the
// middleware never set one.
func mustCurrentUserID(ctx *gin.Context) (uint, bool) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errors.New("not authenticated")))
		return 0, false
	}

	return userID, true
}

// requireAdmin resolves the caller and rejects non-admins with a 403.
func requireAdmin(ctx *gin.Context, users UserGetter) (domain.User, bool) {
	userID, ok := mustCurrentUserID(ctx)
	if !ok {
		return domain.User{}, false
	}

	user, err := users.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.requireAdmin -> users.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return domain.User{}, false
	}

	if !user.IsAdmin() {
		response.RenderErr(ctx, response.ErrForbidden(errAdminOnly))
		return domain.User{}, false
	}

	return user, true
}
