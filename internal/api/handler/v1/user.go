package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zaivio/nodes-api/internal/api/handler/v1/request"
	"github.com/zaivio/nodes-api/internal/api/handler/v1/response"
	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, input service.NewUser) (domain.User, string, error)
	BulkCreateUsers(ctx context.Context, inputs []service.NewUser) (service.BulkCreateReport, error)
	SetUserStatus(ctx context.Context, id uint, status string) (domain.User, error)
	UpdateUser(ctx context.Context, id uint, patch service.UserPatch) (domain.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

func parseUserID(ctx *gin.Context) (uint, error) {
	raw := ctx.Param("userID")

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}

	return uint(id), nil
}

// HandleGetUser godoc
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        userID   path       int true "user ID"
// @Success      200      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /users/{userID} [get]
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	callerID, ok := mustCurrentUserID(ctx)
	if !ok {
		return
	}

	id, err := parseUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	// Users may read themselves; anyone else requires admin.
	if callerID != id {
		if _, ok := requireAdmin(ctx, h.svc); !ok {
			return
		}
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUserNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetUser -> h.svc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleListUsers godoc
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Success      200      {array}    domain.User
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.svc); !ok {
		return
	}

	users, err := h.svc.ListUsers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListUsers -> h.svc.ListUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleCreateUser godoc
// @Summary      Create a user with an optional node allocation
// @Tags         users
// @Produce      json
// @Param        request  body       request.CreateUserRequest true "request body"
// @Success      201      {object}   response.CreatedUserResponse
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) HandleCreateUser(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.svc); !ok {
		return
	}

	req := request.CreateUserRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, tempPassword, err := h.svc.CreateUser(ctx.Request.Context(), service.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		Nodes:    req.Nodes,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserEmailExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrUserEmailExists))

			return
		}
		if errors.Is(err, service.ErrCapacityExceeded) {
			response.RenderErr(ctx, response.ErrUnprocessableEntity(service.ErrCapacityExceeded))

			return
		}

		err = fmt.Errorf("v1.HandleCreateUser -> h.svc.CreateUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, response.CreatedUserResponse{
		User:         user,
		TempPassword: tempPassword,
	})
}

// HandleBulkCreateUsers godoc
// @Summary      Create a batch of users
// @Tags         users
// @Produce      json
// @Param        request  body       request.BulkCreateUsersRequest true "request body"
// @Success      207      {object}   response.BulkCreatedUsersResponse
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /users/bulk [post]
func (h *UserHandler) HandleBulkCreateUsers(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.svc); !ok {
		return
	}

	req := request.BulkCreateUsersRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	inputs := make([]service.NewUser, len(req.Users))
	for i, u := range req.Users {
		inputs[i] = service.NewUser{
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
			Nodes:    u.Nodes,
		}
	}

	report, err := h.svc.BulkCreateUsers(ctx.Request.Context(), inputs)
	if err != nil {
		err = fmt.Errorf("v1.HandleBulkCreateUsers -> h.svc.BulkCreateUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	failed := make([]response.BulkUserFailure, len(report.Failed))
	for i, f := range report.Failed {
		failed[i] = response.BulkUserFailure{
			Email:  f.Email,
			Reason: f.Reason,
		}
	}

	ctx.JSON(http.StatusMultiStatus, response.BulkCreatedUsersResponse{
		Created: report.Created,
		Failed:  failed,
		Count:   len(report.Created),
	})
}

// HandleUpdateUser godoc
// @Summary      Update a user, including their node allocation
// @Tags         users
// @Produce      json
// @Param        userID   path       int true "user ID"
// @Param        request  body       request.UpdateUserRequest true "request body"
// @Success      200      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /users/{userID} [patch]
func (h *UserHandler) HandleUpdateUser(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.svc); !ok {
		return
	}

	id, err := parseUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	req := request.UpdateUserRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.UpdateUser(ctx.Request.Context(), id, service.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		Status:   req.Status,
		Nodes:    req.Nodes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUserNotFound))
		case errors.Is(err, service.ErrCapacityExceeded):
			response.RenderErr(ctx, response.ErrUnprocessableEntity(service.ErrCapacityExceeded))
		case errors.Is(err, service.ErrInvalidAllocation):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidAllocation))
		default:
			err = fmt.Errorf("v1.HandleUpdateUser -> h.svc.UpdateUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleSetUserStatus godoc
// @Summary      Suspend or reinstate a user
// @Tags         users
// @Produce      json
// @Param        userID   path       int true "user ID"
// @Param        request  body       request.SetUserStatusRequest true "request body"
// @Success      200      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /users/{userID}/status [put]
func (h *UserHandler) HandleSetUserStatus(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.svc); !ok {
		return
	}

	id, err := parseUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	req := request.SetUserStatusRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.SetUserStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUserNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleSetUserStatus -> h.svc.SetUserStatus -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, user)
}
