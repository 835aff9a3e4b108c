package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaivio/nodes-api/internal/api/handler/v1/request"
	"github.com/zaivio/nodes-api/internal/api/handler/v1/response"
	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/service"
)

type RewardService interface {
	RunDailyAccrual(ctx context.Context) (int, error)
	GetPoints(ctx context.Context, userID uint) (domain.UserPoints, error)
	ListAllPoints(ctx context.Context) ([]domain.UserPoints, error)
	CreditPoints(ctx context.Context, userID uint, points int, kind domain.ActivityKind, description string) (domain.UserPoints, error)
	GetActivity(ctx context.Context, userID uint, kind domain.ActivityKind) ([]domain.RewardActivity, error)
}

type PointsHandler struct {
	svc   RewardService
	users UserGetter
}

func NewPointsHandler(svc RewardService, users UserGetter) *PointsHandler {
	return &PointsHandler{
		svc:   svc,
		users: users,
	}
}

// HandleGetMyPoints godoc
// @Summary      Get the current user's points balances
// @Tags         points
// @Produce      json
// @Success      200      {object}   domain.UserPoints
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /points [get]
func (h *PointsHandler) HandleGetMyPoints(ctx *gin.Context) {
	userID, ok := mustCurrentUserID(ctx)
	if !ok {
		return
	}

	points, err := h.svc.GetPoints(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrPointsNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrPointsNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetMyPoints -> h.svc.GetPoints -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, points)
}

// HandleGetUserPoints godoc
// @Summary      Get a user's points balances
// @Tags         points
// @Produce      json
// @Param        userID   path       int true "user ID"
// @Success      200      {object}   domain.UserPoints
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /points/{userID} [get]
func (h *PointsHandler) HandleGetUserPoints(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	userID, err := parseUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	points, err := h.svc.GetPoints(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrPointsNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrPointsNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetUserPoints -> h.svc.GetPoints -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, points)
}

// HandleListAllPoints godoc
// @Summary      List points balances for every active user
// @Tags         points
// @Produce      json
// @Success      200      {array}    domain.UserPoints
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /points/all [get]
func (h *PointsHandler) HandleListAllPoints(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	accounts, err := h.svc.ListAllPoints(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListAllPoints -> h.svc.ListAllPoints -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, accounts)
}

// HandleCreditPoints godoc
// @Summary      Credit bonus points to a user
// @Tags         points
// @Produce      json
// @Param        userID   path       int true "user ID"
// @Param        request  body       request.CreditPointsRequest true "request body"
// @Success      200      {object}   domain.UserPoints
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /points/{userID}/credit [post]
func (h *PointsHandler) HandleCreditPoints(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	userID, err := parseUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	req := request.CreditPointsRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	points, err := h.svc.CreditPoints(ctx.Request.Context(), userID, req.Points, domain.ActivityBonus, req.Description)
	if err != nil {
		err = fmt.Errorf("v1.HandleCreditPoints -> h.svc.CreditPoints -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, points)
}

// HandleGetMyActivity godoc
// @Summary      Get the current user's reward activity
// @Tags         points
// @Produce      json
// @Param        type     query      string false "activity type filter" Enums(reward, redemption, bonus)
// @Success      200      {array}    domain.RewardActivity
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /points/activity [get]
func (h *PointsHandler) HandleGetMyActivity(ctx *gin.Context) {
	userID, ok := mustCurrentUserID(ctx)
	if !ok {
		return
	}

	kind := domain.ActivityKind(ctx.Query("type"))

	activities, err := h.svc.GetActivity(ctx.Request.Context(), userID, kind)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetMyActivity -> h.svc.GetActivity -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, activities)
}

// HandleGetUserActivity godoc
// @Summary      Get a user's reward activity
// @Tags         points
// @Produce      json
// @Param        userID   path       int true "user ID"
// @Param        type     query      string false "activity type filter" Enums(reward, redemption, bonus)
// @Success      200      {array}    domain.RewardActivity
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /points/{userID}/activity [get]
func (h *PointsHandler) HandleGetUserActivity(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	userID, err := parseUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	kind := domain.ActivityKind(ctx.Query("type"))

	activities, err := h.svc.GetActivity(ctx.Request.Context(), userID, kind)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetUserActivity -> h.svc.GetActivity -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, activities)
}

// HandleRunAccrual godoc
// @Summary      Trigger one daily reward cycle
// @Tags         points
// @Produce      json
// @Success      200      {object}   response.AccrualResponse
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /points/accrual/run [post]
func (h *PointsHandler) HandleRunAccrual(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	credited, err := h.svc.RunDailyAccrual(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleRunAccrual -> h.svc.RunDailyAccrual -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.AccrualResponse{UsersCredited: credited})
}
