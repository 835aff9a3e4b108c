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

type RedemptionService interface {
	Redeem(ctx context.Context, userID uint, points int) (domain.Transaction, domain.UserPoints, error)
	ListUserTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error)
	ListAllTransactions(ctx context.Context) ([]domain.AdminTransaction, error)
	ApproveTransactions(ctx context.Context, ids []uint) ([]domain.Transaction, error)
	SettleApproved(ctx context.Context) (int, error)
}

type TransactionHandler struct {
	svc   RedemptionService
	users UserGetter
}

func NewTransactionHandler(svc RedemptionService, users UserGetter) *TransactionHandler {
	return &TransactionHandler{
		svc:   svc,
		users: users,
	}
}

// HandleRedeem godoc
// @Summary      Redeem points for tokens
// @Tags         transactions
// @Produce      json
// @Param        request  body       request.RedeemRequest true "request body"
// @Success      201      {object}   response.RedeemResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /transactions/redeem [post]
func (h *TransactionHandler) HandleRedeem(ctx *gin.Context) {
	userID, ok := mustCurrentUserID(ctx)
	if !ok {
		return
	}

	req := request.RedeemRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	txn, points, err := h.svc.Redeem(ctx.Request.Context(), userID, req.Points)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRedemption):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidRedemption))
		case errors.Is(err, service.ErrWalletNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrWalletNotFound))
		case errors.Is(err, service.ErrInsufficientBalance):
			response.RenderErr(ctx, response.ErrUnprocessableEntity(service.ErrInsufficientBalance))
		case errors.Is(err, service.ErrPointsNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrPointsNotFound))
		default:
			err = fmt.Errorf("v1.HandleRedeem -> h.svc.Redeem -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, response.RedeemResponse{
		Transaction: txn,
		Points:      points,
	})
}

// HandleListMyTransactions godoc
// @Summary      List the current user's transactions
// @Tags         transactions
// @Produce      json
// @Success      200      {array}    domain.Transaction
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /transactions [get]
func (h *TransactionHandler) HandleListMyTransactions(ctx *gin.Context) {
	userID, ok := mustCurrentUserID(ctx)
	if !ok {
		return
	}

	txns, err := h.svc.ListUserTransactions(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyTransactions -> h.svc.ListUserTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, txns)
}

// HandleListAllTransactions godoc
// @Summary      List all transactions with their owners
// @Tags         transactions
// @Produce      json
// @Success      200      {array}    domain.AdminTransaction
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /transactions/all [get]
func (h *TransactionHandler) HandleListAllTransactions(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	txns, err := h.svc.ListAllTransactions(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListAllTransactions -> h.svc.ListAllTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, txns)
}

// HandleApproveTransactions godoc
// @Summary      Approve a batch of on-hold transactions
// @Tags         transactions
// @Produce      json
// @Param        request  body       request.ApproveTransactionsRequest true "request body"
// @Success      200      {array}    domain.Transaction
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /transactions/approve [post]
func (h *TransactionHandler) HandleApproveTransactions(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	req := request.ApproveTransactionsRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	approved, err := h.svc.ApproveTransactions(ctx.Request.Context(), req.TransactionIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrTransactionNotFound))
		case errors.Is(err, service.ErrAlreadyApproved):
			response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyApproved))
		default:
			err = fmt.Errorf("v1.HandleApproveTransactions -> h.svc.ApproveTransactions -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, approved)
}

// HandleSettleApproved godoc
// @Summary      Push approved transactions onto the chain
// @Tags         transactions
// @Produce      json
// @Success      200      {object}   response.SettlementResponse
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /transactions/settle [post]
func (h *TransactionHandler) HandleSettleApproved(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	settled, err := h.svc.SettleApproved(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleSettleApproved -> h.svc.SettleApproved -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.SettlementResponse{Settled: settled})
}
