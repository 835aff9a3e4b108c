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

type WalletService interface {
	GetWallet(ctx context.Context, userID uint) (domain.Wallet, error)
	SaveWallet(ctx context.Context, userID uint, walletAddress, walletType string) (domain.Wallet, error)
	DeleteWallet(ctx context.Context, userID uint, walletAddress string) error
}

type WalletHandler struct {
	svc WalletService
}

func NewWalletHandler(svc WalletService) *WalletHandler {
	return &WalletHandler{
		svc: svc,
	}
}

// HandleGetMyWallet godoc
// @Summary      Get the current user's wallet
// @Tags         wallets
// @Produce      json
// @Success      200      {object}   domain.Wallet
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /wallets [get]
func (h *WalletHandler) HandleGetMyWallet(ctx *gin.Context) {
	userID, ok := mustCurrentUserID(ctx)
	if !ok {
		return
	}

	wallet, err := h.svc.GetWallet(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrWalletNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetMyWallet -> h.svc.GetWallet -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, wallet)
}

// HandleSaveWallet godoc
// @Summary      Register or replace the current user's wallet
// @Tags         wallets
// @Produce      json
// @Param        request  body       request.SaveWalletRequest true "request body"
// @Success      200      {object}   domain.Wallet
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /wallets [put]
func (h *WalletHandler) HandleSaveWallet(ctx *gin.Context) {
	userID, ok := mustCurrentUserID(ctx)
	if !ok {
		return
	}

	req := request.SaveWalletRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	wallet, err := h.svc.SaveWallet(ctx.Request.Context(), userID, req.WalletAddress, req.WalletType)
	if err != nil {
		if errors.Is(err, service.ErrWalletExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrWalletExists))

			return
		}

		err = fmt.Errorf("v1.HandleSaveWallet -> h.svc.SaveWallet -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, wallet)
}

// HandleDeleteWallet godoc
// @Summary      Remove the current user's wallet
// @Tags         wallets
// @Produce      json
// @Param        request  body       request.SaveWalletRequest true "request body"
// @Success      200      {object}   response.MessageResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /wallets [delete]
func (h *WalletHandler) HandleDeleteWallet(ctx *gin.Context) {
	userID, ok := mustCurrentUserID(ctx)
	if !ok {
		return
	}

	req := request.SaveWalletRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := h.svc.DeleteWallet(ctx.Request.Context(), userID, req.WalletAddress); err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrWalletNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteWallet -> h.svc.DeleteWallet -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "wallet removed"})
}
