package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaivio/nodes-api/internal/api/middleware"
	"github.com/zaivio/nodes-api/internal/domain"
	"github.com/zaivio/nodes-api/internal/service"
)

type stubRedemptionService struct {
	RedeemFn         func(ctx context.Context, userID uint, points int) (domain.Transaction, domain.UserPoints, error)
	SettleApprovedFn func(ctx context.Context) (int, error)
}

func (s *stubRedemptionService) Redeem(ctx context.Context, userID uint, points int) (domain.Transaction, domain.UserPoints, error) {
	if s.RedeemFn != nil {
		return s.RedeemFn(ctx, userID, points)
	}
	return domain.Transaction{}, domain.UserPoints{}, nil
}

func (s *stubRedemptionService) ListUserTransactions(context.Context, uint) ([]domain.Transaction, error) {
	return nil, nil
}

func (s *stubRedemptionService) ListAllTransactions(context.Context) ([]domain.AdminTransaction, error) {
	return nil, nil
}

func (s *stubRedemptionService) ApproveTransactions(_ context.Context, ids []uint) ([]domain.Transaction, error) {
	approved := make([]domain.Transaction, 0, len(ids))
	for _, id := range ids {
		approved = append(approved, domain.Transaction{ID: id, Status: domain.TransactionApproved})
	}
	return approved, nil
}

func (s *stubRedemptionService) SettleApproved(ctx context.Context) (int, error) {
	if s.SettleApprovedFn != nil {
		return s.SettleApprovedFn(ctx)
	}
	return 0, nil
}

type stubUserGetter struct {
	user domain.User
}

func (s *stubUserGetter) GetUser(context.Context, uint) (domain.User, error) {
	return s.user, nil
}

func newTransactionRouter(svc RedemptionService, users UserGetter, authedUserID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if authedUserID != 0 {
		router.Use(func(ctx *gin.Context) {
			ctx.Set(middleware.ContextKeyUserID, authedUserID)
		})
	}

	h := NewTransactionHandler(svc, users)
	router.POST("/transactions/redeem", h.HandleRedeem)
	router.POST("/transactions/approve", h.HandleApproveTransactions)
	router.POST("/transactions/settle", h.HandleSettleApproved)

	return router
}

func TestHandleRedeem(t *testing.T) {
	t.Run("creates an on-hold transaction", func(t *testing.T) {
		svc := &stubRedemptionService{
			RedeemFn: func(_ context.Context, userID uint, points int) (domain.Transaction, domain.UserPoints, error) {
				require.Equal(t, uint(7), userID)
				require.Equal(t, 50, points)
				return domain.Transaction{ID: 1, UserID: userID, TokensRedeemed: 5, Status: domain.TransactionOnHold},
					domain.UserPoints{UserID: userID, AvailableForRedemption: 100}, nil
			},
		}
		router := newTransactionRouter(svc, &stubUserGetter{}, 7)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions/redeem", strings.NewReader(`{"points":50}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"on_hold"`)
	})

	t.Run("insufficient balance is unprocessable", func(t *testing.T) {
		svc := &stubRedemptionService{
			RedeemFn: func(context.Context, uint, int) (domain.Transaction, domain.UserPoints, error) {
				return domain.Transaction{}, domain.UserPoints{}, service.ErrInsufficientBalance
			},
		}
		router := newTransactionRouter(svc, &stubUserGetter{}, 7)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions/redeem", strings.NewReader(`{"points":50}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("missing wallet is not found", func(t *testing.T) {
		svc := &stubRedemptionService{
			RedeemFn: func(context.Context, uint, int) (domain.Transaction, domain.UserPoints, error) {
				return domain.Transaction{}, domain.UserPoints{}, service.ErrWalletNotFound
			},
		}
		router := newTransactionRouter(svc, &stubUserGetter{}, 7)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions/redeem", strings.NewReader(`{"points":50}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects non-positive points before the service", func(t *testing.T) {
		called := false
		svc := &stubRedemptionService{
			RedeemFn: func(context.Context, uint, int) (domain.Transaction, domain.UserPoints, error) {
				called = true
				return domain.Transaction{}, domain.UserPoints{}, nil
			},
		}
		router := newTransactionRouter(svc, &stubUserGetter{}, 7)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions/redeem", strings.NewReader(`{"points":0}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, called)
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		router := newTransactionRouter(&stubRedemptionService{}, &stubUserGetter{}, 0)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions/redeem", strings.NewReader(`{"points":50}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandleApproveTransactions(t *testing.T) {
	admin := &stubUserGetter{user: domain.User{ID: 1, Role: domain.RoleAdmin}}

	t.Run("approves the batch for admins", func(t *testing.T) {
		router := newTransactionRouter(&stubRedemptionService{}, admin, 1)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions/approve", strings.NewReader(`{"transaction_ids":[1,2]}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"approved"`)
	})

	t.Run("rejects non-admins", func(t *testing.T) {
		member := &stubUserGetter{user: domain.User{ID: 2, Role: domain.RoleUser}}
		router := newTransactionRouter(&stubRedemptionService{}, member, 2)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions/approve", strings.NewReader(`{"transaction_ids":[1]}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		router := newTransactionRouter(&stubRedemptionService{}, admin, 1)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions/approve", strings.NewReader(`{"transaction_ids":[]}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleSettleApproved(t *testing.T) {
	admin := &stubUserGetter{user: domain.User{ID: 1, Role: domain.RoleAdmin}}
	svc := &stubRedemptionService{
		SettleApprovedFn: func(context.Context) (int, error) {
			return 3, nil
		},
	}
	router := newTransactionRouter(svc, admin, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transactions/settle", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"settled":3`)
}
