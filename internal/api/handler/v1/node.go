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

type NodeService interface {
	GetAllPools(ctx context.Context) ([]domain.NodePool, error)
	CreatePool(ctx context.Context, pool domain.NodePool) (domain.NodePool, error)
	UpdatePool(ctx context.Context, id uint, patch domain.NodePoolPatch) (domain.NodePool, error)
	DeletePool(ctx context.Context, id uint) error
	AdjustReserved(ctx context.Context, delta int) (domain.PoolSnapshot, error)
	GetAllocation(ctx context.Context, userID uint) (domain.UserNode, error)
	GetAllAllocations(ctx context.Context) ([]domain.UserNode, error)
	SetAllocation(ctx context.Context, userID uint, units int) (domain.UserNode, error)
	DeleteAllocation(ctx context.Context, userID uint) error
}

type NodeHandler struct {
	svc   NodeService
	users UserGetter
}

func NewNodeHandler(svc NodeService, users UserGetter) *NodeHandler {
	return &NodeHandler{
		svc:   svc,
		users: users,
	}
}

func parsePoolID(ctx *gin.Context) (uint, error) {
	raw := ctx.Param("nodeID")

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q", raw)
	}

	return uint(id), nil
}

// HandleGetPools godoc
// @Summary      List the capacity pools
// @Tags         nodes
// @Produce      json
// @Success      200      {array}    domain.NodePool
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /nodes [get]
func (h *NodeHandler) HandleGetPools(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	pools, err := h.svc.GetAllPools(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetPools -> h.svc.GetAllPools -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, pools)
}

// HandleCreatePool godoc
// @Summary      Create a capacity pool
// @Tags         nodes
// @Produce      json
// @Param        request  body       request.CreatePoolRequest true "request body"
// @Success      201      {object}   domain.NodePool
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /nodes [post]
func (h *NodeHandler) HandleCreatePool(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	req := request.CreatePoolRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	pool, err := h.svc.CreatePool(ctx.Request.Context(), domain.NodePool{
		Status:      domain.PoolStatus(req.Status),
		TotalNodes:  req.TotalNodes,
		DailyReward: req.DailyReward,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreatePool -> h.svc.CreatePool -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, pool)
}

// HandleUpdatePool godoc
// @Summary      Update a capacity pool
// @Tags         nodes
// @Produce      json
// @Param        nodeID   path       int true "node pool ID"
// @Param        request  body       request.UpdatePoolRequest true "request body"
// @Success      200      {object}   domain.NodePool
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /nodes/{nodeID} [patch]
func (h *NodeHandler) HandleUpdatePool(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	id, err := parsePoolID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	req := request.UpdatePoolRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	pool, err := h.svc.UpdatePool(ctx.Request.Context(), id, domain.NodePoolPatch{
		TotalNodes:  req.TotalNodes,
		DailyReward: req.DailyReward,
	})
	if err != nil {
		if errors.Is(err, service.ErrPoolNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrPoolNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleUpdatePool -> h.svc.UpdatePool -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, pool)
}

// HandleDeletePool godoc
// @Summary      Delete a capacity pool
// @Tags         nodes
// @Produce      json
// @Param        nodeID   path       int true "node pool ID"
// @Success      200      {object}   response.MessageResponse
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /nodes/{nodeID} [delete]
func (h *NodeHandler) HandleDeletePool(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	id, err := parsePoolID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := h.svc.DeletePool(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPoolNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrPoolNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleDeletePool -> h.svc.DeletePool -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "pool deleted"})
}

// HandleAdjustReserved godoc
// @Summary      Move capacity between the reserved and active pools
// @Tags         nodes
// @Produce      json
// @Param        request  body       request.AdjustReservedRequest true "request body"
// @Success      200      {object}   domain.PoolSnapshot
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /nodes/reserved/adjust [post]
func (h *NodeHandler) HandleAdjustReserved(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	req := request.AdjustReservedRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	snapshot, err := h.svc.AdjustReserved(ctx.Request.Context(), req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCapacityExceeded):
			response.RenderErr(ctx, response.ErrUnprocessableEntity(service.ErrCapacityExceeded))
		case errors.Is(err, service.ErrPoolNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrPoolNotFound))
		default:
			// ErrInvariantViolation lands here: a broken ledger is a server
			// fault, not a client error.
			err = fmt.Errorf("v1.HandleAdjustReserved -> h.svc.AdjustReserved -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, snapshot)
}

// HandleGetMyAllocation godoc
// @Summary      Get the current user's node allocation
// @Tags         nodes
// @Produce      json
// @Success      200      {object}   domain.UserNode
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /nodes/allocation [get]
func (h *NodeHandler) HandleGetMyAllocation(ctx *gin.Context) {
	userID, ok := mustCurrentUserID(ctx)
	if !ok {
		return
	}

	allocation, err := h.svc.GetAllocation(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrAllocationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrAllocationNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetMyAllocation -> h.svc.GetAllocation -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, allocation)
}

// HandleGetAllocations godoc
// @Summary      List every user's node allocation
// @Tags         nodes
// @Produce      json
// @Success      200      {array}    domain.UserNode
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /nodes/allocations [get]
func (h *NodeHandler) HandleGetAllocations(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	allocations, err := h.svc.GetAllAllocations(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetAllocations -> h.svc.GetAllAllocations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, allocations)
}

// HandleSetAllocation godoc
// @Summary      Set a user's node allocation
// @Tags         nodes
// @Produce      json
// @Param        userID   path       int true "user ID"
// @Param        request  body       request.SetAllocationRequest true "request body"
// @Success      200      {object}   domain.UserNode
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /nodes/allocations/{userID} [put]
func (h *NodeHandler) HandleSetAllocation(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	userID, err := parseUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	req := request.SetAllocationRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	allocation, err := h.svc.SetAllocation(ctx.Request.Context(), userID, req.Nodes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCapacityExceeded):
			response.RenderErr(ctx, response.ErrUnprocessableEntity(service.ErrCapacityExceeded))
		case errors.Is(err, service.ErrInvalidAllocation):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidAllocation))
		case errors.Is(err, service.ErrPoolNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrPoolNotFound))
		default:
			// ErrInvariantViolation lands here: a broken ledger is a server
			// fault, not a client error.
			err = fmt.Errorf("v1.HandleSetAllocation -> h.svc.SetAllocation -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, allocation)
}

// HandleDeleteAllocation godoc
// @Summary      Remove a user's node allocation
// @Tags         nodes
// @Produce      json
// @Param        userID   path       int true "user ID"
// @Success      200      {object}   response.MessageResponse
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /nodes/allocations/{userID} [delete]
func (h *NodeHandler) HandleDeleteAllocation(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx, h.users); !ok {
		return
	}

	userID, err := parseUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := h.svc.DeleteAllocation(ctx.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrAllocationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrAllocationNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteAllocation -> h.svc.DeleteAllocation -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "allocation removed"})
}
