package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaivio/nodes-api/internal/api/handler/v1/response"
)

type HealthcheckHandler struct {
	db *gorm.DB
}

func NewHealthcheckHandler(db *gorm.DB) *HealthcheckHandler {
	return &HealthcheckHandler{db: db}
}

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      500 {object} response.Err
// @Router       / [get]
func (h *HealthcheckHandler) HandleHealthcheck(ctx *gin.Context) {
	if err := h.db.WithContext(ctx.Request.Context()).Exec("SELECT 1").Error; err != nil {
		err = fmt.Errorf("v1.HandleHealthcheck -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
