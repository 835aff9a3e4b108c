package response

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	StatusCode int    `json:"-"`
	Msg        string `json:"error"`
}

func (e *Err) Error() string {
	return e.Msg
}

func NewErr(statusCode int, msg string) *Err {
	return &Err{
		StatusCode: statusCode,
		Msg:        msg,
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, err.Error())
}

func ErrUnauthorized(err error) *Err {
	return NewErr(http.StatusUnauthorized, err.Error())
}

func ErrWrongCredentials(_ error) *Err {
	return NewErr(http.StatusUnauthorized, "wrong credentials")
}

func ErrForbidden(err error) *Err {
	return NewErr(http.StatusForbidden, err.Error())
}

func ErrNotFound(err error) *Err {
	return NewErr(http.StatusNotFound, err.Error())
}

func ErrConflict(err error) *Err {
	return NewErr(http.StatusConflict, err.Error())
}

func ErrUnprocessableEntity(err error) *Err {
	return NewErr(http.StatusUnprocessableEntity, err.Error())
}

func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return NewErr(http.StatusInternalServerError, "internal server error")
}

func RenderErr(ctx *gin.Context, err *Err) {
	zap.L().Info("request failed",
		zap.String("request_id", requestid.Get(ctx)),
		zap.String("path", ctx.FullPath()),
		zap.Int("status", err.StatusCode),
		zap.String("error", err.Msg))

	ctx.AbortWithStatusJSON(err.StatusCode, err)
}
