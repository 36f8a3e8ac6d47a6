package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "depothub/pkg/errors"
	"depothub/pkg/response"
)

// writeError 将业务错误按分类映射为 HTTP 响应。
// Kind 缺失的错误一律视为内部错误，不向客户端泄露细节。
func writeError(c *gin.Context, err error) {
	switch pkgerrors.KindOf(err) {
	case pkgerrors.KindNotFound:
		response.NotFound(c, 20404, err.Error())
	case pkgerrors.KindValidation:
		response.BadRequest(c, 20400, err.Error())
	case pkgerrors.KindPermissionDenied:
		response.Forbidden(c, 20403, err.Error())
	case pkgerrors.KindInvalidState:
		response.Error(c, http.StatusConflict, 20409, err.Error())
	case pkgerrors.KindInsufficientStock:
		response.Error(c, http.StatusConflict, 20410, err.Error())
	case pkgerrors.KindConflict:
		response.Error(c, http.StatusConflict, 20411, err.Error())
	default:
		response.InternalError(c)
	}
}
