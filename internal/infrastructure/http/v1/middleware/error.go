package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ptv/internal/core/apperror"
	appctx "ptv/internal/core/context"
	"ptv/internal/infrastructure/http/v1/dto"
	"ptv/pkg/logger"
)

const (
	problemContentType = "application/problem+json"
	problemTypeBase    = "https://tools.ietf.org/html/rfc7231#section-6.5.1"
	genericServerError = "Server error"
)

// ErrorHandler turns the last gin error into the API error body.
// Unclassified errors expose their flattened text only on dev and test hosts.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			logger.Error(ctx, "unhandled error", "error", err)
			message := genericServerError
			if appctx.GetTrace(ctx).Diagnostic() {
				message = apperror.Flatten(err)
			}
			c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: message})
			return
		}

		if appErr.Err != nil {
			logger.Error(ctx, "request error", "code", appErr.Code, "cause", appErr.Err)
		}

		switch {
		case apperror.IsDuplicity(err):
			body := dto.ProblemDetails{
				Type:     problemTypeBase,
				Title:    appErr.Message,
				Status:   http.StatusBadRequest,
				Detail:   apperror.DuplicityDetail,
				Instance: c.Request.URL.Path,
			}
			c.Render(http.StatusBadRequest, problemRender{body: body})
		case apperror.IsOperationForbidden(err):
			c.JSON(http.StatusForbidden, dto.MessageResponse{Message: appErr.Message})
		case apperror.IsTooManyConnections(err):
			c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: appErr.Message})
		default:
			status := apperror.GetHTTPStatus(appErr)
			if status == 0 {
				status = http.StatusInternalServerError
			}
			c.JSON(status, dto.ErrorResponse{
				Message: appErr.Message,
				Code:    appErr.Code,
				Details: appErr.Details,
			})
		}
	}
}
