package handler

import (
	"net/http"

	"elibrary/internal/apperror"
	"elibrary/internal/microservices/http-api/dto"

	"github.com/gin-gonic/gin"
)

// statusFor maps an error kind to its HTTP status code.
func statusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict, apperror.KindConstraintViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope. Storage causes never reach the
// caller; the service layer has already logged them.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), dto.Fail(apperror.PublicMessage(err)))
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, dto.OK(message, data))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.Fail(message))
}
