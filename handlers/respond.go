package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"absensi-server-go/apperrors"
)

const genericFailure = "Terjadi kesalahan pada server. Silakan coba lagi."

// respond writes the JSON error response for err. Unclassified errors are
// logged in full and answered with a generic message.
func (h *APIHandler) respond(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindUnauthenticated:
		status = http.StatusUnauthorized
	case apperrors.KindAuthorization:
		status = http.StatusForbidden
	case apperrors.KindImport:
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error("unhandled error",
			"method", c.Request.Method, "path", c.Request.URL.Path,
			"user", usernameOf(c), "request_id", c.GetString(requestIDKey), "err", err)
		c.AbortWithStatusJSON(status, gin.H{"error": genericFailure})
		return
	}

	var e *apperrors.Error
	errors.As(err, &e)
	msg := e.Msg
	if kind == apperrors.KindImport {
		msg = e.Error()
	}
	body := gin.H{"error": msg}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// bindError converts a gin binding failure into a ValidationError.
func bindError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperrors.Validation("Input tidak valid")
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return apperrors.ValidationFields("Validasi gagal", fields)
}
