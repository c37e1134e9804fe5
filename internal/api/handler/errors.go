package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
	"github.com/blackrosevn/Dev02-Reporting/pkg/response"
)

// bindFailed answers a request that failed gin binding. Validator errors
// are reported per field.
func bindFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = "failed " + fe.Tag()
		}
		response.ValidationFailed(c, 10001, fields)
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
		return
	}
	response.BadRequest(c, 10001, "invalid request body")
}

// respondError maps a service error by kind. code is used for kinds the
// module handler did not match explicitly.
func respondError(c *gin.Context, err error, code int) {
	var verr *pkgerrors.ValidationError
	if errors.As(err, &verr) {
		response.ValidationFailed(c, 10001, verr.Fields)
		return
	}

	switch pkgerrors.KindOf(err) {
	case pkgerrors.KindValidation:
		response.BadRequest(c, code, err.Error())
	case pkgerrors.KindNotFound:
		response.NotFound(c, code, err.Error())
	case pkgerrors.KindForbidden:
		response.Forbidden(c, 10003, err.Error())
	case pkgerrors.KindUnauthorized:
		response.Unauthorized(c, 10002, err.Error())
	case pkgerrors.KindConflict:
		response.Conflict(c, code, err.Error())
	case pkgerrors.KindExternal:
		response.BadGateway(c, code, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// uploadFailed answers a multipart request whose "file" part could not be
// read.
func uploadFailed(c *gin.Context, err error, code int) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "file too large")
		return
	}
	response.BadRequest(c, code, "multipart field \"file\" is required")
}
