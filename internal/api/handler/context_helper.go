package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blackrosevn/Dev02-Reporting/internal/service"
	"github.com/blackrosevn/Dev02-Reporting/pkg/response"
)

// Context keys set by middleware.JWTAuth.
const (
	CtxUserID      = "user_id"
	CtxRole        = "role"
	CtxCompanyCode = "company_code"
	CtxTokenJTI    = "token_jti"
	CtxTokenExp    = "token_exp"
)

// MustGetUserID extracts user_id. On failure it writes 401 and the caller
// should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetCaller builds the service caller from the token claims.
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Caller{}, false
	}
	role := c.GetString(CtxRole)
	if role == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return service.Caller{}, false
	}
	return service.Caller{
		UserID:      userID,
		Role:        role,
		CompanyCode: c.GetString(CtxCompanyCode),
	}, true
}

// tokenIdentity returns the access token's jti and expiry, if present.
func tokenIdentity(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenJTI)
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}
