package dto

import (
	"time"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
)

// ── Users ──

// UserListRequest GET /users
type UserListRequest struct {
	PaginationRequest
	Role        string `form:"role"         binding:"omitempty,oneof=admin department member_unit"`
	CompanyCode string `form:"company_code" binding:"omitempty,company_code"`
	Active      *bool  `form:"active"`
}

// CreateUserRequest POST /users
type CreateUserRequest struct {
	Username    string  `json:"username"     binding:"required,min=3,max=50,alphanum"`
	Password    string  `json:"password"     binding:"required,min=8,max=72"`
	Name        string  `json:"name"         binding:"required,max=100"`
	Email       string  `json:"email"        binding:"required,email"`
	Role        string  `json:"role"         binding:"required,oneof=admin department member_unit"`
	CompanyCode *string `json:"company_code" binding:"omitempty,company_code"`
	Department  *string `json:"department"   binding:"omitempty,max=100"`
}

// UpdateUserRequest PUT /users/:id; nil fields are left unchanged.
type UpdateUserRequest struct {
	Name        *string `json:"name"         binding:"omitempty,max=100"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	Role        *string `json:"role"         binding:"omitempty,oneof=admin department member_unit"`
	CompanyCode *string `json:"company_code" binding:"omitempty,company_code"`
	Department  *string `json:"department"   binding:"omitempty,max=100"`
	Password    *string `json:"password"     binding:"omitempty,min=8,max=72"`
	IsActive    *bool   `json:"is_active"`
}

// UserResponse user without credentials.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Company     string    `json:"company,omitempty"`
	CompanyCode *string   `json:"company_code,omitempty"`
	Department  *string   `json:"department,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUserResponse maps a model.
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.UserID,
		Username:    u.Username,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Company:     u.Company,
		CompanyCode: u.CompanyCode,
		Department:  u.Department,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// ImportUserError one rejected import row.
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportUserResponse POST /users/import
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
}
