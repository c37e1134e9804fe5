package dto

// ── Companies ──

// CompanyListRequest GET /companies
type CompanyListRequest struct {
	ActiveOnly bool `form:"active_only"`
}

// CreateCompanyRequest POST /companies
type CreateCompanyRequest struct {
	Name    string  `json:"name"    binding:"required,max=255"`
	Code    string  `json:"code"    binding:"required,company_code"`
	Email   *string `json:"email"   binding:"omitempty,email"`
	Phone   *string `json:"phone"   binding:"omitempty,max=50"`
	Address *string `json:"address" binding:"omitempty,max=500"`
}

// UpdateCompanyRequest PUT /companies/:id. The code is immutable because
// reports and users refer to it.
type UpdateCompanyRequest struct {
	Name     *string `json:"name"      binding:"omitempty,max=255"`
	Email    *string `json:"email"     binding:"omitempty,email"`
	Phone    *string `json:"phone"     binding:"omitempty,max=50"`
	Address  *string `json:"address"   binding:"omitempty,max=500"`
	IsActive *bool   `json:"is_active"`
}
