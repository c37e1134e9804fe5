package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

var (
	ErrAccessDenied      = pkgerrors.New(pkgerrors.ErrForbidden, "access denied")
	ErrCompanyUnresolved = pkgerrors.New(pkgerrors.ErrForbidden, "caller is not linked to a known company")
)

// Caller is the authenticated principal of a request.
type Caller struct {
	UserID      string
	Role        string
	CompanyCode string
}

func (c Caller) IsAdmin() bool      { return c.Role == model.RoleAdmin }
func (c Caller) IsDepartment() bool { return c.Role == model.RoleDepartment }
func (c Caller) IsMemberUnit() bool { return c.Role == model.RoleMemberUnit }

// ── Capabilities ──

// CanManageUsers admin only.
func CanManageUsers(role string) bool { return role == model.RoleAdmin }

// CanManageCompanies admin only.
func CanManageCompanies(role string) bool { return role == model.RoleAdmin }

// CanAuthor covers creating templates and periods.
func CanAuthor(role string) bool {
	return role == model.RoleAdmin || role == model.RoleDepartment
}

// CanOverrideStatus admin only.
func CanOverrideStatus(role string) bool { return role == model.RoleAdmin }

// ── Report scope ──

// ReportScope is the visibility filter for a caller. An empty CompanyID
// means every report is visible.
type ReportScope struct {
	CompanyID string
}

// Allows reports whether r is inside the scope.
func (s ReportScope) Allows(r *model.Report) bool {
	return s.CompanyID == "" || r.CompanyID == s.CompanyID
}

// accessPolicy resolves report visibility. Member units see only their
// own company's reports, resolved through the company code stored on the
// user row rather than the token claim.
type accessPolicy struct {
	repo *repository.Repository
}

func newAccessPolicy(repo *repository.Repository) *accessPolicy {
	return &accessPolicy{repo: repo}
}

// reportScope returns the caller's report visibility.
func (p *accessPolicy) reportScope(ctx context.Context, caller Caller) (ReportScope, error) {
	switch caller.Role {
	case model.RoleAdmin, model.RoleDepartment:
		return ReportScope{}, nil
	case model.RoleMemberUnit:
		code, err := p.memberCompanyCode(ctx, caller)
		if err != nil {
			return ReportScope{}, err
		}
		company, err := p.repo.Company.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ReportScope{}, ErrCompanyUnresolved
			}
			return ReportScope{}, err
		}
		return ReportScope{CompanyID: company.CompanyID}, nil
	default:
		return ReportScope{}, ErrAccessDenied
	}
}

// memberCompanyCode reads the company code from the stored user so a
// reassignment takes effect before the caller's token expires.
func (p *accessPolicy) memberCompanyCode(ctx context.Context, caller Caller) (string, error) {
	user, err := p.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAccessDenied
		}
		return "", err
	}
	if !user.IsActive || user.Role != model.RoleMemberUnit {
		return "", ErrAccessDenied
	}
	code := user.CompanyCodeValue()
	if code == "" {
		return "", ErrCompanyUnresolved
	}
	return code, nil
}

// checkReport fails with ErrAccessDenied when r is outside the caller's scope.
func (p *accessPolicy) checkReport(ctx context.Context, caller Caller, r *model.Report) error {
	scope, err := p.reportScope(ctx, caller)
	if err != nil {
		return err
	}
	if !scope.Allows(r) {
		return ErrAccessDenied
	}
	return nil
}
