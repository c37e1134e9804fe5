package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

func TestCompanyService_CreateAndUpdate(t *testing.T) {
	repo, _ := newMockRepos()
	svc := NewCompanyService(repo, zap.NewNop())
	ctx := context.Background()

	m10, err := svc.Create(ctx, &dto.CreateCompanyRequest{Name: "Tổng Công ty CP May 10", Code: "M10"})
	require.NoError(t, err)
	assert.True(t, m10.IsActive)

	_, err = svc.Create(ctx, &dto.CreateCompanyRequest{Name: "Other", Code: "M10"})
	assert.True(t, errors.Is(err, ErrCompanyCodeTaken), "err = %v", err)

	_, err = svc.Create(ctx, &dto.CreateCompanyRequest{Name: "Tổng Công ty CP May 10", Code: "M11"})
	assert.True(t, errors.Is(err, ErrCompanyNameTaken), "err = %v", err)

	vgt, err := svc.Create(ctx, &dto.CreateCompanyRequest{Name: "Vinatex Garment", Code: "VGT"})
	require.NoError(t, err)

	taken := m10.Name
	_, err = svc.Update(ctx, vgt.CompanyID, &dto.UpdateCompanyRequest{Name: &taken})
	assert.True(t, errors.Is(err, ErrCompanyNameTaken), "err = %v", err)

	off := false
	updated, err := svc.Update(ctx, vgt.CompanyID, &dto.UpdateCompanyRequest{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "VGT", updated.Code)

	active, err := svc.List(ctx, &dto.CompanyListRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.List(ctx, &dto.CompanyListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCompanyService_GetByID_NotFound(t *testing.T) {
	repo, _ := newMockRepos()
	svc := NewCompanyService(repo, zap.NewNop())

	_, err := svc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCompanyService_DuplicateKeyIsConflict(t *testing.T) {
	repo, m := newMockRepos()
	svc := NewCompanyService(repo, zap.NewNop())
	ctx := context.Background()
	dup := fmt.Errorf("insert companies: %w", gorm.ErrDuplicatedKey)

	m.companies.createErr = dup
	_, err := svc.Create(ctx, &dto.CreateCompanyRequest{Name: "Tổng Công ty CP May 10", Code: "M10"})
	assert.ErrorIs(t, err, ErrCompanyNameTaken)
	assert.Equal(t, pkgerrors.KindConflict, pkgerrors.KindOf(err))
	assert.Empty(t, m.companies.companies)

	m.companies.createErr = nil
	vgt, err := svc.Create(ctx, &dto.CreateCompanyRequest{Name: "Vinatex Garment", Code: "VGT"})
	require.NoError(t, err)
	m.companies.updateErr = dup
	name := "Renamed"
	_, err = svc.Update(ctx, vgt.CompanyID, &dto.UpdateCompanyRequest{Name: &name})
	assert.ErrorIs(t, err, ErrCompanyNameTaken)
}
