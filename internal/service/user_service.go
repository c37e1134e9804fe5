package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

// ── User errors ──

var (
	ErrUserNotFound  = pkgerrors.New(pkgerrors.ErrNotFound, "user not found")
	ErrUsernameTaken = pkgerrors.New(pkgerrors.ErrConflict, "username already exists")
)

// ImportUserRow one parsed row of a user import workbook.
type ImportUserRow struct {
	Row         int
	Username    string
	Name        string
	Email       string
	Role        string
	CompanyCode string
	Department  string
	Password    string
}

// UserService user administration. Users are deactivated, never deleted.
type UserService interface {
	List(ctx context.Context, req *dto.UserListRequest) (*dto.PagedResult[dto.UserResponse], error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) (*dto.PagedResult[dto.UserResponse], error) {
	filter := repository.UserFilter{
		Role:        req.Role,
		CompanyCode: req.CompanyCode,
		Active:      req.Active,
	}
	users, total, err := s.repo.User.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, err
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, dto.NewUserResponse(&users[i]))
	}
	return &dto.PagedResult[dto.UserResponse]{
		List:     list,
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check username failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:    req.Username,
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		CompanyCode: req.CompanyCode,
		Department:  req.Department,
		IsActive:    true,
	}
	if err := s.applyAffiliation(ctx, user); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}
	user.PasswordHash = string(hash)

	if err := s.repo.User.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, ErrUsernameTaken
		}
		s.logger.Error("create user failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.CompanyCode != nil {
		user.CompanyCode = req.CompanyCode
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.applyAffiliation(ctx, user); err != nil {
		return nil, err
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("hash password failed", zap.Error(err))
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// applyAffiliation enforces the role's company or department link and
// refreshes the company name from the company code.
func (s *userService) applyAffiliation(ctx context.Context, user *model.User) error {
	switch user.Role {
	case model.RoleMemberUnit:
		code := user.CompanyCodeValue()
		if code == "" {
			return pkgerrors.NewValidation("company_code", "is required for member_unit users")
		}
		company, err := s.repo.Company.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NewValidation("company_code", fmt.Sprintf("unknown company %q", code))
			}
			s.logger.Error("load company failed", zap.String("code", code), zap.Error(err))
			return err
		}
		user.Company = company.Name
	case model.RoleDepartment:
		if user.Department == nil || strings.TrimSpace(*user.Department) == "" {
			return pkgerrors.NewValidation("department", "is required for department users")
		}
		user.CompanyCode = nil
		user.Company = ""
	default:
		user.CompanyCode = nil
		user.Company = ""
	}
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = pkgerrors.NewValidation("file", "workbook has no data rows (row 1 is the header)")
	ErrImportTooManyRows = pkgerrors.NewValidation("file", fmt.Sprintf("more than %d data rows", maxImportRows))
	ErrImportBadHeader   = pkgerrors.NewValidation("file", "header must contain username, name, email, role and password columns")
)

// ParseImportFile reads the first sheet of a user import workbook. Columns
// are located by header so their order is free.
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, pkgerrors.NewValidation("file", "not a readable .xlsx workbook")
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	col := parseHeaderIndex(excelRows[0])
	for _, key := range []string{"username", "name", "email", "role", "password"} {
		if col[key] < 0 {
			return nil, ErrImportBadHeader
		}
	}

	cell := func(row []string, key string) string {
		idx := col[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		r := excelRows[i]
		item := ImportUserRow{
			Row:         i + 1,
			Username:    cell(r, "username"),
			Name:        cell(r, "name"),
			Email:       cell(r, "email"),
			Role:        strings.ToLower(cell(r, "role")),
			CompanyCode: strings.ToUpper(cell(r, "company_code")),
			Department:  cell(r, "department"),
			Password:    cell(r, "password"),
		}
		if item.Username == "" && item.Name == "" && item.Email == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"username":     -1,
		"name":         -1,
		"email":        -1,
		"role":         -1,
		"company_code": -1,
		"department":   -1,
		"password":     -1,
	}
	for i, h := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if key == "company" || key == "code" {
			key = "company_code"
		}
		if _, ok := idx[key]; ok {
			idx[key] = i
		}
	}
	return idx
}

// ────────────────────── ImportUsers ──────────────────────

// ImportUsers validates every row first, then inserts the valid ones in a
// single transaction.
func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}
	reject := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	var valid []*model.User
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.Username == "" || row.Name == "" || row.Email == "" || row.Password == "" {
			reject(row.Row, "username, name, email and password are required")
			continue
		}
		if !model.ValidRole(row.Role) {
			reject(row.Row, fmt.Sprintf("unknown role %q", row.Role))
			continue
		}
		if len(row.Password) < 8 {
			reject(row.Row, "password must be at least 8 characters")
			continue
		}
		if seen[row.Username] {
			reject(row.Row, fmt.Sprintf("duplicate username in file: %s", row.Username))
			continue
		}
		if _, err := s.repo.User.GetByUsername(ctx, row.Username); err == nil {
			reject(row.Row, fmt.Sprintf("username already exists: %s", row.Username))
			continue
		}

		user := &model.User{
			Username: row.Username,
			Name:     row.Name,
			Email:    row.Email,
			Role:     row.Role,
			IsActive: true,
		}
		if row.CompanyCode != "" {
			code := row.CompanyCode
			user.CompanyCode = &code
		}
		if row.Department != "" {
			dept := row.Department
			user.Department = &dept
		}
		if err := s.applyAffiliation(ctx, user); err != nil {
			reject(row.Row, err.Error())
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(row.Password), bcrypt.DefaultCost)
		if err != nil {
			reject(row.Row, "could not hash password")
			continue
		}
		user.PasswordHash = string(hash)

		seen[row.Username] = true
		valid = append(valid, user)
	}

	if len(valid) == 0 {
		return resp, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin transaction failed", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)
	for _, user := range valid {
		if err := txRepo.User.Create(ctx, user); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			if isDuplicate(err) {
				return nil, fmt.Errorf("import %s: %w", user.Username, ErrUsernameTaken)
			}
			s.logger.Error("import user failed, rolled back", zap.String("username", user.Username), zap.Error(err))
			return nil, fmt.Errorf("import %s: %w", user.Username, err)
		}
		resp.Success++
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit failed", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("users imported", zap.Int("success", resp.Success), zap.Int("failed", resp.Failed))
	return resp, nil
}

func (s *userService) load(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}
