// Package seed loads companies, users and report templates from YAML.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	"github.com/blackrosevn/Dev02-Reporting/internal/service"
)

//go:embed default.yaml
var defaultSeed []byte

// File is the seed document.
type File struct {
	DefaultPassword   string     `yaml:"default_password"`
	CreateMemberUsers bool       `yaml:"create_member_users"`
	Companies         []Company  `yaml:"companies"`
	Users             []User     `yaml:"users"`
	Templates         []Template `yaml:"templates"`
}

type Company struct {
	Name  string  `yaml:"name"`
	Code  string  `yaml:"code"`
	Email *string `yaml:"email"`
}

type User struct {
	Username    string `yaml:"username"`
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Role        string `yaml:"role"`
	CompanyCode string `yaml:"company_code"`
	Department  string `yaml:"department"`
	Password    string `yaml:"password"` // falls back to default_password
}

type Template struct {
	Name               string   `yaml:"name"`
	Description        string   `yaml:"description"`
	Department         string   `yaml:"department"`
	PeriodType         string   `yaml:"period_type"`
	DaysBeforeReminder int      `yaml:"days_before_reminder"`
	SharePointPath     string   `yaml:"sharepoint_path"`
	RequiredUnits      []string `yaml:"required_units"`
	AllCompanies       bool     `yaml:"all_companies"` // every seeded company is required
	Fields             []Field  `yaml:"fields"`
}

type Field struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Type        string   `yaml:"type"`
	Required    bool     `yaml:"required"`
	Options     []string `yaml:"options"`
	Sheet       string   `yaml:"sheet"`
	ExcelColumn string   `yaml:"excel_column"`
}

// Result counts what Apply created and skipped.
type Result struct {
	Companies int
	Users     int
	Templates int
	Skipped   int
}

// Load parses path, or the embedded default when path is empty.
func Load(path string) (*File, error) {
	data := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		data = b
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the document before anything is written.
func (f *File) Validate() error {
	codes := make(map[string]bool, len(f.Companies))
	for i, c := range f.Companies {
		if c.Name == "" || c.Code == "" {
			return fmt.Errorf("companies[%d]: name and code are required", i)
		}
		if codes[c.Code] {
			return fmt.Errorf("companies[%d]: duplicate code %s", i, c.Code)
		}
		codes[c.Code] = true
	}
	for i, u := range f.Users {
		if u.Username == "" || !model.ValidRole(u.Role) {
			return fmt.Errorf("users[%d]: username and a valid role are required", i)
		}
		if u.Password == "" && len(f.DefaultPassword) < 8 {
			return fmt.Errorf("users[%d]: no password and default_password is shorter than 8 characters", i)
		}
	}
	for i, t := range f.Templates {
		if _, err := service.ValidateFieldSpecs(t.fieldSpecs()); err != nil {
			return fmt.Errorf("templates[%d] %q: %w", i, t.Name, err)
		}
		switch t.PeriodType {
		case model.PeriodAnnual, model.PeriodQuarterly, model.PeriodMonthly:
		default:
			return fmt.Errorf("templates[%d] %q: unknown period_type %q", i, t.Name, t.PeriodType)
		}
	}
	return nil
}

func (t Template) fieldSpecs() []model.FieldSpec {
	out := make([]model.FieldSpec, 0, len(t.Fields))
	for _, f := range t.Fields {
		out = append(out, model.FieldSpec{
			ID:          f.ID,
			Label:       f.Label,
			Type:        f.Type,
			Required:    f.Required,
			Options:     f.Options,
			Sheet:       f.Sheet,
			ExcelColumn: f.ExcelColumn,
		})
	}
	return out
}

// Apply writes the document. Existing company codes, usernames and
// template names are skipped, so it can be run repeatedly.
func Apply(ctx context.Context, repo *repository.Repository, f *File, logger *zap.Logger) (*Result, error) {
	res := &Result{}
	users := service.NewUserService(repo, logger)
	companies := service.NewCompanyService(repo, logger)
	templates := service.NewTemplateService(repo, logger)

	for _, c := range f.Companies {
		_, err := repo.Company.GetByCode(ctx, c.Code)
		if found, err := present(err); err != nil {
			return res, err
		} else if found {
			res.Skipped++
			continue
		}
		if _, err := companies.Create(ctx, &dto.CreateCompanyRequest{Name: c.Name, Code: c.Code, Email: c.Email}); err != nil {
			return res, fmt.Errorf("company %s: %w", c.Code, err)
		}
		res.Companies++
	}

	seedUsers := f.Users
	if f.CreateMemberUsers {
		for _, c := range f.Companies {
			login := strings.ToLower(c.Code)
			seedUsers = append(seedUsers, User{
				Username:    login,
				Name:        "Người dùng " + c.Name,
				Email:       login + "@vinatex.com.vn",
				Role:        model.RoleMemberUnit,
				CompanyCode: c.Code,
			})
		}
	}

	var authorID string
	for _, u := range seedUsers {
		if existing, err := repo.User.GetByUsername(ctx, u.Username); err == nil {
			if authorID == "" && existing.Role == model.RoleAdmin {
				authorID = existing.UserID
			}
			res.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return res, err
		}

		password := u.Password
		if password == "" {
			password = f.DefaultPassword
		}
		req := &dto.CreateUserRequest{
			Username: u.Username,
			Password: password,
			Name:     u.Name,
			Email:    u.Email,
			Role:     u.Role,
		}
		if u.CompanyCode != "" {
			req.CompanyCode = &u.CompanyCode
		}
		if u.Department != "" {
			req.Department = &u.Department
		}
		created, err := users.Create(ctx, req)
		if err != nil {
			return res, fmt.Errorf("user %s: %w", u.Username, err)
		}
		if authorID == "" && created.Role == model.RoleAdmin {
			authorID = created.ID
		}
		res.Users++
	}

	if len(f.Templates) > 0 && authorID == "" {
		return res, errors.New("templates need at least one admin user in the seed")
	}
	author := service.Caller{UserID: authorID, Role: model.RoleAdmin}

	for _, t := range f.Templates {
		_, err := repo.Template.GetByName(ctx, t.Name)
		if found, err := present(err); err != nil {
			return res, err
		} else if found {
			res.Skipped++
			continue
		}

		units := t.RequiredUnits
		if t.AllCompanies {
			for _, c := range f.Companies {
				units = append(units, c.Code)
			}
		}
		req := &dto.CreateTemplateRequest{
			Name:          t.Name,
			Fields:        t.fieldSpecs(),
			Department:    t.Department,
			RequiredUnits: units,
			PeriodType:    t.PeriodType,
		}
		if t.Description != "" {
			req.Description = &t.Description
		}
		if t.DaysBeforeReminder > 0 {
			req.DaysBeforeReminder = &t.DaysBeforeReminder
		}
		if t.SharePointPath != "" {
			req.SharePointPath = &t.SharePointPath
		}
		if _, err := templates.Create(ctx, author, req); err != nil {
			return res, fmt.Errorf("template %q: %w", t.Name, err)
		}
		res.Templates++
	}

	logger.Info("seed applied",
		zap.Int("companies", res.Companies),
		zap.Int("users", res.Users),
		zap.Int("templates", res.Templates),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// present maps a lookup error to found, treating not-found as absent.
func present(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, err
	}
}
