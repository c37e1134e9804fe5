package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	companyCodeRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{0,19}$`)
	periodLabelRe = regexp.MustCompile(`^\d{4}(-(Q[1-4]|H[12]|0[1-9]|1[0-2]))?$`)
)

// RegisterValidators adds the custom binding tags used by the DTOs.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("company_code", func(fl validator.FieldLevel) bool {
		return companyCodeRe.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("period_label", func(fl validator.FieldLevel) bool {
		return periodLabelRe.MatchString(fl.Field().String())
	})
}
