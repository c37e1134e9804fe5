package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

// Outcome of a submission. It is decided only by DecideOutcome.
type Outcome int

const (
	OutcomeSubmitted Outcome = iota + 1
	OutcomeLate
)

// Status is the stored status for the outcome.
func (o Outcome) Status() string {
	if o == OutcomeLate {
		return model.StatusLate
	}
	return model.StatusSubmitted
}

// DecideOutcome is late only when now is strictly after due.
func DecideOutcome(due, now time.Time) Outcome {
	if now.After(due) {
		return OutcomeLate
	}
	return OutcomeSubmitted
}

// EffectiveStatus reports overdue for a pending report past its due date,
// otherwise the stored status.
func EffectiveStatus(r *model.Report, now time.Time) string {
	if r.Status == model.StatusPending && now.After(r.DueDate) {
		return model.StatusOverdue
	}
	return r.Status
}

const dateLayout = "2006-01-02"

// ValidateFormData checks data against the template fields and returns a
// normalized copy: numbers become float64, dates become YYYY-MM-DD, text is
// trimmed. Keys that are not template fields are rejected.
func ValidateFormData(fields []model.FieldSpec, data map[string]interface{}) (map[string]interface{}, error) {
	verr := &pkgerrors.ValidationError{}
	out := make(map[string]interface{}, len(fields))

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.ID] = true

		raw, present := data[f.ID]
		if !present || isBlank(raw) {
			if f.Required {
				verr.Add(f.ID, "is required")
			}
			continue
		}

		switch f.Type {
		case model.FieldNumber:
			n, err := toNumber(raw)
			if err != nil {
				verr.Add(f.ID, "must be a number")
				continue
			}
			out[f.ID] = n
		case model.FieldDate:
			d, err := toDate(raw)
			if err != nil {
				verr.Add(f.ID, "must be a date (YYYY-MM-DD)")
				continue
			}
			out[f.ID] = d
		case model.FieldSelect:
			s, ok := raw.(string)
			if !ok || !contains(f.Options, s) {
				verr.Add(f.ID, fmt.Sprintf("must be one of: %s", strings.Join(f.Options, ", ")))
				continue
			}
			out[f.ID] = s
		default:
			s, ok := raw.(string)
			if !ok {
				verr.Add(f.ID, "must be text")
				continue
			}
			out[f.ID] = strings.TrimSpace(s)
		}
	}

	for k := range data {
		if !known[k] {
			verr.Add(k, "is not a field of this template")
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toNumber(v interface{}) (float64, error) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", ""), 64)
		if err != nil {
			return 0, err
		}
		n = f
	default:
		return 0, fmt.Errorf("unsupported number type %T", v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return n, nil
}

func toDate(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unsupported date type %T", v)
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.Format(dateLayout), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", err
	}
	return t.Format(dateLayout), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// percent is round(100*count/total), and 0 when total is 0.
func percent(count, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(count) / float64(total)))
}
