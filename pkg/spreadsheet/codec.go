// Package spreadsheet converts report form data to and from xlsx workbooks.
//
// Layout: every sheet holds field labels in row 1 and values in row 2. A
// field without an explicit column takes the next column not claimed by
// another field of the same sheet, so Encode and Decode agree on positions.
package spreadsheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

const (
	defaultSheet = "Sheet1"
	headerRow    = 1
	valueRow     = 2

	// MIMEType of xlsx output.
	MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Field is the codec's view of a template field.
type Field struct {
	ID     string
	Label  string
	Type   string // number values are decoded to float64
	Sheet  string
	Column string // e.g. "B"; empty means positional
}

type placedField struct {
	Field
	col int
}

type sheetLayout struct {
	name   string
	fields []placedField
}

// layout groups fields by sheet in first-seen order and resolves columns.
func layout(fields []Field) ([]sheetLayout, error) {
	var sheets []sheetLayout
	index := make(map[string]int)

	for _, f := range fields {
		name := f.Sheet
		if name == "" {
			name = defaultSheet
		}
		i, ok := index[name]
		if !ok {
			i = len(sheets)
			index[name] = i
			sheets = append(sheets, sheetLayout{name: name})
		}
		sheets[i].fields = append(sheets[i].fields, placedField{Field: f})
	}

	for si := range sheets {
		used := make(map[int]string)
		for fi := range sheets[si].fields {
			pf := &sheets[si].fields[fi]
			if pf.Column == "" {
				continue
			}
			col, err := excelize.ColumnNameToNumber(strings.ToUpper(strings.TrimSpace(pf.Column)))
			if err != nil {
				return nil, fmt.Errorf("field %s: invalid column %q: %w", pf.ID, pf.Column, err)
			}
			if other, taken := used[col]; taken {
				return nil, fmt.Errorf("fields %s and %s share column %s on sheet %s", other, pf.ID, pf.Column, sheets[si].name)
			}
			used[col] = pf.ID
			pf.col = col
		}
		next := 1
		for fi := range sheets[si].fields {
			pf := &sheets[si].fields[fi]
			if pf.col != 0 {
				continue
			}
			for used[next] != "" {
				next++
			}
			pf.col = next
			used[next] = pf.ID
		}
	}
	return sheets, nil
}

// Encode renders data as a workbook.
func Encode(data map[string]any, fields []Field) ([]byte, error) {
	sheets, err := layout(fields)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, sh := range sheets {
		if i == 0 {
			if sh.name != defaultSheet {
				if err := f.SetSheetName(defaultSheet, sh.name); err != nil {
					return nil, err
				}
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sh.name, err)
		}

		for _, pf := range sh.fields {
			header, _ := excelize.CoordinatesToCellName(pf.col, headerRow)
			value, _ := excelize.CoordinatesToCellName(pf.col, valueRow)

			label := pf.Label
			if label == "" {
				label = pf.ID
			}
			if err := f.SetCellValue(sh.name, header, label); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(sh.name, header, header, bold); err != nil {
				return nil, err
			}
			if v, ok := data[pf.ID]; ok && v != nil {
				if err := f.SetCellValue(sh.name, value, v); err != nil {
					return nil, fmt.Errorf("field %s: %w", pf.ID, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads row 2 of each field's sheet and column. Blank cells and
// missing sheets leave the field unset; number fields that do not parse
// yield a ValidationError. Date cells hold serial numbers and come back as
// YYYY-MM-DD; dates typed as text are returned as written.
func Decode(content []byte, fields []Field) (map[string]any, error) {
	sheets, err := layout(fields)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, pkgerrors.NewValidation("file", "not a readable xlsx workbook")
	}
	defer f.Close()

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	out := make(map[string]any)
	verr := &pkgerrors.ValidationError{}

	for _, sh := range sheets {
		if idx, err := f.GetSheetIndex(sh.name); err != nil || idx < 0 {
			continue
		}
		for _, pf := range sh.fields {
			cell, _ := excelize.CoordinatesToCellName(pf.col, valueRow)
			raw, err := f.GetCellValue(sh.name, cell, excelize.Options{RawCellValue: true})
			if err != nil {
				return nil, fmt.Errorf("read %s!%s: %w", sh.name, cell, err)
			}
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			if pf.Type == "number" {
				n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
				if err != nil {
					verr.Add(pf.ID, fmt.Sprintf("%s!%s is not a number", sh.name, cell))
					continue
				}
				out[pf.ID] = n
				continue
			}
			if pf.Type == "date" {
				if serial, err := strconv.ParseFloat(raw, 64); err == nil {
					t, err := excelize.ExcelDateToTime(serial, date1904)
					if err != nil {
						verr.Add(pf.ID, fmt.Sprintf("%s!%s is not a date", sh.name, cell))
						continue
					}
					out[pf.ID] = t.Format(time.DateOnly)
					continue
				}
			}
			out[pf.ID] = raw
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}
