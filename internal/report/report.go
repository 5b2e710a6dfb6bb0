// Package report renders a nutrition lookup result as a nutrition facts table.
package report

import (
	"fmt"

	"github.com/Brownie44l1/foodlens/internal/nutrition"
)

const NotFoundMessage = "No nutritional information found."

// Renderer turns a lookup result into report text.
type Renderer func(result *nutrition.Result) (string, error)

type Row struct {
	Label string
	Field string
}

// Rows are the nutrients shown in the table, in display order.
var Rows = []Row{
	{"Total Fat (g)", "fat_total_g"},
	{"Saturated Fat (g)", "fat_saturated_g"},
	{"Sodium (mg)", "sodium_mg"},
	{"Potassium (mg)", "potassium_mg"},
	{"Cholesterol (mg)", "cholesterol_mg"},
	{"Total Carbohydrates (g)", "carbohydrates_total_g"},
	{"Fiber (g)", "fiber_g"},
	{"Sugar (g)", "sugar_g"},
}

// MissingFieldError means the first record lacks a field the table needs.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("nutrition record is missing field %q", e.Field)
}

type factRow struct {
	Label string
	Value string
}

type facts struct {
	Name string
	Rows []factRow
}

// ErrorMessage is the report text for an upstream API failure.
func ErrorMessage(f *nutrition.Failure) string {
	return fmt.Sprintf("Error: %d - %s", f.StatusCode, f.Body)
}

// extract returns either a fixed message (failure or no records) or the facts
// of the first record.
func extract(result *nutrition.Result) (string, *facts, error) {
	if result == nil {
		return "", nil, fmt.Errorf("nil nutrition result")
	}
	if result.Failure != nil {
		return ErrorMessage(result.Failure), nil, nil
	}
	if len(result.Records) == 0 {
		return NotFoundMessage, nil, nil
	}

	rec := result.Records[0]
	name, ok := rec["name"]
	if !ok {
		return "", nil, &MissingFieldError{Field: "name"}
	}

	f := &facts{Name: fmt.Sprint(name), Rows: make([]factRow, 0, len(Rows))}
	for _, row := range Rows {
		v, ok := rec[row.Field]
		if !ok {
			return "", nil, &MissingFieldError{Field: row.Field}
		}
		f.Rows = append(f.Rows, factRow{Label: row.Label, Value: fmt.Sprint(v)})
	}
	return "", f, nil
}
