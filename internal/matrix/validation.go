package matrix

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a hospital, item or cell does not exist
	ErrNotFound = errors.New("not found")
	// ErrBusy is returned when a form is submitted while a previous submit is still running
	ErrBusy = errors.New("submit already in progress")
	// ErrDuplicateID is returned when an add reuses an id already in the registry
	ErrDuplicateID = errors.New("id already exists")
)

// FieldError annotates a single invalid form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors blocks a save until every listed field is corrected
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateHospital checks the hospital form
func ValidateHospital(h Hospital) error {
	var errs ValidationErrors
	if blank(h.Name) {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	return errs.orNil()
}

// ValidateItem checks the capacity/service form
func ValidateItem(item Item) error {
	var errs ValidationErrors
	if blank(item.Name) {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if !item.Category.Valid() {
		errs = append(errs, FieldError{Field: "category", Message: "category must be capacity or service"})
	}
	return errs.orNil()
}

// ValidatePVA checks the pre-notification form
func ValidatePVA(p PVA) error {
	var errs ValidationErrors
	if blank(p.PatientInfo.Name) {
		errs = append(errs, FieldError{Field: "patient_info.name", Message: "patient name is required"})
	}
	if blank(p.PatientInfo.Symptoms) {
		errs = append(errs, FieldError{Field: "patient_info.symptoms", Message: "symptoms are required"})
	}
	if !p.TriageCategory.Valid() {
		errs = append(errs, FieldError{Field: "triage_category", Message: "triage category must be 1, 2 or 3"})
	}
	return errs.orNil()
}

// ValidateCellUpdate checks the status dialog
func ValidateCellUpdate(u CellUpdate) error {
	var errs ValidationErrors
	if !u.Status.Settable() {
		errs = append(errs, FieldError{Field: "status", Message: "status must be free, limited, overloaded, incapacitated or future_overload"})
	}
	for _, w := range u.FutureOverloads {
		if !w.End.After(w.Start) {
			errs = append(errs, FieldError{Field: "future_overloads", Message: "end must be after start"})
			break
		}
	}
	return errs.orNil()
}

// ValidateSystemConfig checks the system settings form
func ValidateSystemConfig(c SystemConfig) error {
	var errs ValidationErrors
	if c.MaxPVAPerDay < 0 {
		errs = append(errs, FieldError{Field: "max_pva_per_day", Message: "must not be negative"})
	}
	return errs.orNil()
}
