package matrix

import "errors"

// FormState is the lifecycle state of an edit form
type FormState int

const (
	FormIdle FormState = iota
	FormEditing
	FormSubmitting
	FormError
)

func (s FormState) String() string {
	switch s {
	case FormIdle:
		return "idle"
	case FormEditing:
		return "editing"
	case FormSubmitting:
		return "submitting"
	case FormError:
		return "error"
	}
	return "unknown"
}

// Form drives one hospital, item, PVA or settings form.
// A submit either commits and resets to idle, or stops in the error state without committing.
// A Form is not safe for concurrent use; callers sharing one must serialize Edit and Submit.
// The HTTP service builds one per request under its own mutex, so ErrBusy only guards
// re-entrant submits from within commit.
type Form struct {
	state     FormState
	editingID int64
	errs      ValidationErrors
}

func NewForm() *Form {
	return &Form{state: FormIdle}
}

func (f *Form) State() FormState {
	return f.state
}

// EditingID is the id of the entry being edited, zero when adding
func (f *Form) EditingID() int64 {
	return f.editingID
}

// Errors returns the field annotations of the last failed submit
func (f *Form) Errors() ValidationErrors {
	return f.errs
}

// Edit selects an existing entry
func (f *Form) Edit(id int64) error {
	if f.state == FormSubmitting {
		return ErrBusy
	}
	f.state = FormEditing
	f.editingID = id
	f.errs = nil
	return nil
}

// Submit validates and, when valid, commits. commit receives the id being edited (zero for add).
// Validation failures leave the form in FormError with the annotations; commit errors restore the prior state.
func (f *Form) Submit(validate func() error, commit func(editingID int64) error) error {
	if f.state == FormSubmitting {
		return ErrBusy
	}
	prior := f.state
	f.state = FormSubmitting

	if err := validate(); err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			f.errs = verrs
			f.state = FormError
			return verrs
		}
		f.state = prior
		return err
	}

	if err := commit(f.editingID); err != nil {
		f.state = prior
		return err
	}

	f.reset()
	return nil
}

// Close discards any in-progress edit
func (f *Form) Close() {
	f.reset()
}

func (f *Form) reset() {
	f.state = FormIdle
	f.editingID = 0
	f.errs = nil
}
