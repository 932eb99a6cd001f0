package intake

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Submitter receives a submitted intake. It is called at most once per form.
type Submitter interface {
	SubmitIntake(ctx context.Context, in *Intake) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, in *Intake) error

func (fn SubmitterFunc) SubmitIntake(ctx context.Context, in *Intake) error {
	return fn(ctx, in)
}

// FieldState reports what Set did with one value. Value and Display are the
// attempted input; Stored is false when a blocking verdict rejected it.
type FieldState struct {
	Field   Field   `json:"field"`
	Display string  `json:"display"`
	Value   string  `json:"value"`
	Verdict Verdict `json:"verdict"`
	Stored  bool    `json:"stored"`
}

// Snapshot is a read-only copy of the form together with everything derived
// from it.
type Snapshot struct {
	Values            EncounterIntakeForm `json:"values"`
	Errors            FieldErrors         `json:"errors"`
	Warnings          map[Field]string    `json:"warnings"`
	DerivedProcedures []string            `json:"procedimentosAutomaticos"`
	BMI               *BMI                `json:"imc,omitempty"`
	Sections          []SectionView       `json:"sections"`
	StartedAt         time.Time           `json:"inicioAtendimento"`
	Closed            bool                `json:"closed"`
}

type FormOption func(*Form)

// WithClock replaces time.Now for timestamps and appointment checks.
func WithClock(now func() time.Time) FormOption {
	return func(f *Form) { f.now = now }
}

func WithPatient(id string) FormOption {
	return func(f *Form) { f.patientID = id }
}

func WithEncounter(id string) FormOption {
	return func(f *Form) { f.encounterID = id }
}

// Form is one encounter's intake. It is not safe for concurrent use; the
// session registry serializes access to it.
type Form struct {
	data        EncounterIntakeForm
	display     map[Field]string
	entryErrors FieldErrors
	submitErrs  FieldErrors
	warnings    map[Field]string

	patientID   string
	encounterID string
	startedAt   time.Time
	now         func() time.Time
	closed      bool
}

func NewForm(opts ...FormOption) *Form {
	f := &Form{
		display:     map[Field]string{},
		entryErrors: FieldErrors{},
		submitErrs:  FieldErrors{},
		warnings:    map[Field]string{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.startedAt = f.now()
	return f
}

// Set is the single entry point for changing a field. Masked fields accept
// only digits and one decimal comma; anything else blocks before masking.
// The value then goes through the field's mask and its validator. A blocking
// verdict leaves the stored value untouched and records an entry error; a
// warning stores the value and records the warning.
func (f *Form) Set(field Field, raw string) (FieldState, error) {
	if f.closed {
		return FieldState{}, ErrFormClosed
	}
	spec, ok := fieldSpecs[field]
	if !ok {
		return FieldState{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	display, value, check := raw, raw, raw
	if spec.kind != kindText {
		display = strings.TrimSpace(raw)
		value, check = display, display
	}
	if spec.mask != "" {
		if !ValidateNumericOnly(display) || strings.Count(display, ",") > 1 {
			f.clearSubmitError(field)
			f.entryErrors[field] = msgNumericOnly
			return FieldState{
				Field:   field,
				Display: display,
				Value:   display,
				Verdict: Verdict{Severity: SeverityBlock, Message: msgNumericOnly},
			}, nil
		}
		m, err := Mask(spec.mask, raw)
		if err != nil {
			return FieldState{}, err
		}
		display, value = m.Display, m.Value
		check = strings.Replace(m.Value, ".", ",", 1)
	}

	state := FieldState{Field: field, Display: display, Value: value, Verdict: Validate(field, check)}
	f.clearSubmitError(field)

	if state.Verdict.Severity == SeverityBlock {
		f.entryErrors[field] = state.Verdict.Message
		return state, nil
	}

	*spec.ref(&f.data) = value
	if spec.mask != "" && display != "" {
		f.display[field] = display
	} else {
		delete(f.display, field)
	}
	delete(f.entryErrors, field)
	if field == FieldOutcome {
		f.dropUnusedOutcomeErrors()
	}
	if state.Verdict.Severity == SeverityWarn {
		f.warnings[field] = state.Verdict.Message
	} else {
		delete(f.warnings, field)
	}
	state.Stored = true
	return state, nil
}

// Value returns the stored value of field.
func (f *Form) Value(field Field) (string, error) {
	spec, ok := fieldSpecs[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return *spec.ref(&f.data), nil
}

var outcomeSubFields = []Field{
	FieldOutcomeProfessional, FieldOutcomeTeam, FieldServiceTypes,
	FieldScheduleDate, FieldScheduleTime, FieldNotes,
}

// outcomeFieldsByKind lists the sub-fields each outcome kind reads.
var outcomeFieldsByKind = map[OutcomeKind][]Field{
	OutcomeRelease:   {FieldNotes},
	OutcomeAddToList: {FieldOutcomeProfessional, FieldOutcomeTeam, FieldServiceTypes, FieldNotes},
	OutcomeSchedule:  {FieldOutcomeProfessional, FieldScheduleDate, FieldScheduleTime, FieldNotes},
}

// outcomeUses reports whether an outcome of kind reads field. Fields outside
// the outcome section are always in use.
func outcomeUses(kind OutcomeKind, field Field) bool {
	isSub := false
	for _, sub := range outcomeSubFields {
		if sub == field {
			isSub = true
			break
		}
	}
	if !isSub {
		return true
	}
	for _, used := range outcomeFieldsByKind[kind] {
		if used == field {
			return true
		}
	}
	return false
}

// dropUnusedOutcomeErrors forgets entry errors on sub-fields the current
// outcome kind does not read.
func (f *Form) dropUnusedOutcomeErrors() {
	for _, sub := range outcomeSubFields {
		if !outcomeUses(f.data.Kind, sub) {
			delete(f.entryErrors, sub)
		}
	}
}

func (f *Form) clearSubmitError(field Field) {
	delete(f.submitErrs, field)
	switch field {
	case FieldOutcome:
		for _, sub := range outcomeSubFields {
			delete(f.submitErrs, sub)
		}
	case FieldOutcomeProfessional, FieldOutcomeTeam:
		for _, other := range []Field{FieldOutcomeProfessional, FieldOutcomeTeam} {
			if f.submitErrs[other] == msgProfessionalOrTeam {
				delete(f.submitErrs, other)
			}
		}
	}
}

// Errors merges entry errors with the errors of the last blocked submit.
// Entry errors win when a field has both.
func (f *Form) Errors() FieldErrors {
	out := make(FieldErrors, len(f.entryErrors)+len(f.submitErrs))
	for k, v := range f.submitErrs {
		out[k] = v
	}
	for k, v := range f.entryErrors {
		out[k] = v
	}
	return out
}

func (f *Form) Warnings() map[Field]string {
	out := make(map[Field]string, len(f.warnings))
	for k, v := range f.warnings {
		out[k] = v
	}
	return out
}

// Submit checks the cross-field requirements and, when they hold, hands the
// assembled intake to sink and closes the form. On field errors the sink is
// not called and the errors are returned as FieldErrors. A sink error leaves
// the form open so the submit can be retried.
func (f *Form) Submit(ctx context.Context, sink Submitter) (*Intake, error) {
	if f.closed {
		return nil, ErrFormClosed
	}
	now := f.now()

	errs := FieldErrors{}
	for k, v := range f.entryErrors {
		if outcomeUses(f.data.Kind, k) {
			errs[k] = v
		}
	}
	if strings.TrimSpace(f.data.Reason) == "" {
		setOnce(errs, FieldReason, msgRequired)
	}
	if f.data.Risk == "" {
		setOnce(errs, FieldRisk, msgRequired)
	}
	outcome, oerrs := buildOutcome(f.data.OutcomeDraft, now)
	for k, v := range oerrs {
		setOnce(errs, k, v)
	}
	if len(errs) > 0 {
		f.submitErrs = errs
		out := make(FieldErrors, len(errs))
		for k, v := range errs {
			out[k] = v
		}
		return nil, out
	}

	in := f.assemble(outcome, now)
	if sink != nil {
		if err := sink.SubmitIntake(ctx, in); err != nil {
			return nil, fmt.Errorf("deliver intake: %w", err)
		}
	}
	f.submitErrs = FieldErrors{}
	f.closed = true
	return in, nil
}

func setOnce(errs FieldErrors, field Field, msg string) {
	if _, ok := errs[field]; !ok {
		errs[field] = msg
	}
}

func (f *Form) assemble(outcome Outcome, now time.Time) *Intake {
	vitals := f.data.VitalSigns
	if vitals.Glucose != "" && vitals.GlucoseMoment == "" {
		vitals.GlucoseMoment = GlucoseUnspecified
	}
	return &Intake{
		PatientID:         f.patientID,
		EncounterID:       f.encounterID,
		Reason:            strings.TrimSpace(f.data.Reason),
		Narrative:         f.data.Narrative,
		Anthropometry:     f.data.Anthropometry,
		VitalSigns:        vitals,
		BMI:               ComputeBMI(f.data.Anthropometry.Weight, f.data.Anthropometry.Height),
		Procedures:        f.data.Procedures,
		DerivedProcedures: DeriveProcedures(f.data.Anthropometry, f.data.VitalSigns),
		Risk:              f.data.Risk,
		Outcome:           outcome,
		StartedAt:         f.startedAt,
		EndedAt:           now,
	}
}

// Cancel discards the form and calls onCancel, if given. Cancelling a closed
// form does nothing.
func (f *Form) Cancel(onCancel func()) {
	if f.closed {
		return
	}
	f.closed = true
	f.data = EncounterIntakeForm{}
	f.display = map[Field]string{}
	f.entryErrors = FieldErrors{}
	f.submitErrs = FieldErrors{}
	f.warnings = map[Field]string{}
	if onCancel != nil {
		onCancel()
	}
}

func (f *Form) Closed() bool {
	return f.closed
}

func (f *Form) StartedAt() time.Time {
	return f.startedAt
}

func (f *Form) Snapshot() Snapshot {
	data := f.data
	errs := f.Errors()
	warnings := f.Warnings()
	required := requiredFields(data.Kind)

	views := make([]SectionView, 0, len(sections))
	for _, s := range sections {
		sv := SectionView{ID: s.ID, Title: s.Title, Collapsible: s.Collapsible, Fields: make([]FieldView, 0, len(s.Fields))}
		for _, field := range s.Fields {
			sv.Fields = append(sv.Fields, FieldView{
				Field:    field,
				Value:    *fieldSpecs[field].ref(&data),
				Display:  f.display[field],
				Error:    errs[field],
				Warning:  warnings[field],
				Required: required[field],
			})
		}
		views = append(views, sv)
	}

	return Snapshot{
		Values:            data,
		Errors:            errs,
		Warnings:          warnings,
		DerivedProcedures: DeriveProcedures(data.Anthropometry, data.VitalSigns),
		BMI:               ComputeBMI(data.Anthropometry.Weight, data.Anthropometry.Height),
		Sections:          views,
		StartedAt:         f.startedAt,
		Closed:            f.closed,
	}
}
