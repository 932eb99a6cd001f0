package intake

import (
	"github.com/ehr/intake/internal/domain/catalog"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumeric
	kindChoice
	kindDate
	kindTime
)

// catalogBinding ties a field to the catalogue its searchable select draws from.
type catalogBinding struct {
	kind catalog.Kind
	mode catalog.Mode
}

type fieldRef func(*EncounterIntakeForm) *string

type fieldSpec struct {
	kind    fieldKind
	section SectionID
	mask    MaskType
	choices []string
	source  *catalogBinding
	ref     fieldRef
}

func text(section SectionID, ref fieldRef) fieldSpec {
	return fieldSpec{kind: kindText, section: section, ref: ref}
}

func numeric(section SectionID, mask MaskType, ref fieldRef) fieldSpec {
	return fieldSpec{kind: kindNumeric, section: section, mask: mask, ref: ref}
}

func choice(section SectionID, choices []string, ref fieldRef) fieldSpec {
	return fieldSpec{kind: kindChoice, section: section, choices: choices, ref: ref}
}

func selectable(section SectionID, kind catalog.Kind, mode catalog.Mode, ref fieldRef) fieldSpec {
	return fieldSpec{kind: kindText, section: section, source: &catalogBinding{kind: kind, mode: mode}, ref: ref}
}

func strs[T ~string](vals ...T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

var fieldSpecs = map[Field]fieldSpec{
	FieldReason: selectable(SectionReason, catalog.KindCIAP2, catalog.Multiple,
		func(f *EncounterIntakeForm) *string { return &f.Reason }),
	FieldNarrative: text(SectionReason,
		func(f *EncounterIntakeForm) *string { return &f.Narrative }),

	FieldWeight: numeric(SectionAnthropometry, MaskWeight,
		func(f *EncounterIntakeForm) *string { return &f.Anthropometry.Weight }),
	FieldHeight: numeric(SectionAnthropometry, MaskHeight,
		func(f *EncounterIntakeForm) *string { return &f.Anthropometry.Height }),
	FieldWaist: numeric(SectionAnthropometry, MaskHeight,
		func(f *EncounterIntakeForm) *string { return &f.Anthropometry.Waist }),
	FieldCalf: numeric(SectionAnthropometry, MaskHeight,
		func(f *EncounterIntakeForm) *string { return &f.Anthropometry.Calf }),
	FieldHead: numeric(SectionAnthropometry, MaskHeight,
		func(f *EncounterIntakeForm) *string { return &f.Anthropometry.Head }),

	FieldSystolic: numeric(SectionVitals, MaskPressure,
		func(f *EncounterIntakeForm) *string { return &f.VitalSigns.Systolic }),
	FieldDiastolic: numeric(SectionVitals, MaskPressure,
		func(f *EncounterIntakeForm) *string { return &f.VitalSigns.Diastolic }),
	FieldHeartRate: numeric(SectionVitals, MaskRate,
		func(f *EncounterIntakeForm) *string { return &f.VitalSigns.HeartRate }),
	FieldRespiratoryRate: numeric(SectionVitals, MaskRate,
		func(f *EncounterIntakeForm) *string { return &f.VitalSigns.RespiratoryRate }),
	FieldTemperature: numeric(SectionVitals, MaskTemperature,
		func(f *EncounterIntakeForm) *string { return &f.VitalSigns.Temperature }),
	FieldSaturation: numeric(SectionVitals, MaskSaturation,
		func(f *EncounterIntakeForm) *string { return &f.VitalSigns.Saturation }),
	FieldGlucose: numeric(SectionVitals, MaskGlucose,
		func(f *EncounterIntakeForm) *string { return &f.VitalSigns.Glucose }),
	FieldGlucoseMoment: choice(SectionVitals,
		strs(GlucoseFasting, GlucosePreprandial, GlucosePostprandial, GlucoseUnspecified),
		func(f *EncounterIntakeForm) *string { return (*string)(&f.VitalSigns.GlucoseMoment) }),

	FieldProcedures: selectable(SectionProcedures, catalog.KindProcedures, catalog.Multiple,
		func(f *EncounterIntakeForm) *string { return &f.Procedures }),

	FieldRisk: choice(SectionRisk, strs(RiskLevels...),
		func(f *EncounterIntakeForm) *string { return (*string)(&f.Risk) }),

	FieldOutcome: choice(SectionOutcome, strs(OutcomeRelease, OutcomeAddToList, OutcomeSchedule),
		func(f *EncounterIntakeForm) *string { return (*string)(&f.OutcomeDraft.Kind) }),
	FieldOutcomeProfessional: selectable(SectionOutcome, catalog.KindProfessionals, catalog.Single,
		func(f *EncounterIntakeForm) *string { return &f.Professional }),
	FieldOutcomeTeam: selectable(SectionOutcome, catalog.KindTeams, catalog.Single,
		func(f *EncounterIntakeForm) *string { return &f.Team }),
	FieldServiceTypes: selectable(SectionOutcome, catalog.KindServiceTypes, catalog.Multiple,
		func(f *EncounterIntakeForm) *string { return &f.ServiceTypes }),
	FieldScheduleDate: {kind: kindDate, section: SectionOutcome,
		ref: func(f *EncounterIntakeForm) *string { return &f.Date }},
	FieldScheduleTime: {kind: kindTime, section: SectionOutcome,
		ref: func(f *EncounterIntakeForm) *string { return &f.Time }},
	FieldNotes: text(SectionOutcome,
		func(f *EncounterIntakeForm) *string { return &f.Notes }),
}

// ParseField resolves a wire name to a known field.
func ParseField(name string) (Field, bool) {
	f := Field(name)
	_, ok := fieldSpecs[f]
	return f, ok
}

// MaskFor returns the input mask of field, if it has one.
func MaskFor(field Field) (MaskType, bool) {
	spec, ok := fieldSpecs[field]
	if !ok || spec.mask == "" {
		return "", false
	}
	return spec.mask, true
}

// CatalogFor returns the catalogue and selection mode bound to field.
func CatalogFor(field Field) (catalog.Kind, catalog.Mode, bool) {
	spec, ok := fieldSpecs[field]
	if !ok || spec.source == nil {
		return "", 0, false
	}
	return spec.source.kind, spec.source.mode, true
}
