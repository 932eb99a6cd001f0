package intake

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ehr/intake/internal/platform/fhir"
)

type vitalCode struct {
	loinc   string
	display string
	unit    string
}

var (
	codeWeight      = vitalCode{"29463-7", "Body weight", "kg"}
	codeHeight      = vitalCode{"8302-2", "Body height", "cm"}
	codeWaist       = vitalCode{"8280-0", "Waist Circumference at umbilicus by Tape measure", "cm"}
	codeHead        = vitalCode{"9843-4", "Head Occipital-frontal circumference", "cm"}
	codeSystolic    = vitalCode{"8480-6", "Systolic blood pressure", "mm[Hg]"}
	codeDiastolic   = vitalCode{"8462-4", "Diastolic blood pressure", "mm[Hg]"}
	codeHeartRate   = vitalCode{"8867-4", "Heart rate", "/min"}
	codeRespiratory = vitalCode{"9279-1", "Respiratory rate", "/min"}
	codeTemperature = vitalCode{"8310-5", "Body temperature", "Cel"}
	codeSaturation  = vitalCode{"2708-6", "Oxygen saturation in Arterial blood", "%"}
	codeGlucose     = vitalCode{"2339-0", "Glucose [Mass/volume] in Blood", "mg/dL"}
	codeBMI         = vitalCode{"39156-5", "Body mass index (BMI) [Ratio]", "kg/m2"}
	codeBPPanel     = vitalCode{"85354-9", "Blood pressure panel with all children optional", ""}
)

var observationNamespace = uuid.MustParse("6f1c3d5e-2a8b-4c1e-9d7f-3b5a0e4c8f21")

// VitalSignObservations maps the filled measurements to FHIR Observations.
// patientRef, when not empty, becomes the subject of each one. Calf
// circumference has no vital-sign code and is left out. Ids are stable for
// the same intake.
func (in *Intake) VitalSignObservations(patientRef string) []*fhir.Observation {
	var out []*fhir.Observation
	add := func(obs *fhir.Observation) {
		obs.ID = in.observationID(obs.Code.Coding[0].Code)
		if patientRef != "" {
			obs.Subject = &fhir.Reference{Reference: patientRef}
		}
		if in.EncounterID != "" {
			obs.Encounter = &fhir.Reference{Reference: "Encounter/" + in.EncounterID}
		}
		start, end := in.StartedAt, in.EndedAt
		obs.EffectivePeriod = &fhir.Period{Start: &start, End: &end}
		out = append(out, obs)
	}
	simple := func(c vitalCode, value string) {
		if q := quantity(value, c.unit); q != nil {
			obs := fhir.NewVitalSign(fhir.LOINC(c.loinc, c.display))
			obs.ValueQuantity = q
			add(obs)
		}
	}

	a, v := in.Anthropometry, in.VitalSigns
	simple(codeWeight, a.Weight)
	simple(codeHeight, a.Height)
	simple(codeWaist, a.Waist)
	simple(codeHead, a.Head)

	var bp []fhir.ObservationComponent
	for _, part := range []struct {
		code  vitalCode
		value string
	}{{codeSystolic, v.Systolic}, {codeDiastolic, v.Diastolic}} {
		if q := quantity(part.value, part.code.unit); q != nil {
			bp = append(bp, fhir.ObservationComponent{Code: fhir.LOINC(part.code.loinc, part.code.display), ValueQuantity: q})
		}
	}
	if len(bp) > 0 {
		obs := fhir.NewVitalSign(fhir.LOINC(codeBPPanel.loinc, codeBPPanel.display))
		obs.Component = bp
		add(obs)
	}

	simple(codeHeartRate, v.HeartRate)
	simple(codeRespiratory, v.RespiratoryRate)
	simple(codeTemperature, v.Temperature)
	simple(codeSaturation, v.Saturation)

	if q := quantity(v.Glucose, codeGlucose.unit); q != nil {
		obs := fhir.NewVitalSign(fhir.LOINC(codeGlucose.loinc, codeGlucose.display))
		obs.Meta = nil
		obs.Category = []fhir.CodeableConcept{{
			Coding: []fhir.Coding{{System: fhir.SystemObservationCat, Code: "laboratory", Display: "Laboratory"}},
		}}
		obs.ValueQuantity = q
		if v.GlucoseMoment != "" {
			obs.Note = []fhir.Annotation{{Text: "momentoColeta: " + string(v.GlucoseMoment)}}
		}
		add(obs)
	}

	if in.BMI != nil {
		obs := fhir.NewVitalSign(fhir.LOINC(codeBMI.loinc, codeBMI.display))
		obs.ValueQuantity = fhir.UCUM(in.BMI.Value, codeBMI.unit)
		add(obs)
	}
	return out
}

// FHIRBundle wraps the vital-sign observations in a collection Bundle
// stamped with the end of the encounter.
func (in *Intake) FHIRBundle() (*fhir.Bundle, error) {
	ref := ""
	if in.PatientID != "" {
		ref = "Patient/" + in.PatientID
	}
	obs := in.VitalSignObservations(ref)
	ids := make([]string, len(obs))
	resources := make([]interface{}, len(obs))
	for i, o := range obs {
		ids[i] = o.ID
		resources[i] = o
	}
	b, err := fhir.NewCollectionBundle(in.EndedAt, ids, resources)
	if err != nil {
		return nil, fmt.Errorf("intake bundle: %w", err)
	}
	return b, nil
}

func (in *Intake) observationID(code string) string {
	key := fmt.Sprintf("%s|%s|%d|%s", in.PatientID, in.EncounterID, in.StartedAt.UnixNano(), code)
	return uuid.NewSHA1(observationNamespace, []byte(key)).String()
}

func quantity(value, unit string) *fhir.Quantity {
	if value == "" {
		return nil
	}
	n, ok := parseDecimal(value)
	if !ok {
		return nil
	}
	return fhir.UCUM(n, unit)
}
