// Package fhir holds the small slice of FHIR R4 datatypes the intake export
// needs: vital-sign Observations collected in a Bundle.
package fhir

import (
	"time"
)

const (
	SystemLOINC           = "http://loinc.org"
	SystemUCUM            = "http://unitsofmeasure.org"
	SystemObservationCat  = "http://terminology.hl7.org/CodeSystem/observation-category"
	ProfileVitalSigns     = "http://hl7.org/fhir/StructureDefinition/vitalsigns"
	CategoryVitalSigns    = "vital-signs"
	ObservationStatusDone = "final"
)

type Meta struct {
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
	Profile     []string   `json:"profile,omitempty"`
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

type Period struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Quantity is a UCUM-coded measurement.
type Quantity struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit,omitempty"`
	System string  `json:"system,omitempty"`
	Code   string  `json:"code,omitempty"`
}

type Annotation struct {
	Text string `json:"text"`
}

type ObservationComponent struct {
	Code          CodeableConcept `json:"code"`
	ValueQuantity *Quantity       `json:"valueQuantity,omitempty"`
}

type Observation struct {
	ResourceType    string                 `json:"resourceType"`
	ID              string                 `json:"id,omitempty"`
	Meta            *Meta                  `json:"meta,omitempty"`
	Status          string                 `json:"status"`
	Category        []CodeableConcept      `json:"category,omitempty"`
	Code            CodeableConcept        `json:"code"`
	Subject         *Reference             `json:"subject,omitempty"`
	Encounter       *Reference             `json:"encounter,omitempty"`
	EffectivePeriod *Period                `json:"effectivePeriod,omitempty"`
	ValueQuantity   *Quantity              `json:"valueQuantity,omitempty"`
	Note            []Annotation           `json:"note,omitempty"`
	Component       []ObservationComponent `json:"component,omitempty"`
}

// LOINC builds a single-coding concept in the LOINC system.
func LOINC(code, display string) CodeableConcept {
	return CodeableConcept{
		Coding: []Coding{{System: SystemLOINC, Code: code, Display: display}},
		Text:   display,
	}
}

// UCUM builds a quantity whose unit is also its UCUM code.
func UCUM(value float64, unit string) *Quantity {
	return &Quantity{Value: value, Unit: unit, System: SystemUCUM, Code: unit}
}

// NewVitalSign returns a final vital-signs Observation carrying the core
// vitalsigns profile and category.
func NewVitalSign(code CodeableConcept) *Observation {
	return &Observation{
		ResourceType: "Observation",
		Meta:         &Meta{Profile: []string{ProfileVitalSigns}},
		Status:       ObservationStatusDone,
		Category: []CodeableConcept{{
			Coding: []Coding{{System: SystemObservationCat, Code: CategoryVitalSigns, Display: "Vital Signs"}},
		}},
		Code: code,
	}
}
