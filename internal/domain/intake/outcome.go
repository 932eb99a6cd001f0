package intake

import (
	"time"

	"github.com/goccy/go-json"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Outcome is what happens to the patient after the intake. The set of
// implementations is closed: Release, AddToList and Schedule.
type Outcome interface {
	Kind() OutcomeKind
	outcome()
}

// Release sends the patient home.
type Release struct {
	Notes string
}

// AddToList puts the patient in the attendance queue of a professional or
// a team.
type AddToList struct {
	Professional string
	Team         string
	ServiceTypes []string
	Notes        string
}

// Schedule books a later appointment.
type Schedule struct {
	Professional string
	Date         string
	Time         string
	Notes        string
}

func (Release) Kind() OutcomeKind   { return OutcomeRelease }
func (AddToList) Kind() OutcomeKind { return OutcomeAddToList }
func (Schedule) Kind() OutcomeKind  { return OutcomeSchedule }

func (Release) outcome()   {}
func (AddToList) outcome() {}
func (Schedule) outcome()  {}

func (o Release) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  OutcomeKind `json:"tipo"`
		Notes string      `json:"observacoes,omitempty"`
	}{o.Kind(), o.Notes})
}

func (o AddToList) MarshalJSON() ([]byte, error) {
	types := o.ServiceTypes
	if types == nil {
		types = []string{}
	}
	return json.Marshal(struct {
		Kind         OutcomeKind `json:"tipo"`
		Professional string      `json:"profissional,omitempty"`
		Team         string      `json:"equipe,omitempty"`
		ServiceTypes []string    `json:"tiposServico"`
		Notes        string      `json:"observacoes,omitempty"`
	}{o.Kind(), o.Professional, o.Team, types, o.Notes})
}

func (o Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind         OutcomeKind `json:"tipo"`
		Professional string      `json:"profissional"`
		Date         string      `json:"data"`
		Time         string      `json:"horario"`
		Notes        string      `json:"observacoes,omitempty"`
	}{o.Kind(), o.Professional, o.Date, o.Time, o.Notes})
}

// Appointment is the scheduled date and time in loc.
func (o Schedule) Appointment(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" "+timeLayout, o.Date+" "+o.Time, loc)
}

// RequiredOutcomeFields lists the sub-fields a kind needs. anyOf fields are
// satisfied when at least one of them is filled.
func RequiredOutcomeFields(kind OutcomeKind) (all []Field, anyOf []Field) {
	switch kind {
	case OutcomeAddToList:
		return nil, []Field{FieldOutcomeProfessional, FieldOutcomeTeam}
	case OutcomeSchedule:
		return []Field{FieldOutcomeProfessional, FieldScheduleDate, FieldScheduleTime}, nil
	default:
		return nil, nil
	}
}

// buildOutcome turns the draft into its typed outcome, or reports which
// sub-fields are missing or malformed. now decides whether an appointment
// lies in the past.
func buildOutcome(d OutcomeDraft, now time.Time) (Outcome, FieldErrors) {
	errs := FieldErrors{}
	switch d.Kind {
	case OutcomeRelease:
		return Release{Notes: d.Notes}, nil

	case OutcomeAddToList:
		if d.Professional == "" && d.Team == "" {
			errs[FieldOutcomeProfessional] = msgProfessionalOrTeam
			errs[FieldOutcomeTeam] = msgProfessionalOrTeam
			return nil, errs
		}
		return AddToList{
			Professional: d.Professional,
			Team:         d.Team,
			ServiceTypes: splitList(d.ServiceTypes),
			Notes:        d.Notes,
		}, nil

	case OutcomeSchedule:
		if d.Professional == "" {
			errs[FieldOutcomeProfessional] = msgRequired
		}
		if d.Date == "" {
			errs[FieldScheduleDate] = msgRequired
		}
		if d.Time == "" {
			errs[FieldScheduleTime] = msgRequired
		}
		if len(errs) > 0 {
			return nil, errs
		}

		s := Schedule{Professional: d.Professional, Date: d.Date, Time: d.Time, Notes: d.Notes}
		day, err := time.ParseInLocation(dateLayout, d.Date, now.Location())
		if err != nil {
			errs[FieldScheduleDate] = msgInvalidDate
		}
		if _, err := time.Parse(timeLayout, d.Time); err != nil {
			errs[FieldScheduleTime] = msgInvalidTime
		}
		if len(errs) > 0 {
			return nil, errs
		}

		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if day.Before(today) {
			errs[FieldScheduleDate] = msgPastDate
			return nil, errs
		}
		if at, _ := s.Appointment(now.Location()); day.Equal(today) && at.Before(now) {
			errs[FieldScheduleTime] = msgPastTime
			return nil, errs
		}
		return s, nil

	default:
		errs[FieldOutcome] = msgRequired
		return nil, errs
	}
}
