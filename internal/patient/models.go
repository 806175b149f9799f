package patient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID identifies patients, appointments, checklist items and evolutions.
// Older data files carry numeric ids, so decoding accepts JSON numbers too.
type ID string

// NewID returns a fresh opaque identifier.
func NewID() ID { return ID(uuid.NewString()) }

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Checklist states.
const (
	ChecklistNotStarted = "nao_iniciado"
	ChecklistPending    = "pendente"
	ChecklistComplete   = "completo"
)

// Evolution (clinical progress note) states.
const (
	EvolutionPending = "pendente"
	EvolutionUpdated = "atualizada"
	EvolutionLate    = "atrasada"
)

// Devolutiva (feedback session) states.
const (
	DevolutivePending   = "pendente"
	DevolutiveScheduled = "agendada"
	DevolutiveDone      = "concluida"
)

// Appointment states.
const (
	AppointmentScheduled = "agendado"
	AppointmentAttended  = "atendido"
	AppointmentNoShow    = "nao_compareceu"
)

// Evolution is a dated free-text session note.
type Evolution struct {
	ID   ID     `json:"id" bson:"id"`
	Date string `json:"date,omitempty" bson:"date,omitempty"`
	Note string `json:"note,omitempty" bson:"note,omitempty"`
}

// ChecklistItem is one intake/administrative item of a patient's checklist.
type ChecklistItem struct {
	ID    ID     `json:"id" bson:"id"`
	Label string `json:"label" bson:"label"`
	Done  bool   `json:"done" bson:"done"`
}

// Appointment belongs to exactly one patient. Date is a canonical timestamp
// (YYYY-MM-DDTHH:mm).
type Appointment struct {
	ID        ID     `json:"id" bson:"id"`
	PatientID ID     `json:"patientId" bson:"patientId"`
	Date      string `json:"date" bson:"date"`
	Note      string `json:"note" bson:"note"`
	Status    string `json:"status" bson:"status"`
	Completed bool   `json:"completed" bson:"completed"`
}

// Patient is the persisted patient record. Appointments are stored in their
// own collection and only joined in on reads.
type Patient struct {
	ID               ID              `json:"id" bson:"id"`
	Name             string          `json:"name" bson:"name"`
	Email            string          `json:"email" bson:"email"`
	Phone            string          `json:"phone" bson:"phone"`
	RegistrationDate string          `json:"registrationDate" bson:"registrationDate"`
	LastConsult      string          `json:"lastConsult" bson:"lastConsult"`
	TotalConsults    int             `json:"totalConsults" bson:"totalConsults"`
	ChecklistStatus  string          `json:"checklistStatus" bson:"checklistStatus"`
	EvolutionStatus  string          `json:"evolutionStatus" bson:"evolutionStatus"`
	DevolutiveStatus string          `json:"devolutiveStatus" bson:"devolutiveStatus"`
	NextAppointment  string          `json:"nextAppointment,omitempty" bson:"nextAppointment,omitempty"`
	Notes            string          `json:"notes" bson:"notes"`
	Evolutions       []Evolution     `json:"evolutions,omitempty" bson:"evolutions,omitempty"`
	ChecklistItems   []ChecklistItem `json:"checklistItems,omitempty" bson:"checklistItems,omitempty"`
}

// WithAppointments is a patient joined with its appointments, as served by the API.
type WithAppointments struct {
	Patient      `bson:",inline"`
	Appointments []Appointment `json:"appointments" bson:"appointments"`
}

// Document is the whole persisted state: both collections, loaded and
// written as one unit.
type Document struct {
	Patients     []Patient     `json:"patients" bson:"patients"`
	Appointments []Appointment `json:"appointments" bson:"appointments"`
}

// Normalize replaces nil collections with empty ones.
func (d *Document) Normalize() {
	if d.Patients == nil {
		d.Patients = []Patient{}
	}
	if d.Appointments == nil {
		d.Appointments = []Appointment{}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Patients:     make([]Patient, len(d.Patients)),
		Appointments: append([]Appointment{}, d.Appointments...),
	}
	for i, p := range d.Patients {
		if p.Evolutions != nil {
			p.Evolutions = append([]Evolution{}, p.Evolutions...)
		}
		if p.ChecklistItems != nil {
			p.ChecklistItems = append([]ChecklistItem{}, p.ChecklistItems...)
		}
		out.Patients[i] = p
	}
	return out
}

// AppointmentsOf returns the appointments referencing patientID, in stored order.
func (d *Document) AppointmentsOf(patientID ID) []Appointment {
	out := []Appointment{}
	for _, a := range d.Appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out
}

// Joined returns every patient with its appointments, in insertion order.
func (d *Document) Joined() []WithAppointments {
	out := make([]WithAppointments, 0, len(d.Patients))
	for _, p := range d.Patients {
		out = append(out, WithAppointments{Patient: p, Appointments: d.AppointmentsOf(p.ID)})
	}
	return out
}
