package patient

import "strings"

// PatientInput is the request payload for creating or replacing a patient.
// Pointer fields distinguish "absent" from the zero value; see Apply* for the
// default used when a field is absent.
type PatientInput struct {
	Name             *string         `json:"name"`
	Email            *string         `json:"email"`
	Phone            *string         `json:"phone"`
	RegistrationDate *string         `json:"registrationDate"`
	LastConsult      *string         `json:"lastConsult"`
	TotalConsults    *int            `json:"totalConsults" binding:"omitempty,min=0"`
	Notes            *string         `json:"notes"`
	ChecklistStatus  *string         `json:"checklistStatus" binding:"omitempty,oneof=nao_iniciado pendente completo"`
	EvolutionStatus  *string         `json:"evolutionStatus" binding:"omitempty,oneof=pendente atualizada atrasada"`
	DevolutiveStatus *string         `json:"devolutiveStatus" binding:"omitempty,oneof=pendente agendada concluida"`
	NextAppointment  *string         `json:"nextAppointment"`
	Evolutions       []Evolution     `json:"evolutions"`
	ChecklistItems   []ChecklistItem `json:"checklistItems"`
}

// AppointmentInput is the request payload for creating or replacing an appointment.
type AppointmentInput struct {
	Date      *string `json:"date"`
	Note      *string `json:"note"`
	Status    *string `json:"status" binding:"omitempty,oneof=agendado atendido nao_compareceu"`
	Completed *bool   `json:"completed"`
}

// NewPatient builds a patient from in, applying creation defaults:
// totalConsults 0, notes "", checklist nao_iniciado, evolution and devolutiva
// pendente, registrationDate today.
func NewPatient(id ID, in PatientInput, today string) Patient {
	p := Patient{
		ID:               id,
		ChecklistStatus:  ChecklistNotStarted,
		EvolutionStatus:  EvolutionPending,
		DevolutiveStatus: DevolutivePending,
	}
	in.applyCore(&p)
	if p.RegistrationDate == "" {
		p.RegistrationDate = today
	}
	in.applyMerged(&p)
	return p
}

// ApplyUpdate replaces the core fields of p with in (absent fields take the
// creation defaults) and overwrites status fields, nextAppointment and nested
// lists only when they are present.
func (in PatientInput) ApplyUpdate(p *Patient) {
	in.applyCore(p)
	in.applyMerged(p)
}

func (in PatientInput) applyCore(p *Patient) {
	p.Name = deref(in.Name)
	p.Email = deref(in.Email)
	p.Phone = deref(in.Phone)
	p.RegistrationDate = deref(in.RegistrationDate)
	p.LastConsult = deref(in.LastConsult)
	p.Notes = deref(in.Notes)
	p.TotalConsults = 0
	if in.TotalConsults != nil {
		p.TotalConsults = *in.TotalConsults
	}
}

func (in PatientInput) applyMerged(p *Patient) {
	if in.ChecklistStatus != nil {
		p.ChecklistStatus = *in.ChecklistStatus
	}
	if in.EvolutionStatus != nil {
		p.EvolutionStatus = *in.EvolutionStatus
	}
	if in.DevolutiveStatus != nil {
		p.DevolutiveStatus = *in.DevolutiveStatus
	}
	if in.NextAppointment != nil {
		p.NextAppointment = *in.NextAppointment
	}
	if in.Evolutions != nil {
		p.Evolutions = normalizeEvolutions(in.Evolutions)
	}
	if in.ChecklistItems != nil {
		p.ChecklistItems = normalizeChecklist(in.ChecklistItems)
	}
}

// Normalize treats blank enum values as absent.
func (in *PatientInput) Normalize() {
	in.ChecklistStatus = blankToNil(in.ChecklistStatus)
	in.EvolutionStatus = blankToNil(in.EvolutionStatus)
	in.DevolutiveStatus = blankToNil(in.DevolutiveStatus)
}

// Normalize treats a blank status as absent.
func (in *AppointmentInput) Normalize() {
	in.Status = blankToNil(in.Status)
}

// ApplyTo replaces every field of a with in. Absent (or blank) fields default
// to note "", status agendado, completed false; an absent date clears the date.
func (in AppointmentInput) ApplyTo(a *Appointment) {
	a.Date = deref(in.Date)
	a.Note = deref(in.Note)
	a.Status = AppointmentScheduled
	if s := blankToNil(in.Status); s != nil {
		a.Status = *s
	}
	a.Completed = in.Completed != nil && *in.Completed
}

func normalizeEvolutions(in []Evolution) []Evolution {
	out := make([]Evolution, 0, len(in))
	for _, e := range in {
		if e.ID == "" {
			e.ID = NewID()
		}
		out = append(out, e)
	}
	return out
}

func normalizeChecklist(in []ChecklistItem) []ChecklistItem {
	out := make([]ChecklistItem, 0, len(in))
	for _, it := range in {
		it.Label = strings.TrimSpace(it.Label)
		if it.Label == "" {
			continue
		}
		if it.ID == "" {
			it.ID = NewID()
		}
		out = append(out, it)
	}
	return out
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
