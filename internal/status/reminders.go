package status

import (
	"errors"
	"fmt"

	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
)

var ErrUnknownReminder = errors.New("unknown reminder type")

// Reminder kinds.
const (
	ReminderDevolutive = "devolutiva"
	ReminderEvolution  = "evolucao"
	ReminderReport     = "relatorio"
)

// Due placeholders when a reminder has no date.
const (
	DueNotScheduled = "Não agendada"
	DuePending      = "Pendente"
)

type Reminder struct {
	Type        string     `json:"type"`
	PatientID   patient.ID `json:"patientId"`
	PatientName string     `json:"patientName"`
	Due         string     `json:"due"`
}

// RemindersFor emits up to three reminders for p:
//   - devolutiva when the devolutiva is pending (due: next appointment)
//   - evolucao when the evolution is pending or late (due: last consult)
//   - relatorio when there were consults and the devolutiva is not concluded
func RemindersFor(p patient.Patient) []Reminder {
	var out []Reminder
	if p.DevolutiveStatus == patient.DevolutivePending {
		out = append(out, Reminder{Type: ReminderDevolutive, PatientID: p.ID, PatientName: p.Name, Due: orElse(p.NextAppointment, DueNotScheduled)})
	}
	if evolutionPending(p) {
		out = append(out, Reminder{Type: ReminderEvolution, PatientID: p.ID, PatientName: p.Name, Due: p.LastConsult})
	}
	if p.TotalConsults > 0 && p.DevolutiveStatus != patient.DevolutiveDone {
		out = append(out, Reminder{Type: ReminderReport, PatientID: p.ID, PatientName: p.Name, Due: orElse(p.NextAppointment, DuePending)})
	}
	return out
}

// Reminders collects the reminders of every patient, in patient order.
func Reminders(list []patient.Patient) []Reminder {
	out := []Reminder{}
	for _, p := range list {
		out = append(out, RemindersFor(p)...)
	}
	return out
}

// CompleteReminder applies the status change that resolves a reminder kind.
func CompleteReminder(p *patient.Patient, kind string) error {
	switch kind {
	case ReminderDevolutive, ReminderReport:
		p.DevolutiveStatus = patient.DevolutiveDone
	case ReminderEvolution:
		p.EvolutionStatus = patient.EvolutionUpdated
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReminder, kind)
	}
	return nil
}

func orElse(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
