// Package status derives per-patient badges, reminders, the next appointment
// and agenda views from raw patient and appointment records. Nothing here is
// persisted; everything is recomputed from the current snapshot.
package status

import (
	"sort"
	"strings"
	"time"

	"github.com/prontuario/prontuario/backend/go-services/internal/datetime"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
)

// Aggregate status tags, in precedence order. Once checklist and evolution
// are done the tag is always devolutiva_agendada, whatever the devolutiva
// status; there is no separate "em dia" tag.
const (
	TagChecklistPending    = "checklist_pendente"
	TagEvolutionPending    = "evolucao_pendente"
	TagDevolutiveScheduled = "devolutiva_agendada"
)

// Filters accepted by Filter besides the aggregate tags.
const (
	FilterAll               = "todos"
	FilterDevolutivePending = "devolutiva_pendente"
)

// Aggregate returns the first matching tag: checklist pending, evolution
// pending or late, otherwise devolutiva_agendada.
func Aggregate(p patient.Patient) string {
	switch {
	case checklistPending(p):
		return TagChecklistPending
	case evolutionPending(p):
		return TagEvolutionPending
	}
	return TagDevolutiveScheduled
}

func checklistPending(p patient.Patient) bool {
	return p.ChecklistStatus == patient.ChecklistPending || p.ChecklistStatus == patient.ChecklistNotStarted
}

func evolutionPending(p patient.Patient) bool {
	return p.EvolutionStatus == patient.EvolutionPending || p.EvolutionStatus == patient.EvolutionLate
}

// NextAppointment picks the nearest non-completed appointment at or after
// now; failing that, the latest appointment; "" when there are none.
// now is a canonical timestamp.
func NextAppointment(appts []patient.Appointment, now string) string {
	next, latest := "", ""
	for _, a := range appts {
		if a.Date == "" {
			continue
		}
		if latest == "" || datetime.Compare(a.Date, latest) > 0 {
			latest = a.Date
		}
		if a.Completed || datetime.Compare(a.Date, now) < 0 {
			continue
		}
		if next == "" || datetime.Compare(a.Date, next) < 0 {
			next = a.Date
		}
	}
	if next != "" {
		return next
	}
	return latest
}

// Matches reports whether p passes a list filter: a case-insensitive
// substring of name or email, and one of the status filters
// (checklist_pendente, evolucao_pendente, devolutiva_pendente, todos or "").
func Matches(p patient.Patient, query, filter string) bool {
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Email), q) {
			return false
		}
	}
	switch filter {
	case TagChecklistPending:
		return checklistPending(p)
	case TagEvolutionPending:
		return evolutionPending(p)
	case FilterDevolutivePending:
		return p.DevolutiveStatus == patient.DevolutivePending
	}
	return true
}

// Filter keeps the patients that match query and filter, preserving order.
func Filter(list []patient.WithAppointments, query, filter string) []patient.WithAppointments {
	out := make([]patient.WithAppointments, 0, len(list))
	for _, p := range list {
		if Matches(p.Patient, query, filter) {
			out = append(out, p)
		}
	}
	return out
}

// AgendaEntry is an appointment flattened with its patient.
type AgendaEntry struct {
	PatientID   patient.ID          `json:"patientId"`
	PatientName string              `json:"patientName"`
	Appointment patient.Appointment `json:"appointment"`
}

// Agenda holds today's appointments and every appointment from today on.
type Agenda struct {
	Today    []AgendaEntry `json:"today"`
	Upcoming []AgendaEntry `json:"upcoming"`
}

// BuildAgenda flattens all appointments, sorts them by timestamp and splits
// out those on today (a YYYY-MM-DD date part) and from today onwards.
func BuildAgenda(list []patient.WithAppointments, today string) Agenda {
	all := []AgendaEntry{}
	for _, p := range list {
		for _, a := range p.Appointments {
			all = append(all, AgendaEntry{PatientID: p.ID, PatientName: p.Name, Appointment: a})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return datetime.Compare(all[i].Appointment.Date, all[j].Appointment.Date) < 0
	})
	ag := Agenda{Today: []AgendaEntry{}, Upcoming: []AgendaEntry{}}
	for _, e := range all {
		if strings.HasPrefix(e.Appointment.Date, today) {
			ag.Today = append(ag.Today, e)
		}
		if e.Appointment.Date >= today {
			ag.Upcoming = append(ag.Upcoming, e)
		}
	}
	return ag
}

// RecentPatients returns up to n patients ordered by lastConsult, newest
// first. Patients without a parsable lastConsult sort last.
func RecentPatients(list []patient.WithAppointments, n int) []patient.WithAppointments {
	out := append([]patient.WithAppointments{}, list...)
	key := func(p patient.WithAppointments) int64 {
		t, err := datetime.Parse(p.LastConsult)
		if err != nil {
			return 0
		}
		return t.Unix()
	}
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) > key(out[j]) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ReportOverdue reports whether p's last consult is more than 30 days before
// now while its devolutiva is not concluded.
func ReportOverdue(p patient.Patient, now time.Time) bool {
	if p.DevolutiveStatus == patient.DevolutiveDone {
		return false
	}
	last, err := datetime.Parse(p.LastConsult)
	if err != nil {
		return false
	}
	return now.Sub(last) > 30*24*time.Hour
}
