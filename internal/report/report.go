// Package report aggregates practice statistics over the patient list.
package report

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/prontuario/prontuario/backend/go-services/internal/datetime"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
)

const (
	// WeeklyBuckets is the number of calendar weeks in the histogram.
	WeeklyBuckets = 4
	// TopN is the size of the patient ranking.
	TopN = 5
)

type Summary struct {
	TotalPatients             int     `json:"totalPatients"`
	TotalConsults             int     `json:"totalConsults"`
	AverageConsultsPerPatient float64 `json:"averageConsultsPerPatient"`
	CompletedDevolutives      int     `json:"completedDevolutives"`
	PendingDevolutives        int     `json:"pendingDevolutives"`
	TotalAppointments         int     `json:"totalAppointments"`
	CompletedAppointments     int     `json:"completedAppointments"`
	PendingAppointments       int     `json:"pendingAppointments"`
}

type WeekBucket struct {
	WeeksAgo int    `json:"weeksAgo"`
	Label    string `json:"week"`
	Consults int    `json:"consults"`
}

type PatientRank struct {
	ID          patient.ID `json:"id"`
	Name        string     `json:"name"`
	Consults    int        `json:"consults"`
	LastConsult string     `json:"lastConsult"`
	Status      string     `json:"status"`
}

// Report is everything the reports screen shows.
type Report struct {
	Summary     Summary       `json:"summary"`
	Weekly      []WeekBucket  `json:"weekly"`
	TopPatients []PatientRank `json:"topPatients"`
}

// Build computes the full report at instant now.
func Build(list []patient.WithAppointments, now time.Time) Report {
	return Report{
		Summary:     Summarize(list),
		Weekly:      Weekly(list, now),
		TopPatients: Top(list, TopN),
	}
}

// Summarize counts patients, consults, devolutivas and appointments.
// The average is rounded to one decimal and is 0 for an empty list.
func Summarize(list []patient.WithAppointments) Summary {
	var s Summary
	s.TotalPatients = len(list)
	for _, p := range list {
		s.TotalConsults += p.TotalConsults
		switch p.DevolutiveStatus {
		case patient.DevolutiveDone:
			s.CompletedDevolutives++
		case patient.DevolutivePending:
			s.PendingDevolutives++
		}
		s.TotalAppointments += len(p.Appointments)
		for _, a := range p.Appointments {
			if a.Completed {
				s.CompletedAppointments++
			}
		}
	}
	if s.TotalPatients > 0 {
		s.AverageConsultsPerPatient = round1(float64(s.TotalConsults) / float64(s.TotalPatients))
	}
	if d := s.TotalAppointments - s.CompletedAppointments; d > 0 {
		s.PendingAppointments = d
	}
	return s
}

// Weekly buckets appointment counts by calendar weeks ago (0 = the week of
// now). Unparsable dates and dates outside the last four weeks are ignored.
func Weekly(list []patient.WithAppointments, now time.Time) []WeekBucket {
	counts := make([]int, WeeklyBuckets)
	for _, p := range list {
		for _, a := range p.Appointments {
			at, err := datetime.Parse(a.Date)
			if err != nil {
				continue
			}
			w := datetime.CalendarWeeksBetween(now, at)
			if w < 0 || w >= WeeklyBuckets {
				continue
			}
			counts[w]++
		}
	}
	out := make([]WeekBucket, WeeklyBuckets)
	for i, c := range counts {
		out[i] = WeekBucket{WeeksAgo: i, Label: weekLabel(i), Consults: c}
	}
	return out
}

// Top ranks patients by totalConsults, highest first; ties keep list order.
func Top(list []patient.WithAppointments, n int) []PatientRank {
	sorted := append([]patient.WithAppointments{}, list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalConsults > sorted[j].TotalConsults })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]PatientRank, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, PatientRank{ID: p.ID, Name: p.Name, Consults: p.TotalConsults, LastConsult: p.LastConsult, Status: "Ativo"})
	}
	return out
}

func weekLabel(weeksAgo int) string {
	return "Semana " + strconv.Itoa(WeeklyBuckets-weeksAgo)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
