package service

import (
	"bytes"
	"context"
	"time"

	"github.com/prontuario/prontuario/backend/go-services/internal/datetime"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient/repository"
	"github.com/prontuario/prontuario/backend/go-services/internal/report"
	"github.com/prontuario/prontuario/backend/go-services/internal/status"
	"github.com/prontuario/prontuario/backend/go-services/internal/store"
)

var (
	ErrNotFound = repository.ErrNotFound
)

// RecentCount is how many patients the dashboard lists.
const RecentCount = 3

// PatientView is a patient with its appointments and aggregate status tag.
type PatientView struct {
	patient.WithAppointments
	Status string `json:"status"`
}

type DashboardCounts struct {
	ActivePatients     int `json:"activePatients"`
	ConsultationsToday int `json:"consultationsToday"`
	DevolutivePending  int `json:"devolutivePending"`
	ReportsOverdue     int `json:"reportsOverdue"`
}

type Dashboard struct {
	Counts         DashboardCounts   `json:"counts"`
	RecentPatients []PatientView     `json:"recentPatients"`
	Reminders      []status.Reminder `json:"reminders"`
}

// Service exposes the patient operations used by the HTTP handlers and the
// CLI: repository CRUD plus the derived read models.
type Service struct {
	repo *repository.Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock fixes "now" for both the service and its repository.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{now: datetime.Now}
	for _, o := range opts {
		o(s)
	}
	s.repo = repository.New(st, repository.WithClock(s.now))
	return s
}

func view(p patient.WithAppointments) PatientView {
	return PatientView{WithAppointments: p, Status: status.Aggregate(p.Patient)}
}

func views(list []patient.WithAppointments) []PatientView {
	out := make([]PatientView, 0, len(list))
	for _, p := range list {
		out = append(out, view(p))
	}
	return out
}

func plain(list []patient.WithAppointments) []patient.Patient {
	out := make([]patient.Patient, 0, len(list))
	for _, p := range list {
		out = append(out, p.Patient)
	}
	return out
}

// ListPatients returns the patients matching query and filter; both may be empty.
func (s *Service) ListPatients(ctx context.Context, query, filter string) ([]PatientView, error) {
	list, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	return views(status.Filter(list, query, filter)), nil
}

func (s *Service) GetPatient(ctx context.Context, id patient.ID) (PatientView, error) {
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return PatientView{}, err
	}
	return view(p), nil
}

func (s *Service) CreatePatient(ctx context.Context, in patient.PatientInput) (patient.WithAppointments, error) {
	return s.repo.CreatePatient(ctx, in)
}

func (s *Service) UpdatePatient(ctx context.Context, id patient.ID, in patient.PatientInput) (patient.WithAppointments, error) {
	return s.repo.UpdatePatient(ctx, id, in)
}

func (s *Service) DeletePatient(ctx context.Context, id patient.ID) error {
	return s.repo.DeletePatient(ctx, id)
}

func (s *Service) CreateAppointment(ctx context.Context, patientID patient.ID, in patient.AppointmentInput) (patient.Appointment, error) {
	return s.repo.CreateAppointment(ctx, patientID, in)
}

func (s *Service) UpdateAppointment(ctx context.Context, patientID, appointmentID patient.ID, in patient.AppointmentInput) (patient.Appointment, error) {
	return s.repo.UpdateAppointment(ctx, patientID, appointmentID, in)
}

func (s *Service) DeleteAppointment(ctx context.Context, patientID, appointmentID patient.ID) error {
	return s.repo.DeleteAppointment(ctx, patientID, appointmentID)
}

func (s *Service) CompleteReminder(ctx context.Context, id patient.ID, kind string) (PatientView, error) {
	p, err := s.repo.CompleteReminder(ctx, id, kind)
	if err != nil {
		return PatientView{}, err
	}
	return view(p), nil
}

// Agenda lists today's and upcoming appointments across all patients.
func (s *Service) Agenda(ctx context.Context) (status.Agenda, error) {
	list, err := s.repo.ListPatients(ctx)
	if err != nil {
		return status.Agenda{}, err
	}
	return status.BuildAgenda(list, datetime.DatePart(s.now())), nil
}

func (s *Service) Reminders(ctx context.Context) ([]status.Reminder, error) {
	list, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	return status.Reminders(plain(list)), nil
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	list, err := s.repo.ListPatients(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now := s.now()
	today := datetime.DatePart(now)
	counts := DashboardCounts{ActivePatients: len(list)}
	for _, p := range list {
		if d, _ := datetime.Split(p.NextAppointment); d != "" && d == today {
			counts.ConsultationsToday++
		}
		if p.DevolutiveStatus == patient.DevolutivePending {
			counts.DevolutivePending++
		}
		if status.ReportOverdue(p.Patient, now) {
			counts.ReportsOverdue++
		}
	}
	return Dashboard{
		Counts:         counts,
		RecentPatients: views(status.RecentPatients(list, RecentCount)),
		Reminders:      status.Reminders(plain(list)),
	}, nil
}

func (s *Service) Report(ctx context.Context) (report.Report, error) {
	list, err := s.repo.ListPatients(ctx)
	if err != nil {
		return report.Report{}, err
	}
	return report.Build(list, s.now()), nil
}

// ExportCSV renders every patient as CSV.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	list, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, plain(list)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders every patient as an XLSX workbook.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	list, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	return report.XLSX(plain(list))
}
