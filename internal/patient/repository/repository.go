package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prontuario/prontuario/backend/go-services/internal/datetime"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
	"github.com/prontuario/prontuario/backend/go-services/internal/status"
	"github.com/prontuario/prontuario/backend/go-services/internal/store"
	"github.com/prontuario/prontuario/backend/go-services/pkg/logger"
	"github.com/prontuario/prontuario/backend/go-services/pkg/metrics"
)

var (
	ErrNotFound = errors.New("not found")
)

// Repository implements patient and appointment CRUD on top of a document
// store. Every write loads the whole document, mutates it and saves it once;
// writes are serialized so concurrent requests cannot lose each other's updates.
type Repository struct {
	store store.Store
	now   func() time.Time
	mu    sync.Mutex
}

type Option func(*Repository)

// WithClock overrides the clock used for creation defaults and for the
// next-appointment computation.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func New(s store.Store, opts ...Option) *Repository {
	r := &Repository{store: s, now: datetime.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// mutate runs fn on a freshly loaded document and saves the result. Nothing
// is saved when fn fails.
func (r *Repository) mutate(ctx context.Context, fn func(doc *patient.Document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return r.store.Save(ctx, doc)
}

func recordMutation(entity, op string, id patient.ID) {
	metrics.Mutations.WithLabelValues(entity, op).Inc()
	logger.Debugf("%s %s id=%s", entity, op, id)
}

func indexOfPatient(doc *patient.Document, id patient.ID) int {
	for i, p := range doc.Patients {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func indexOfAppointment(doc *patient.Document, patientID, appointmentID patient.ID) int {
	for i, a := range doc.Appointments {
		if a.ID == appointmentID && a.PatientID == patientID {
			return i
		}
	}
	return -1
}

// refreshNext recomputes the stored next appointment of patientID.
func (r *Repository) refreshNext(doc *patient.Document, patientID patient.ID) {
	i := indexOfPatient(doc, patientID)
	if i < 0 {
		return
	}
	doc.Patients[i].NextAppointment = status.NextAppointment(doc.AppointmentsOf(patientID), datetime.Canonical(r.now()))
}

// ListPatients returns every patient joined with its appointments, in
// insertion order.
func (r *Repository) ListPatients(ctx context.Context) ([]patient.WithAppointments, error) {
	doc, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Joined(), nil
}

func (r *Repository) GetPatient(ctx context.Context, id patient.ID) (patient.WithAppointments, error) {
	doc, err := r.store.Load(ctx)
	if err != nil {
		return patient.WithAppointments{}, err
	}
	i := indexOfPatient(doc, id)
	if i < 0 {
		return patient.WithAppointments{}, ErrNotFound
	}
	return patient.WithAppointments{Patient: doc.Patients[i], Appointments: doc.AppointmentsOf(id)}, nil
}

func (r *Repository) CreatePatient(ctx context.Context, in patient.PatientInput) (patient.WithAppointments, error) {
	var created patient.Patient
	err := r.mutate(ctx, func(doc *patient.Document) error {
		created = patient.NewPatient(patient.NewID(), in, datetime.DatePart(r.now()))
		doc.Patients = append(doc.Patients, created)
		return nil
	})
	if err != nil {
		return patient.WithAppointments{}, err
	}
	recordMutation("patient", "create", created.ID)
	return patient.WithAppointments{Patient: created, Appointments: []patient.Appointment{}}, nil
}

// UpdatePatient replaces the patient's fields with in; see
// patient.PatientInput.ApplyUpdate for which fields are merged.
func (r *Repository) UpdatePatient(ctx context.Context, id patient.ID, in patient.PatientInput) (patient.WithAppointments, error) {
	var out patient.WithAppointments
	err := r.mutate(ctx, func(doc *patient.Document) error {
		i := indexOfPatient(doc, id)
		if i < 0 {
			return ErrNotFound
		}
		in.ApplyUpdate(&doc.Patients[i])
		out = patient.WithAppointments{Patient: doc.Patients[i], Appointments: doc.AppointmentsOf(id)}
		return nil
	})
	if err != nil {
		return patient.WithAppointments{}, err
	}
	recordMutation("patient", "update", id)
	return out, nil
}

// DeletePatient removes the patient and all of its appointments. Deleting an
// unknown id is not an error.
func (r *Repository) DeletePatient(ctx context.Context, id patient.ID) error {
	err := r.mutate(ctx, func(doc *patient.Document) error {
		patients := doc.Patients[:0]
		for _, p := range doc.Patients {
			if p.ID != id {
				patients = append(patients, p)
			}
		}
		doc.Patients = patients
		appts := doc.Appointments[:0]
		for _, a := range doc.Appointments {
			if a.PatientID != id {
				appts = append(appts, a)
			}
		}
		doc.Appointments = appts
		return nil
	})
	if err != nil {
		return err
	}
	recordMutation("patient", "delete", id)
	return nil
}

// CreateAppointment adds an appointment to an existing patient.
func (r *Repository) CreateAppointment(ctx context.Context, patientID patient.ID, in patient.AppointmentInput) (patient.Appointment, error) {
	var created patient.Appointment
	err := r.mutate(ctx, func(doc *patient.Document) error {
		if indexOfPatient(doc, patientID) < 0 {
			return ErrNotFound
		}
		created = patient.Appointment{ID: patient.NewID(), PatientID: patientID}
		in.ApplyTo(&created)
		doc.Appointments = append(doc.Appointments, created)
		r.refreshNext(doc, patientID)
		return nil
	})
	if err != nil {
		return patient.Appointment{}, err
	}
	recordMutation("appointment", "create", created.ID)
	return created, nil
}

// UpdateAppointment replaces the appointment identified by both ids.
func (r *Repository) UpdateAppointment(ctx context.Context, patientID, appointmentID patient.ID, in patient.AppointmentInput) (patient.Appointment, error) {
	var updated patient.Appointment
	err := r.mutate(ctx, func(doc *patient.Document) error {
		i := indexOfAppointment(doc, patientID, appointmentID)
		if i < 0 {
			return ErrNotFound
		}
		in.ApplyTo(&doc.Appointments[i])
		updated = doc.Appointments[i]
		r.refreshNext(doc, patientID)
		return nil
	})
	if err != nil {
		return patient.Appointment{}, err
	}
	recordMutation("appointment", "update", appointmentID)
	return updated, nil
}

// DeleteAppointment removes the appointment identified by both ids, if any.
func (r *Repository) DeleteAppointment(ctx context.Context, patientID, appointmentID patient.ID) error {
	err := r.mutate(ctx, func(doc *patient.Document) error {
		if i := indexOfAppointment(doc, patientID, appointmentID); i >= 0 {
			doc.Appointments = append(doc.Appointments[:i], doc.Appointments[i+1:]...)
			r.refreshNext(doc, patientID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	recordMutation("appointment", "delete", appointmentID)
	return nil
}

// CompleteReminder resolves a reminder of the given kind for a patient.
func (r *Repository) CompleteReminder(ctx context.Context, id patient.ID, kind string) (patient.WithAppointments, error) {
	var out patient.WithAppointments
	err := r.mutate(ctx, func(doc *patient.Document) error {
		i := indexOfPatient(doc, id)
		if i < 0 {
			return ErrNotFound
		}
		if err := status.CompleteReminder(&doc.Patients[i], kind); err != nil {
			return err
		}
		out = patient.WithAppointments{Patient: doc.Patients[i], Appointments: doc.AppointmentsOf(id)}
		return nil
	})
	if err != nil {
		return patient.WithAppointments{}, err
	}
	recordMutation("reminder", "complete", id)
	return out, nil
}
