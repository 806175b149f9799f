// Package store persists the single patient/appointment document. Every
// backend loads the whole document and overwrites it as a whole on save.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
	"github.com/prontuario/prontuario/backend/go-services/pkg/metrics"
)

var (
	// ErrStorageUnavailable wraps any failure to create, read or write the
	// backing resource.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store loads and saves the whole document. Load on a fresh backend returns
// an empty document with non-nil collections.
type Store interface {
	Load(ctx context.Context) (*patient.Document, error)
	Save(ctx context.Context, doc *patient.Document) error
	Name() string
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}

func emptyDocument() *patient.Document {
	d := &patient.Document{}
	d.Normalize()
	return d
}

// instrumented records counters and latency for any Store.
type instrumented struct {
	next Store
}

// Instrument wraps s so every load/save is reported to prometheus.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{next: s}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Load(ctx context.Context) (*patient.Document, error) {
	start := time.Now()
	doc, err := i.next.Load(ctx)
	observe(i.next.Name(), "load", start, err)
	return doc, err
}

func (i *instrumented) Save(ctx context.Context, doc *patient.Document) error {
	start := time.Now()
	err := i.next.Save(ctx, doc)
	observe(i.next.Name(), "save", start, err)
	return err
}

func observe(backend, op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.StoreOperations.WithLabelValues(backend, op, result).Inc()
	metrics.StoreDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
