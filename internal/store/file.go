package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
)

// DefaultFileName is used when no DB_FILE/DB_PATH is configured.
const DefaultFileName = "backend-db.json"

// FileStore keeps the document as pretty-printed JSON in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store for path; an empty path means DefaultFileName
// in the working directory.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path}
}

func (f *FileStore) Name() string { return "file" }

// Path returns the backing file location.
func (f *FileStore) Path() string { return f.path }

// Init creates the parent directory and the file (holding an empty document)
// when they are missing or the file is empty.
func (f *FileStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return unavailable("create dir", err)
	}
	st, err := os.Stat(f.path)
	if err == nil && st.Size() > 0 {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return unavailable("stat", err)
	}
	return f.write(emptyDocument())
}

func (f *FileStore) Load(ctx context.Context) (*patient.Document, error) {
	if err := f.Init(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, unavailable("read", err)
	}
	var doc patient.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, unavailable("decode", err)
	}
	doc.Normalize()
	return &doc, nil
}

func (f *FileStore) Save(ctx context.Context, doc *patient.Document) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return unavailable("create dir", err)
	}
	return f.write(doc)
}

// write goes through a temp file in the same directory and a rename, so
// readers see either the old or the new document.
func (f *FileStore) write(doc *patient.Document) error {
	out := *doc
	out.Normalize()
	b, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return unavailable("encode", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".db-*.json")
	if err != nil {
		return unavailable("create temp", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return unavailable("write", err)
	}
	if err := tmp.Close(); err != nil {
		return unavailable("close", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return unavailable("rename", err)
	}
	return nil
}
