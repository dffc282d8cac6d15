package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/xavierca1/visa-leads/internal/entity"
)

// StorageError wraps a failure reading or writing the backing medium.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// FileLeadRepository stores every lead in a single JSON array and rewrites the
// whole file on each mutation.
type FileLeadRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileLeadRepository(path string) *FileLeadRepository {
	return &FileLeadRepository{path: path}
}

func (r *FileLeadRepository) Append(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	leads, err := r.load()
	if err != nil {
		return err
	}
	if indexOf(leads, lead.ID) >= 0 {
		return entity.ErrDuplicateLead
	}

	return r.save(append(leads, lead))
}

func (r *FileLeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

func (r *FileLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	leads, err := r.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(leads, id)
	if i < 0 {
		return nil, entity.ErrLeadNotFound
	}
	return leads[i], nil
}

func (r *FileLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) (*entity.Lead, error) {
	if !status.IsValid() {
		return nil, entity.ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	leads, err := r.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(leads, id)
	if i < 0 {
		return nil, entity.ErrLeadNotFound
	}

	leads[i].Status = status
	if err := r.save(leads); err != nil {
		return nil, err
	}
	return leads[i], nil
}

// load returns an empty collection when the file does not exist yet.
func (r *FileLeadRepository) load() ([]*entity.Lead, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*entity.Lead{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}

	leads := []*entity.Lead{}
	if len(data) == 0 {
		return leads, nil
	}
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, &StorageError{Op: "decode", Err: err}
	}
	return leads, nil
}

// save writes to a temp file in the same directory and renames it over the
// data file, so a crash never leaves a truncated array behind.
func (r *FileLeadRepository) save(leads []*entity.Lead) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Err: err}
	}

	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".leads-*.json")
	if err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "rename", Err: err}
	}
	return nil
}
