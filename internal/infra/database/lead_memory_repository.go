package database

import (
	"context"
	"sync"

	"github.com/xavierca1/visa-leads/internal/entity"
)

// MemoryLeadRepository keeps leads for the lifetime of the process.
type MemoryLeadRepository struct {
	mu    sync.RWMutex
	leads []*entity.Lead
}

func NewMemoryLeadRepository() *MemoryLeadRepository {
	return &MemoryLeadRepository{}
}

func (r *MemoryLeadRepository) Append(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if indexOf(r.leads, lead.ID) >= 0 {
		return entity.ErrDuplicateLead
	}
	r.leads = append(r.leads, lead.Clone())
	return nil
}

func (r *MemoryLeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneAll(r.leads), nil
}

func (r *MemoryLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := indexOf(r.leads, id)
	if i < 0 {
		return nil, entity.ErrLeadNotFound
	}
	return r.leads[i].Clone(), nil
}

func (r *MemoryLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) (*entity.Lead, error) {
	if !status.IsValid() {
		return nil, entity.ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.leads, id)
	if i < 0 {
		return nil, entity.ErrLeadNotFound
	}
	r.leads[i].Status = status
	return r.leads[i].Clone(), nil
}

func indexOf(leads []*entity.Lead, id string) int {
	for i, l := range leads {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(leads []*entity.Lead) []*entity.Lead {
	out := make([]*entity.Lead, len(leads))
	for i, l := range leads {
		out[i] = l.Clone()
	}
	return out
}
