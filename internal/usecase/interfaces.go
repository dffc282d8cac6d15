package usecase

import (
	"context"

	"github.com/xavierca1/visa-leads/internal/entity"
)

// LeadEventPublisher announces a stored lead to downstream consumers.
type LeadEventPublisher interface {
	PublishLeadSubmitted(ctx context.Context, lead *entity.Lead) error
}

// LeadMetrics receives counters from the use cases. A nil value disables them.
type LeadMetrics interface {
	LeadSubmitted()
	LeadStatusChanged(status entity.LeadStatus)
	LeadEventFailed()
}
