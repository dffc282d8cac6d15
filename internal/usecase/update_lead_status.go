package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/xavierca1/visa-leads/internal/entity"
)

// UpdateLeadStatusUseCase applies a triage transition. Both directions are
// allowed: PENDING <-> REACHED_OUT.
type UpdateLeadStatusUseCase struct {
	Repo    entity.LeadRepository
	Metrics LeadMetrics
	Log     zerolog.Logger
}

func NewUpdateLeadStatusUseCase(repo entity.LeadRepository, metrics LeadMetrics, log zerolog.Logger) *UpdateLeadStatusUseCase {
	return &UpdateLeadStatusUseCase{Repo: repo, Metrics: metrics, Log: log}
}

func (uc *UpdateLeadStatusUseCase) Execute(ctx context.Context, input UpdateLeadStatusInput) (*UpdateLeadStatusOutput, error) {
	status := entity.LeadStatus(input.Status)
	if !status.IsValid() {
		return nil, invalidArgument("Invalid status")
	}

	lead, err := uc.Repo.UpdateStatus(ctx, input.ID, status)
	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		return nil, &DomainError{Code: CodeNotFound, Message: "Lead not found"}
	case errors.Is(err, entity.ErrInvalidStatus):
		return nil, invalidArgument("Invalid status")
	case err != nil:
		return nil, storageError(err)
	}

	uc.Log.Info().Str("lead_id", lead.ID).Str("status", string(lead.Status)).Msg("lead status updated")
	if uc.Metrics != nil {
		uc.Metrics.LeadStatusChanged(lead.Status)
	}

	return &UpdateLeadStatusOutput{
		Message: "Lead status updated successfully",
		Lead:    lead,
	}, nil
}

type GetLeadUseCase struct {
	Repo entity.LeadRepository
}

func NewGetLeadUseCase(repo entity.LeadRepository) *GetLeadUseCase {
	return &GetLeadUseCase{Repo: repo}
}

func (uc *GetLeadUseCase) Execute(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: CodeNotFound, Message: "Lead not found"}
	}
	if err != nil {
		return nil, storageError(err)
	}
	return lead, nil
}
