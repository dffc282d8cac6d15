package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/xavierca1/visa-leads/internal/entity"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "createdAt"
	OrderAsc     = "asc"
	OrderDesc    = "desc"
)

// leadLess compares two leads on one field under its natural ordering.
var leadLess = map[string]func(a, b *entity.Lead) bool{
	"id":                   func(a, b *entity.Lead) bool { return a.ID < b.ID },
	"firstName":            func(a, b *entity.Lead) bool { return a.FirstName < b.FirstName },
	"lastName":             func(a, b *entity.Lead) bool { return a.LastName < b.LastName },
	"email":                func(a, b *entity.Lead) bool { return a.Email < b.Email },
	"countryOfCitizenship": func(a, b *entity.Lead) bool { return a.CountryOfCitizenship < b.CountryOfCitizenship },
	"linkedin":             func(a, b *entity.Lead) bool { return a.LinkedIn < b.LinkedIn },
	"status":               func(a, b *entity.Lead) bool { return a.Status < b.Status },
	"createdAt":            func(a, b *entity.Lead) bool { return a.CreatedAt.Before(b.CreatedAt) },
}

type ListLeadsUseCase struct {
	Repo entity.LeadRepository
}

func NewListLeadsUseCase(repo entity.LeadRepository) *ListLeadsUseCase {
	return &ListLeadsUseCase{Repo: repo}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, input ListLeadsInput) (*ListLeadsOutput, error) {
	if input.Page == 0 {
		input.Page = DefaultPage
	}
	if input.Limit == 0 {
		input.Limit = DefaultLimit
	}
	if input.Sort == "" {
		input.Sort = DefaultSort
	}
	if input.Order == "" {
		input.Order = OrderAsc
	}

	if input.Page < 1 {
		return nil, invalidArgument("page must be a positive integer")
	}
	if input.Limit < 1 || input.Limit > MaxLimit {
		return nil, invalidArgument("limit must be between 1 and 100")
	}
	less, ok := leadLess[input.Sort]
	if !ok {
		return nil, invalidArgument("invalid sort field: " + input.Sort)
	}
	if input.Order != OrderAsc && input.Order != OrderDesc {
		return nil, invalidArgument("order must be asc or desc")
	}
	if input.Status != "" && !entity.LeadStatus(input.Status).IsValid() {
		return nil, invalidArgument("Invalid status")
	}

	leads, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}

	leads = filterLeads(leads, entity.LeadStatus(input.Status), input.Query)

	if input.Order == OrderDesc {
		sort.SliceStable(leads, func(i, j int) bool { return less(leads[j], leads[i]) })
	} else {
		sort.SliceStable(leads, func(i, j int) bool { return less(leads[i], leads[j]) })
	}

	total := len(leads)
	return &ListLeadsOutput{
		Leads:       paginate(leads, input.Page, input.Limit),
		TotalLeads:  total,
		CurrentPage: input.Page,
		TotalPages:  (total + input.Limit - 1) / input.Limit,
	}, nil
}

// filterLeads applies the admin console's status and free-text filters over
// the whole collection, before pagination.
func filterLeads(leads []*entity.Lead, status entity.LeadStatus, query string) []*entity.Lead {
	query = strings.ToLower(strings.TrimSpace(query))
	if status == "" && query == "" {
		return leads
	}

	out := make([]*entity.Lead, 0, len(leads))
	for _, l := range leads {
		if status != "" && l.Status != status {
			continue
		}
		if query != "" && !matchesQuery(l, query) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesQuery(l *entity.Lead, query string) bool {
	fullName := strings.ToLower(l.FirstName + " " + l.LastName)
	return strings.Contains(fullName, query) ||
		strings.Contains(strings.ToLower(l.Email), query) ||
		strings.Contains(strings.ToLower(l.CountryOfCitizenship), query)
}

// paginate returns leads[(page-1)*limit : page*limit], clamped. Pages past
// the end are empty, never nil.
func paginate(leads []*entity.Lead, page, limit int) []*entity.Lead {
	if page-1 > len(leads)/limit {
		return []*entity.Lead{}
	}
	start := (page - 1) * limit
	if start >= len(leads) {
		return []*entity.Lead{}
	}
	end := start + limit
	if end > len(leads) {
		end = len(leads)
	}
	return leads[start:end]
}

func invalidArgument(msg string) *DomainError {
	return &DomainError{Code: CodeInvalidArgument, Message: msg}
}
