package usecase

import "github.com/xavierca1/visa-leads/internal/entity"

// SubmitLeadInput is the normalized public form submission.
type SubmitLeadInput struct {
	FirstName            string
	LastName             string
	Email                string
	CountryOfCitizenship string
	LinkedIn             string
	VisasInterested      []string
	OpenInput            string
	ResumeFileName       string
}

type SubmitLeadOutput struct {
	Message string       `json:"message"`
	Lead    *entity.Lead `json:"lead"`
}

type ListLeadsInput struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Status string
	Query  string
}

type ListLeadsOutput struct {
	Leads       []*entity.Lead `json:"leads"`
	TotalLeads  int            `json:"totalLeads"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
}

type UpdateLeadStatusInput struct {
	ID     string
	Status string
}

type UpdateLeadStatusOutput struct {
	Message string       `json:"message"`
	Lead    *entity.Lead `json:"lead"`
}
