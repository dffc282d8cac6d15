package kommo

type CreateLeadInput struct {
	FirstName       string
	LastName        string
	Email           string
	Country         string
	LinkedIn        string
	VisasInterested []string
	ResumeURL       string
	OpenInput       string
	ExternalID      string
}

type embeddedIDs struct {
	Embedded struct {
		Leads []struct {
			ID int `json:"id"`
		} `json:"leads"`
		Contacts []struct {
			ID int `json:"id"`
		} `json:"contacts"`
	} `json:"_embedded"`
}
