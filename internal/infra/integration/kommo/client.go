package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/infra/queue"
)

const DefaultBaseURL = "https://api-c.kommo.com/api/v4"

// Client pushes submitted leads into the Kommo CRM pipeline.
type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(apiToken, baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiToken:   apiToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (c *Client) Name() string {
	return "kommo"
}

func (c *Client) NotifyLeadSubmitted(ctx context.Context, event queue.LeadSubmittedEvent) error {
	_, err := c.CreateLead(ctx, CreateLeadInput{
		FirstName:       event.FirstName,
		LastName:        event.LastName,
		Email:           event.Email,
		Country:         event.CountryOfCitizenship,
		LinkedIn:        event.LinkedIn,
		VisasInterested: event.VisasInterested,
		ResumeURL:       event.ResumeURL,
		OpenInput:       event.OpenInput,
		ExternalID:      event.LeadID,
	})
	return err
}

func (c *Client) CreateLead(ctx context.Context, input CreateLeadInput) (int, error) {
	if c.apiToken == "" {
		return 0, errors.New("kommo: API token not configured")
	}

	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("kommo: contact: %w", err)
	}

	tags := []map[string]any{{"name": "web_form"}}
	for _, v := range input.VisasInterested {
		tags = append(tags, map[string]any{"name": v})
	}

	leadData := []map[string]any{
		{
			"name": fmt.Sprintf("%s %s - %s", input.FirstName, input.LastName, strings.Join(input.VisasInterested, ", ")),
			"_embedded": map[string]any{
				"tags":     tags,
				"contacts": []map[string]any{{"id": contactID}},
			},
		},
	}

	var result embeddedIDs
	if err := c.do(ctx, http.MethodPost, "/leads", leadData, &result); err != nil {
		return 0, fmt.Errorf("kommo: create lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, errors.New("kommo: lead not created")
	}

	leadID := result.Embedded.Leads[0].ID
	c.log.Info().Int("kommo_lead_id", leadID).Str("lead_id", input.ExternalID).Msg("lead synced to Kommo")

	if err := c.addNote(ctx, leadID, input); err != nil {
		// The lead exists in the CRM already; a missing note is not worth a redelivery.
		c.log.Warn().Err(err).Int("kommo_lead_id", leadID).Msg("failed to attach note")
	}

	return leadID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, input CreateLeadInput) (int, error) {
	var found embeddedIDs
	err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(input.Email), nil, &found)
	if err == nil && len(found.Embedded.Contacts) > 0 {
		return found.Embedded.Contacts[0].ID, nil
	}

	contactData := []map[string]any{
		{
			"first_name": input.FirstName,
			"last_name":  input.LastName,
			"custom_fields_values": []map[string]any{
				{
					"field_code": "EMAIL",
					"values":     []map[string]any{{"value": input.Email, "enum_code": "WORK"}},
				},
			},
		},
	}

	var created embeddedIDs
	if err := c.do(ctx, http.MethodPost, "/contacts", contactData, &created); err != nil {
		return 0, err
	}
	if len(created.Embedded.Contacts) == 0 {
		return 0, errors.New("contact id missing from response")
	}
	return created.Embedded.Contacts[0].ID, nil
}

func (c *Client) addNote(ctx context.Context, leadID int, input CreateLeadInput) error {
	text := fmt.Sprintf("Citizenship: %s\nLinkedIn: %s\nResume: %s\n\n%s",
		input.Country, input.LinkedIn, input.ResumeURL, input.OpenInput)

	notes := []map[string]any{
		{"note_type": "common", "params": map[string]any{"text": text}},
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/leads/%d/notes", leadID), notes, nil)
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
// Kommo answers 204 on an empty contact search.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
