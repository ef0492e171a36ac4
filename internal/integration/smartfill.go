// Package integration holds adapters for external services: the
// language-model smart-fill parser and the outbound webhook notifier's
// HTTP plumbing live behind narrow interfaces so the rest of the desk
// never sees a transport.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/opsdesk/opsdesk/internal/core"
	"github.com/opsdesk/opsdesk/pkg/models"
)

// SmartFill turns free text into a best-effort partial incident draft.
// The boolean result is the whole error story: any transport, auth, or
// parse failure reports false, identical to "no suggestions available".
type SmartFill interface {
	Parse(ctx context.Context, freeText string, referenceDate time.Time) (models.IncidentDraft, bool)
}

// geminiSmartFill calls the Gemini generateContent REST endpoint with a
// JSON response schema so the model's output is machine-parseable.
type geminiSmartFill struct {
	cfg    core.SmartFillConfig
	client *http.Client
}

// NewGeminiSmartFill creates a SmartFill backed by the configured Gemini
// model. The API key is read from the configured environment variable at
// call time, not at construction.
func NewGeminiSmartFill(cfg core.SmartFillConfig) SmartFill {
	return &geminiSmartFill{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string      `json:"responseMimeType"`
	ResponseSchema   *jsonSchema `json:"responseSchema,omitempty"`
}

type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Properties  map[string]*jsonSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// incidentSuggestion is the shape the response schema constrains the model
// to. Responsible is deliberately absent: assignment stays a human call.
type incidentSuggestion struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Type     string `json:"type"`
	Subject  string `json:"subject"`
	Priority string `json:"priority"`
}

func incidentSchema() *jsonSchema {
	types := make([]string, len(models.IncidentTypes))
	for i, t := range models.IncidentTypes {
		types[i] = string(t)
	}
	priorities := make([]string, len(models.Priorities))
	for i, p := range models.Priorities {
		priorities[i] = string(p)
	}
	return &jsonSchema{
		Type: "OBJECT",
		Properties: map[string]*jsonSchema{
			"name": {
				Type:        "STRING",
				Description: "A very short name (2-4 words) identifying the incident",
			},
			"date": {
				Type:        "STRING",
				Description: "Date in YYYY-MM-DD format",
			},
			"type": {
				Type:        "STRING",
				Enum:        types,
				Description: "The type of incident based on the description",
			},
			"subject": {
				Type:        "STRING",
				Description: "A brief summary of the incident",
			},
			"priority": {
				Type:        "STRING",
				Enum:        priorities,
				Description: "Infer priority from urgency words",
			},
		},
		Required: []string{"name", "date", "type", "subject", "priority"},
	}
}

// Parse sends the free text to the model and maps the structured reply
// onto a draft. It never returns an error: every failure mode collapses
// into ok=false so the caller's existing field values stay untouched.
func (g *geminiSmartFill) Parse(ctx context.Context, freeText string, referenceDate time.Time) (models.IncidentDraft, bool) {
	if strings.TrimSpace(freeText) == "" {
		return models.IncidentDraft{}, false
	}
	apiKey := os.Getenv(g.cfg.APIKeyEnv)
	if apiKey == "" {
		return models.IncidentDraft{}, false
	}

	prompt := fmt.Sprintf(
		"Analyze the following text and extract the data for a new incident. Today is %s.\n\nText: %q",
		referenceDate.Format(core.DateLayout), freeText,
	)
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   incidentSchema(),
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return models.IncidentDraft{}, false
	}

	url := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimSuffix(g.cfg.Endpoint, "/"), g.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.IncidentDraft{}, false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return models.IncidentDraft{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.IncidentDraft{}, false
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.IncidentDraft{}, false
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return models.IncidentDraft{}, false
	}

	var suggestion incidentSuggestion
	if err := json.Unmarshal([]byte(parsed.Candidates[0].Content.Parts[0].Text), &suggestion); err != nil {
		return models.IncidentDraft{}, false
	}
	return draftFromSuggestion(suggestion), true
}

// draftFromSuggestion maps the model reply onto a draft, dropping values
// that fail validation rather than failing the whole suggestion. The
// responsible field is policy-fixed to Unassigned and never taken from
// the model.
func draftFromSuggestion(s incidentSuggestion) models.IncidentDraft {
	draft := models.IncidentDraft{
		Name:    strings.TrimSpace(s.Name),
		Subject: strings.TrimSpace(s.Subject),
	}
	if _, err := time.Parse(core.DateLayout, s.Date); err == nil {
		draft.Date = s.Date
	}
	if t := models.IncidentType(s.Type); models.ValidType(t) {
		draft.Type = t
	}
	if p := models.Priority(s.Priority); models.ValidPriority(p) {
		draft.Priority = p
	}
	return draft
}
