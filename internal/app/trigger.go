package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bankisha/internal/servicetoken"
)

// ProcessTrigger fires the internal processing endpoint for a freshly
// created knowledge base. Calls are best effort: the caller logs and
// swallows failures, processing can be re-triggered manually.
type ProcessTrigger struct {
	endpoint   string
	audience   string
	signer     *servicetoken.Signer
	httpClient *http.Client
}

// NewProcessTrigger builds a trigger client for the given endpoint URL.
func NewProcessTrigger(endpoint, audience string, signer *servicetoken.Signer) (*ProcessTrigger, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("process trigger endpoint required")
	}
	if signer == nil {
		return nil, fmt.Errorf("process trigger requires a token signer")
	}
	return &ProcessTrigger{
		endpoint:   endpoint,
		audience:   audience,
		signer:     signer,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Trigger posts the knowledge base id to the processing endpoint.
func (t *ProcessTrigger) Trigger(ctx context.Context, knowledgeBaseID string) error {
	token, err := t.signer.Sign(t.audience)
	if err != nil {
		return fmt.Errorf("sign service token: %w", err)
	}
	body, err := json.Marshal(map[string]string{"knowledgeBaseId": knowledgeBaseID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trigger processing: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("trigger processing: status %d", resp.StatusCode)
	}
	return nil
}
