package app

import (
	"context"
	"fmt"
	"strings"

	"bankisha/internal/domain"
	"bankisha/internal/store"
)

// FeedbackInput carries a feedback submission.
type FeedbackInput struct {
	CompanyID   string
	InterviewID string
	ArticleID   string
	Source      string
	Type        string
	Message     string
	Context     string
}

// CreateFeedback stores a feedback entry, unresolved by default.
func (s *Service) CreateFeedback(ctx context.Context, callerID string, input FeedbackInput) (string, error) {
	if strings.TrimSpace(input.CompanyID) == "" ||
		strings.TrimSpace(input.Source) == "" ||
		strings.TrimSpace(input.Type) == "" ||
		strings.TrimSpace(input.Message) == "" {
		return "", fmt.Errorf("%w: companyId, source, type and message required", ErrInvalid)
	}
	fb := domain.Feedback{
		ID:          store.NewID(),
		CompanyID:   strings.TrimSpace(input.CompanyID),
		InterviewID: strings.TrimSpace(input.InterviewID),
		ArticleID:   strings.TrimSpace(input.ArticleID),
		Source:      strings.TrimSpace(input.Source),
		Type:        strings.TrimSpace(input.Type),
		Message:     input.Message,
		Context:     input.Context,
		Resolved:    false,
		CreatedBy:   callerID,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateFeedback(fb); err != nil {
		return "", fmt.Errorf("create feedback: %w", err)
	}
	return fb.ID, nil
}
