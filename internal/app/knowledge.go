package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bankisha/internal/authz"
	"bankisha/internal/domain"
	"bankisha/internal/store"
	"bankisha/internal/util"
)

const uploadURLExpiry = 5 * time.Minute

// PresignUpload issues a pre-signed PUT URL for a direct client upload.
// Keys are prefixed with a fresh UUID so repeated uploads of the same
// filename never collide.
func (s *Service) PresignUpload(ctx context.Context, filename, contentType string) (string, string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", "", fmt.Errorf("%w: filename required", ErrInvalid)
	}
	if strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return "", "", fmt.Errorf("%w: invalid filename", ErrInvalid)
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("uploads/%s-%s", uuid.NewString(), filename)
	url, err := s.objects.PresignPut(ctx, key, contentType, uploadURLExpiry)
	if err != nil {
		return "", "", fmt.Errorf("presign upload: %w", err)
	}
	return url, key, nil
}

// CreateKnowledgeInput carries the metadata of an already-uploaded file.
type CreateKnowledgeInput struct {
	Type        domain.KnowledgeType
	FileName    string
	FileSize    int64
	StorageURL  string
	StoragePath string
}

// CreateKnowledgeBase registers an uploaded file and triggers processing.
// Shared types (skill, info) are superAdmin only; user uploads inherit the
// caller's company.
func (s *Service) CreateKnowledgeBase(ctx context.Context, callerID string, input CreateKnowledgeInput) (string, error) {
	switch input.Type {
	case domain.KnowledgeSkill, domain.KnowledgeInfo:
		if _, err := s.requireRole(callerID, authz.Require(domain.RoleSuperAdmin)); err != nil {
			return "", err
		}
	case domain.KnowledgeUser:
	default:
		return "", fmt.Errorf("%w: unknown knowledge type %q", ErrInvalid, input.Type)
	}
	if strings.TrimSpace(input.FileName) == "" || strings.TrimSpace(input.StoragePath) == "" {
		return "", fmt.Errorf("%w: fileName and storagePath required", ErrInvalid)
	}

	kb := domain.KnowledgeBase{
		ID:          store.NewID(),
		Type:        input.Type,
		UploadedBy:  callerID,
		FileName:    strings.TrimSpace(input.FileName),
		FileSize:    input.FileSize,
		StorageURL:  strings.TrimSpace(input.StorageURL),
		StoragePath: strings.TrimSpace(input.StoragePath),
		Status:      domain.KnowledgeProcessing,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}
	if input.Type == domain.KnowledgeUser {
		if user, ok, err := s.store.GetUser(callerID); err != nil {
			return "", fmt.Errorf("load user: %w", err)
		} else if ok {
			kb.CompanyID = user.CompanyID
		}
	}
	if err := s.store.CreateKnowledgeBase(kb); err != nil {
		return "", fmt.Errorf("create knowledge base: %w", err)
	}

	// Best effort: the record stays in processing and can be re-triggered.
	if s.trigger != nil {
		if err := s.trigger.Trigger(ctx, kb.ID); err != nil {
			util.LoggerFromContext(ctx).Warn("processing trigger failed",
				slog.String("knowledgeBaseId", kb.ID), slog.Any("err", err))
		}
	}
	return kb.ID, nil
}

// ListKnowledgeBases lists non-deleted entries of one type. Shared types
// are superAdmin only; user entries are scoped to the caller.
func (s *Service) ListKnowledgeBases(ctx context.Context, callerID string, typ domain.KnowledgeType) ([]domain.KnowledgeBase, error) {
	filter := store.KnowledgeFilter{Type: typ}
	switch typ {
	case domain.KnowledgeSkill, domain.KnowledgeInfo:
		if _, err := s.requireRole(callerID, authz.Require(domain.RoleSuperAdmin)); err != nil {
			return nil, err
		}
	case domain.KnowledgeUser:
		filter.UploadedBy = callerID
	default:
		return nil, fmt.Errorf("%w: unknown knowledge type %q", ErrInvalid, typ)
	}
	list, err := s.store.ListKnowledgeBases(filter)
	if err != nil {
		return nil, fmt.Errorf("list knowledge bases: %w", err)
	}
	return list, nil
}

// RestoreKnowledgeContent restores a history version of the summary or
// usage guide. The current content is snapshotted as a new history entry
// before the overwrite, so a restore is itself undoable.
func (s *Service) RestoreKnowledgeContent(ctx context.Context, callerID, id string, kind domain.ContentKind, version int) (string, error) {
	if kind != domain.ContentSummary && kind != domain.ContentUsageGuide {
		return "", fmt.Errorf("%w: unknown content type %q", ErrInvalid, kind)
	}
	if version < 1 {
		return "", fmt.Errorf("%w: version must be positive", ErrInvalid)
	}
	kb, ok, err := s.store.GetKnowledgeBase(id)
	if err != nil {
		return "", fmt.Errorf("load knowledge base: %w", err)
	}
	if !ok || kb.Deleted {
		return "", fmt.Errorf("%w: knowledge base %s", ErrNotFound, id)
	}
	if err := s.authorizeKnowledgeManage(callerID, kb); err != nil {
		return "", err
	}
	restored, err := s.store.RestoreKnowledgeContent(id, kind, version)
	if err != nil {
		if errors.Is(err, domain.ErrVersionNotFound) || errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: version %d", ErrNotFound, version)
		}
		return "", fmt.Errorf("restore content: %w", err)
	}
	return restored.Content(kind), nil
}

const regenerateSystemPrompt = `You revise a derived text of a knowledge base according to user feedback.
Respond with the full revised text and nothing else, keeping the structure and language of the current text.`

var regenerateInstructions = map[string]string{
	"add":    "Keep the current text in full, then extend it according to the feedback. Do not remove or rewrite existing points.",
	"modify": "Revise the parts of the current text the feedback names. Keep everything else unchanged.",
	"remove": "Delete the parts of the current text the feedback names. Keep everything else unchanged.",
}

// RegenerateKnowledgeContent rewrites the summary or usage guide with the
// AI provider according to user feedback. The previous content is kept as
// a history version carrying the feedback, so the change is undoable via
// restore.
func (s *Service) RegenerateKnowledgeContent(ctx context.Context, callerID, id string, kind domain.ContentKind, feedback, feedbackMode string) (string, error) {
	if kind != domain.ContentSummary && kind != domain.ContentUsageGuide {
		return "", fmt.Errorf("%w: unknown content type %q", ErrInvalid, kind)
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return "", fmt.Errorf("%w: feedback required", ErrInvalid)
	}
	instruction, ok := regenerateInstructions[feedbackMode]
	if !ok {
		return "", fmt.Errorf("%w: unknown feedback mode %q", ErrInvalid, feedbackMode)
	}
	kb, ok, err := s.store.GetKnowledgeBase(id)
	if err != nil {
		return "", fmt.Errorf("load knowledge base: %w", err)
	}
	if !ok || kb.Deleted {
		return "", fmt.Errorf("%w: knowledge base %s", ErrNotFound, id)
	}
	if err := s.authorizeKnowledgeManage(callerID, kb); err != nil {
		return "", err
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "File: %s\n", kb.FileName)
	if kind == domain.ContentUsageGuide && kb.Summary != "" {
		prompt.WriteString("\nSummary of the file:\n")
		prompt.WriteString(kb.Summary)
		prompt.WriteString("\n")
	}
	prompt.WriteString("\nCurrent text:\n")
	prompt.WriteString(kb.Content(kind))
	prompt.WriteString("\n\nFeedback:\n")
	prompt.WriteString(feedback)
	prompt.WriteString("\n\nInstruction:\n")
	prompt.WriteString(instruction)

	newText, err := s.generator.GenerateText(ctx, regenerateSystemPrompt, prompt.String())
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrGenerationFailed, err)
	}
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return "", fmt.Errorf("%w: provider returned empty text", ErrGenerationFailed)
	}

	if _, err := s.store.ReviseKnowledgeContent(id, kind, newText, feedback, feedbackMode, callerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: knowledge base %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("revise content: %w", err)
	}
	return newText, nil
}

// DeleteKnowledgeBase soft-deletes an entry. The record and its history
// survive for audit; list operations exclude it.
func (s *Service) DeleteKnowledgeBase(ctx context.Context, callerID, id string) error {
	kb, ok, err := s.store.GetKnowledgeBase(id)
	if err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}
	if !ok || kb.Deleted {
		return fmt.Errorf("%w: knowledge base %s", ErrNotFound, id)
	}
	if err := s.authorizeKnowledgeManage(callerID, kb); err != nil {
		return err
	}
	if err := s.store.SoftDeleteKnowledgeBase(id); err != nil {
		return fmt.Errorf("delete knowledge base: %w", err)
	}
	// Best effort: the soft-deleted record keeps the path, so cleanup can
	// be retried later if removal fails.
	if s.objects != nil && kb.StoragePath != "" {
		if err := s.objects.Delete(ctx, kb.StoragePath); err != nil {
			util.LoggerFromContext(ctx).Warn("object cleanup failed",
				slog.String("knowledgeBaseId", kb.ID), slog.String("path", kb.StoragePath), slog.Any("err", err))
		}
	}
	return nil
}

// authorizeKnowledgeManage permits superAdmin on shared types and the
// uploader (or superAdmin) on user uploads.
func (s *Service) authorizeKnowledgeManage(callerID string, kb domain.KnowledgeBase) error {
	role, err := s.RoleOf(callerID)
	if err != nil {
		return err
	}
	if role == domain.RoleSuperAdmin {
		return nil
	}
	if kb.Type == domain.KnowledgeUser && kb.UploadedBy == callerID {
		return nil
	}
	return ErrForbidden
}
