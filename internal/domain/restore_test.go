package domain

import (
	"errors"
	"testing"
	"time"
)

func testKnowledgeBase() *KnowledgeBase {
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return &KnowledgeBase{
		ID:      "kb1",
		Type:    KnowledgeSkill,
		Summary: "current summary",
		SummaryHistory: []ContentVersion{
			{Version: 1, Content: "first summary", CreatedAt: created, CreatedBy: "processor"},
			{Version: 2, Content: "second summary", CreatedAt: created.Add(time.Hour), CreatedBy: "user-1"},
		},
		UpdatedAt: created.Add(time.Hour),
	}
}

func TestRestoreContentOverwritesLiveField(t *testing.T) {
	kb := testKnowledgeBase()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	restored, err := RestoreContent(kb, ContentSummary, 1, now)
	if err != nil {
		t.Fatalf("RestoreContent: %v", err)
	}
	if restored != "first summary" {
		t.Fatalf("restored content = %q, want %q", restored, "first summary")
	}
	if kb.Summary != "first summary" {
		t.Fatalf("live summary = %q, want restored content", kb.Summary)
	}
	if !kb.UpdatedAt.Equal(now) {
		t.Fatalf("UpdatedAt = %v, want %v", kb.UpdatedAt, now)
	}
}

func TestRestoreContentSnapshotsCurrentVersion(t *testing.T) {
	kb := testKnowledgeBase()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := RestoreContent(kb, ContentSummary, 1, now); err != nil {
		t.Fatalf("RestoreContent: %v", err)
	}
	if len(kb.SummaryHistory) != 3 {
		t.Fatalf("history length = %d, want 3", len(kb.SummaryHistory))
	}
	snap := kb.SummaryHistory[2]
	if snap.Version != 3 {
		t.Errorf("snapshot version = %d, want 3", snap.Version)
	}
	if snap.Content != "current summary" {
		t.Errorf("snapshot content = %q, want pre-restore content", snap.Content)
	}
	if snap.Feedback != "restored from v1" {
		t.Errorf("snapshot feedback = %q", snap.Feedback)
	}
	if snap.FeedbackType != "modify" {
		t.Errorf("snapshot feedbackType = %q", snap.FeedbackType)
	}
	if snap.CreatedBy != "restore-action" {
		t.Errorf("snapshot createdBy = %q", snap.CreatedBy)
	}
}

func TestReviseContentSnapshotsWithFeedback(t *testing.T) {
	kb := testKnowledgeBase()
	now := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)

	ReviseContent(kb, ContentSummary, "revised summary", "add a pricing section", "add", "user-2", now)

	if kb.Summary != "revised summary" {
		t.Fatalf("live summary = %q", kb.Summary)
	}
	if len(kb.SummaryHistory) != 3 {
		t.Fatalf("history length = %d, want 3", len(kb.SummaryHistory))
	}
	snap := kb.SummaryHistory[2]
	if snap.Version != 3 || snap.Content != "current summary" {
		t.Errorf("snapshot = %+v, want pre-revision content at v3", snap)
	}
	if snap.Feedback != "add a pricing section" || snap.FeedbackType != "add" || snap.CreatedBy != "user-2" {
		t.Errorf("snapshot attribution = %q/%q/%q", snap.Feedback, snap.FeedbackType, snap.CreatedBy)
	}
	if !kb.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", kb.UpdatedAt, now)
	}
}

func TestRestoreContentUnknownVersion(t *testing.T) {
	kb := testKnowledgeBase()
	if _, err := RestoreContent(kb, ContentSummary, 9, time.Now()); !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("err = %v, want ErrVersionNotFound", err)
	}
	if len(kb.SummaryHistory) != 2 {
		t.Fatalf("history mutated on failed restore")
	}
}

func TestRestoreContentUsageGuide(t *testing.T) {
	kb := testKnowledgeBase()
	kb.UsageGuide = "current guide"
	kb.UsageGuideHistory = []ContentVersion{{Version: 1, Content: "old guide"}}

	restored, err := RestoreContent(kb, ContentUsageGuide, 1, time.Now())
	if err != nil {
		t.Fatalf("RestoreContent: %v", err)
	}
	if restored != "old guide" || kb.UsageGuide != "old guide" {
		t.Fatalf("usage guide not restored, got %q", kb.UsageGuide)
	}
	if kb.Summary != "current summary" {
		t.Fatalf("summary touched by usage guide restore")
	}
}
