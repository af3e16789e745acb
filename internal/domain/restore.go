package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrVersionNotFound reports a restore request for a history version that
// does not exist.
var ErrVersionNotFound = errors.New("content version not found")

// ReviseContent overwrites the live field selected by kind with newContent.
// The pre-revision content is snapshotted as a new history entry first, so
// no content is lost; the snapshot carries the feedback that drove the
// change. The next version number is history length + 1; callers must hold
// the record exclusively (row lock or mutex) while applying this.
func ReviseContent(kb *KnowledgeBase, kind ContentKind, newContent, feedback, feedbackType, revisedBy string, now time.Time) {
	snapshot := ContentVersion{
		Version:      len(kb.History(kind)) + 1,
		Content:      kb.Content(kind),
		Feedback:     feedback,
		FeedbackType: feedbackType,
		CreatedAt:    now,
		CreatedBy:    revisedBy,
	}
	if kind == ContentUsageGuide {
		kb.UsageGuideHistory = append(kb.UsageGuideHistory, snapshot)
		kb.UsageGuide = newContent
	} else {
		kb.SummaryHistory = append(kb.SummaryHistory, snapshot)
		kb.Summary = newContent
	}
	kb.UpdatedAt = now
}

// RestoreContent rewrites kb so the live field selected by kind equals the
// stored content of the numbered history version, snapshotting the current
// content via ReviseContent so a restore is itself undoable.
func RestoreContent(kb *KnowledgeBase, kind ContentKind, version int, now time.Time) (string, error) {
	restored := ""
	found := false
	for _, v := range kb.History(kind) {
		if v.Version == version {
			restored = v.Content
			found = true
			break
		}
	}
	if !found {
		return "", ErrVersionNotFound
	}
	ReviseContent(kb, kind, restored, fmt.Sprintf("restored from v%d", version), "modify", "restore-action", now)
	return restored, nil
}
