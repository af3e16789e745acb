package store

import (
	"encoding/json"
	"errors"

	"bankisha/internal/domain"
)

// ErrNotFound reports a referenced record that does not exist.
var ErrNotFound = errors.New("record not found")

// UserUpdate carries a partial-merge user update; nil fields are untouched.
type UserUpdate struct {
	DisplayName *string
	Bio         *string
	PhotoURL    *string
	CompanyID   *string
	Role        *domain.UserRole
}

// KnowledgeFilter scopes a knowledge base listing. Soft-deleted records are
// always excluded at the query level.
type KnowledgeFilter struct {
	Type       domain.KnowledgeType
	UploadedBy string
}

// ProcessedKnowledge is the result of a completed file-processing run.
type ProcessedKnowledge struct {
	Summary    string
	UsageGuide string
	ChunkCount int
	PageCount  int
}

// Store defines persistence operations for all document collections.
type Store interface {
	// users
	GetUser(id string) (domain.User, bool, error)
	SaveUser(domain.User) error
	UpdateUser(id string, upd UserUpdate) (domain.User, error)

	// companies
	GetCompany(id string) (domain.Company, bool, error)
	FindCompanyByName(name string) (domain.Company, bool, error)
	CreateCompany(domain.Company) error

	// knowledge bases
	CreateKnowledgeBase(domain.KnowledgeBase) error
	GetKnowledgeBase(id string) (domain.KnowledgeBase, bool, error)
	ListKnowledgeBases(filter KnowledgeFilter) ([]domain.KnowledgeBase, error)
	SetKnowledgeStatus(id string, status domain.KnowledgeStatus, errMsg string) error
	SetKnowledgeProcessed(id string, result ProcessedKnowledge) error
	SoftDeleteKnowledgeBase(id string) error
	RestoreKnowledgeContent(id string, kind domain.ContentKind, version int) (domain.KnowledgeBase, error)
	ReviseKnowledgeContent(id string, kind domain.ContentKind, newContent, feedback, feedbackType, revisedBy string) (domain.KnowledgeBase, error)
	ReplaceChunks(knowledgeBaseID string, chunks []domain.KnowledgeChunk) error
	ListChunks(knowledgeBaseID string, limit int) ([]domain.KnowledgeChunk, error)

	// interviews
	CreateInterview(domain.Interview) error
	GetInterview(id string) (domain.Interview, bool, error)
	GetInterviewByShareToken(token string) (domain.Interview, bool, error)
	AppendTranscript(id string, msg domain.TranscriptMessage) error
	SetInterviewStatus(id string, status domain.InterviewStatus) error

	// articles
	CreateArticle(domain.Article) error
	GetArticle(id string) (domain.Article, bool, error)
	SaveArticleDraft(id string, draft domain.ArticleDraft) error
	SetArticleMetadata(id string, metadata json.RawMessage) error
	SetArticleStatus(id string, status domain.ArticleStatus) error
	ListPublicArticles() ([]domain.Article, error)
	IncrementArticleViews(id string) (int64, error)

	// comments
	CreateComment(domain.Comment) error
	ListComments(articleID string) ([]domain.Comment, error)

	// feedback
	CreateFeedback(domain.Feedback) error

	// system settings
	GetSystemSetting(key string) (domain.SystemSetting, bool, error)
	MergeSystemSetting(key string, data map[string]any, updatedBy string) error
}

// SessionStore persists session tokens issued after a verified sign-in.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
