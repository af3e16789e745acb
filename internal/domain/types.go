package domain

import (
	"encoding/json"
	"time"
)

// UserRole is the coarse privilege level attached to a user record.
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "superAdmin"
)

// KnowledgeType classifies a knowledge base entry.
type KnowledgeType string

const (
	KnowledgeSkill KnowledgeType = "skill"
	KnowledgeInfo  KnowledgeType = "info"
	KnowledgeUser  KnowledgeType = "user"
)

// KnowledgeStatus tracks the processing progression of an uploaded file.
type KnowledgeStatus string

const (
	KnowledgeProcessing KnowledgeStatus = "processing"
	KnowledgeReady      KnowledgeStatus = "ready"
	KnowledgeFailed     KnowledgeStatus = "failed"
)

// InterviewStatus tracks the generative pipeline of an interview.
type InterviewStatus string

const (
	InterviewCollecting InterviewStatus = "collecting"
	InterviewDraftReady InterviewStatus = "draftReady"
)

// ArticleStatus controls public visibility of an article.
type ArticleStatus string

const (
	ArticleStatusDraft  ArticleStatus = "draft"
	ArticleStatusPublic ArticleStatus = "public"
)

// ContentKind selects which derived text field of a knowledge base an
// operation targets.
type ContentKind string

const (
	ContentSummary    ContentKind = "summary"
	ContentUsageGuide ContentKind = "usageGuide"
)

type User struct {
	ID          string    `json:"id"`
	Role        UserRole  `json:"role"`
	CompanyID   string    `json:"companyId,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContentVersion is one entry of a knowledge base content history.
type ContentVersion struct {
	Version      int       `json:"version"`
	Content      string    `json:"content"`
	Feedback     string    `json:"feedback,omitempty"`
	FeedbackType string    `json:"feedbackType,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedBy    string    `json:"createdBy"`
}

type KnowledgeBase struct {
	ID                string           `json:"id"`
	Type              KnowledgeType    `json:"type"`
	UploadedBy        string           `json:"uploadedBy"`
	CompanyID         string           `json:"companyId,omitempty"`
	FileName          string           `json:"fileName"`
	FileSize          int64            `json:"fileSize"`
	StorageURL        string           `json:"storageUrl"`
	StoragePath       string           `json:"storagePath"`
	Status            KnowledgeStatus  `json:"status"`
	ErrorMessage      string           `json:"errorMessage,omitempty"`
	Summary           string           `json:"summary,omitempty"`
	UsageGuide        string           `json:"usageGuide,omitempty"`
	SummaryHistory    []ContentVersion `json:"summaryHistory,omitempty"`
	UsageGuideHistory []ContentVersion `json:"usageGuideHistory,omitempty"`
	ChunkCount        int              `json:"chunkCount,omitempty"`
	PageCount         int              `json:"pageCount,omitempty"`
	Deleted           bool             `json:"-"`
	DeletedAt         *time.Time       `json:"deletedAt,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// Content returns the live derived text field selected by kind.
func (kb *KnowledgeBase) Content(kind ContentKind) string {
	if kind == ContentUsageGuide {
		return kb.UsageGuide
	}
	return kb.Summary
}

// History returns the version history selected by kind.
func (kb *KnowledgeBase) History(kind ContentKind) []ContentVersion {
	if kind == ContentUsageGuide {
		return kb.UsageGuideHistory
	}
	return kb.SummaryHistory
}

// KnowledgeChunk is one extracted text fragment of a processed file.
type KnowledgeChunk struct {
	ID              string    `json:"id"`
	KnowledgeBaseID string    `json:"knowledgeBaseId"`
	Index           int       `json:"chunkIndex"`
	Text            string    `json:"text"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TranscriptMessage is one role-tagged entry of an interview transcript.
type TranscriptMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Interview struct {
	ID                 string              `json:"id"`
	ShareToken         string              `json:"-"`
	CompanyID          string              `json:"companyId,omitempty"`
	IntervieweeName    string              `json:"intervieweeName,omitempty"`
	IntervieweeCompany string              `json:"intervieweeCompany,omitempty"`
	IntervieweeTitle   string              `json:"intervieweeTitle,omitempty"`
	InterviewerName    string              `json:"interviewerName,omitempty"`
	Objective          string              `json:"objective,omitempty"`
	Purpose            string              `json:"interviewPurpose,omitempty"`
	Category           string              `json:"category,omitempty"`
	TargetAudience     string              `json:"targetAudience,omitempty"`
	MediaType          string              `json:"mediaType,omitempty"`
	Transcript         []TranscriptMessage `json:"transcript"`
	Status             InterviewStatus     `json:"status"`
	CreatedBy          string              `json:"createdBy"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// ArticleSection is one heading/body block of a draft article.
type ArticleSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// ArticleDraft is the generated draft content of an article.
type ArticleDraft struct {
	Title    string           `json:"title"`
	Lead     string           `json:"lead"`
	Sections []ArticleSection `json:"sections"`
}

type Article struct {
	ID          string          `json:"id"`
	InterviewID string          `json:"interviewId,omitempty"`
	CompanyID   string          `json:"companyId,omitempty"`
	AuthorID    string          `json:"authorId"`
	Draft       *ArticleDraft   `json:"draftArticle,omitempty"`
	Status      ArticleStatus   `json:"status"`
	AIMetadata  json.RawMessage `json:"aiMetadata,omitempty"`
	Views       int64           `json:"views"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CommentAuthor is the display identity frozen into a comment when it is
// posted, so later profile edits do not rewrite published threads.
type CommentAuthor struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Comment is one reader comment on a published article.
type Comment struct {
	ID        string        `json:"id"`
	ArticleID string        `json:"articleId"`
	UserID    string        `json:"userId"`
	Content   string        `json:"content"`
	Author    CommentAuthor `json:"author"`
	CreatedAt time.Time     `json:"createdAt"`
}

type Feedback struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	InterviewID string    `json:"interviewId,omitempty"`
	ArticleID   string    `json:"articleId,omitempty"`
	Source      string    `json:"source"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	Resolved    bool      `json:"resolved"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SystemSetting struct {
	Key       string         `json:"key"`
	Data      map[string]any `json:"data"`
	UpdatedBy string         `json:"updatedBy,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
