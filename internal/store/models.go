package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID          string `gorm:"primaryKey"`
	Role        string `gorm:"not null"`
	CompanyID   string `gorm:"index"`
	DisplayName string
	Bio         string `gorm:"type:text"`
	PhotoURL    string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}

type CompanyModel struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	OwnerID   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type KnowledgeBaseModel struct {
	ID                string `gorm:"primaryKey"`
	Type              string `gorm:"not null;index"`
	UploadedBy        string `gorm:"not null;index"`
	CompanyID         string
	FileName          string `gorm:"not null"`
	FileSize          int64
	StorageURL        string
	StoragePath       string
	Status            string `gorm:"not null"`
	ErrorMessage      string
	Summary           string         `gorm:"type:text"`
	UsageGuide        string         `gorm:"type:text"`
	SummaryHistory    datatypes.JSON `gorm:"type:jsonb"`
	UsageGuideHistory datatypes.JSON `gorm:"type:jsonb"`
	ChunkCount        int
	PageCount         int
	Deleted           bool `gorm:"not null;default:false;index"`
	DeletedAt         *time.Time
	CreatedAt         time.Time `gorm:"not null;index"`
	UpdatedAt         time.Time `gorm:"not null"`
}

type KnowledgeChunkModel struct {
	ID              string    `gorm:"primaryKey"`
	KnowledgeBaseID string    `gorm:"not null;index"`
	ChunkIndex      int       `gorm:"not null"`
	Text            string    `gorm:"type:text;not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

type InterviewModel struct {
	ID                 string `gorm:"primaryKey"`
	ShareToken         string `gorm:"uniqueIndex;not null"`
	CompanyID          string `gorm:"index"`
	IntervieweeName    string
	IntervieweeCompany string
	IntervieweeTitle   string
	InterviewerName    string
	Objective          string `gorm:"type:text"`
	Purpose            string
	Category           string
	TargetAudience     string
	MediaType          string
	Transcript         datatypes.JSON `gorm:"type:jsonb"`
	Status             string         `gorm:"not null"`
	CreatedBy          string         `gorm:"index"`
	CreatedAt          time.Time      `gorm:"not null"`
	UpdatedAt          time.Time      `gorm:"not null"`
}

type ArticleModel struct {
	ID          string         `gorm:"primaryKey"`
	InterviewID string         `gorm:"index"`
	CompanyID   string         `gorm:"index"`
	AuthorID    string         `gorm:"not null;index"`
	Draft       datatypes.JSON `gorm:"type:jsonb"`
	Status      string         `gorm:"not null;index"`
	AIMetadata  datatypes.JSON `gorm:"type:jsonb"`
	Views       int64          `gorm:"not null;default:0"`
	CreatedAt   time.Time      `gorm:"not null;index"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

type CommentModel struct {
	ID             string `gorm:"primaryKey"`
	ArticleID      string `gorm:"not null;index"`
	UserID         string `gorm:"not null"`
	Content        string `gorm:"type:text;not null"`
	AuthorName     string
	AuthorPhotoURL string
	CreatedAt      time.Time `gorm:"not null;index"`
}

type FeedbackModel struct {
	ID          string `gorm:"primaryKey"`
	CompanyID   string `gorm:"not null;index"`
	InterviewID string `gorm:"index"`
	ArticleID   string `gorm:"index"`
	Source      string `gorm:"not null"`
	Type        string `gorm:"not null"`
	Message     string `gorm:"type:text;not null"`
	Context     string `gorm:"type:text"`
	Resolved    bool   `gorm:"not null;default:false"`
	CreatedBy   string `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

type SystemSettingModel struct {
	Key       string         `gorm:"primaryKey"`
	Data      datatypes.JSON `gorm:"type:jsonb"`
	UpdatedBy string
	UpdatedAt time.Time `gorm:"not null"`
}
