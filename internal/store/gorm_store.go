package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"bankisha/internal/domain"
)

const migrateLockID int64 = 48210657

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock
// so concurrent instances do not race each other.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&UserModel{},
			&CompanyModel{},
			&KnowledgeBaseModel{},
			&KnowledgeChunkModel{},
			&InterviewModel{},
			&ArticleModel{},
			&CommentModel{},
			&FeedbackModel{},
			&SystemSettingModel{},
		)
	}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// GetUser returns a user by ID.
func (s *GormStore) GetUser(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "company_id", "display_name", "bio", "photo_url", "updated_at"}),
	}).Create(&model).Error
}

// UpdateUser applies a partial-merge update, creating the record with the
// lowest-privilege role when it does not exist yet. Unset fields are left
// untouched; the update timestamp always refreshes.
func (s *GormStore) UpdateUser(id string, upd UserUpdate) (domain.User, error) {
	var merged domain.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var model UserModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			model = UserModel{ID: id, Role: string(domain.RoleUser), CreatedAt: time.Now().UTC()}
		} else if err != nil {
			return err
		}
		if upd.DisplayName != nil {
			model.DisplayName = *upd.DisplayName
		}
		if upd.Bio != nil {
			model.Bio = *upd.Bio
		}
		if upd.PhotoURL != nil {
			model.PhotoURL = *upd.PhotoURL
		}
		if upd.CompanyID != nil {
			model.CompanyID = *upd.CompanyID
		}
		if upd.Role != nil {
			model.Role = string(*upd.Role)
		}
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "company_id", "display_name", "bio", "photo_url", "updated_at"}),
		}).Create(&model).Error; err != nil {
			return err
		}
		merged = userFromModel(model)
		return nil
	})
	return merged, err
}

// GetCompany returns a company by ID.
func (s *GormStore) GetCompany(id string) (domain.Company, bool, error) {
	var model CompanyModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Company{}, false, nil
		}
		return domain.Company{}, false, err
	}
	return companyFromModel(model), true, nil
}

// FindCompanyByName looks up a company by exact name match.
func (s *GormStore) FindCompanyByName(name string) (domain.Company, bool, error) {
	var model CompanyModel
	if err := s.db.Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Company{}, false, nil
		}
		return domain.Company{}, false, err
	}
	return companyFromModel(model), true, nil
}

// CreateCompany stores a new company.
func (s *GormStore) CreateCompany(c domain.Company) error {
	model := companyToModel(c)
	return s.db.Create(&model).Error
}

// CreateKnowledgeBase stores a new knowledge base document.
func (s *GormStore) CreateKnowledgeBase(kb domain.KnowledgeBase) error {
	model, err := knowledgeToModel(kb)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetKnowledgeBase retrieves a knowledge base, including soft-deleted ones.
func (s *GormStore) GetKnowledgeBase(id string) (domain.KnowledgeBase, bool, error) {
	var model KnowledgeBaseModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.KnowledgeBase{}, false, nil
		}
		return domain.KnowledgeBase{}, false, err
	}
	return knowledgeFromModel(model), true, nil
}

// ListKnowledgeBases returns non-deleted knowledge bases matching the filter,
// newest first.
func (s *GormStore) ListKnowledgeBases(filter KnowledgeFilter) ([]domain.KnowledgeBase, error) {
	tx := s.db.Where("deleted = ?", false)
	if filter.Type != "" {
		tx = tx.Where("type = ?", string(filter.Type))
	}
	if filter.UploadedBy != "" {
		tx = tx.Where("uploaded_by = ?", filter.UploadedBy)
	}
	var models []KnowledgeBaseModel
	if err := tx.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.KnowledgeBase, 0, len(models))
	for _, m := range models {
		res = append(res, knowledgeFromModel(m))
	}
	return res, nil
}

// SetKnowledgeStatus updates processing status and optional error message.
func (s *GormStore) SetKnowledgeStatus(id string, status domain.KnowledgeStatus, errMsg string) error {
	return s.db.Model(&KnowledgeBaseModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        string(status),
			"error_message": errMsg,
			"updated_at":    time.Now().UTC(),
		}).Error
}

// SetKnowledgeProcessed marks a knowledge base ready and stores the derived
// content, seeding both histories with version 1.
func (s *GormStore) SetKnowledgeProcessed(id string, result ProcessedKnowledge) error {
	now := time.Now().UTC()
	summaryHistory, err := marshalVersions([]domain.ContentVersion{{
		Version: 1, Content: result.Summary, CreatedAt: now, CreatedBy: "processor",
	}})
	if err != nil {
		return err
	}
	usageHistory, err := marshalVersions([]domain.ContentVersion{{
		Version: 1, Content: result.UsageGuide, CreatedAt: now, CreatedBy: "processor",
	}})
	if err != nil {
		return err
	}
	res := s.db.Model(&KnowledgeBaseModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":              string(domain.KnowledgeReady),
			"error_message":       "",
			"summary":             result.Summary,
			"usage_guide":         result.UsageGuide,
			"summary_history":     summaryHistory,
			"usage_guide_history": usageHistory,
			"chunk_count":         result.ChunkCount,
			"page_count":          result.PageCount,
			"updated_at":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteKnowledgeBase marks a knowledge base deleted without removing it.
func (s *GormStore) SoftDeleteKnowledgeBase(id string) error {
	now := time.Now().UTC()
	res := s.db.Model(&KnowledgeBaseModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deleted":    true,
			"deleted_at": now,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RestoreKnowledgeContent restores a numbered history version of the selected
// content field. The row is locked for the whole read-modify-write, so
// concurrent restores cannot compute the same next version number.
func (s *GormStore) RestoreKnowledgeContent(id string, kind domain.ContentKind, version int) (domain.KnowledgeBase, error) {
	var restored domain.KnowledgeBase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var model KnowledgeBaseModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		kb := knowledgeFromModel(model)
		if _, err := domain.RestoreContent(&kb, kind, version, time.Now().UTC()); err != nil {
			return err
		}
		summaryHistory, err := marshalVersions(kb.SummaryHistory)
		if err != nil {
			return err
		}
		usageHistory, err := marshalVersions(kb.UsageGuideHistory)
		if err != nil {
			return err
		}
		if err := tx.Model(&KnowledgeBaseModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"summary":             kb.Summary,
				"usage_guide":         kb.UsageGuide,
				"summary_history":     summaryHistory,
				"usage_guide_history": usageHistory,
				"updated_at":          kb.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		restored = kb
		return nil
	})
	return restored, err
}

// ReviseKnowledgeContent overwrites the selected content field with freshly
// generated text, snapshotting the previous content as a history version
// carrying the feedback. The row is locked for the whole read-modify-write,
// so concurrent revisions cannot compute the same next version number.
func (s *GormStore) ReviseKnowledgeContent(id string, kind domain.ContentKind, newContent, feedback, feedbackType, revisedBy string) (domain.KnowledgeBase, error) {
	var revised domain.KnowledgeBase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var model KnowledgeBaseModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		kb := knowledgeFromModel(model)
		domain.ReviseContent(&kb, kind, newContent, feedback, feedbackType, revisedBy, time.Now().UTC())
		summaryHistory, err := marshalVersions(kb.SummaryHistory)
		if err != nil {
			return err
		}
		usageHistory, err := marshalVersions(kb.UsageGuideHistory)
		if err != nil {
			return err
		}
		if err := tx.Model(&KnowledgeBaseModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"summary":             kb.Summary,
				"usage_guide":         kb.UsageGuide,
				"summary_history":     summaryHistory,
				"usage_guide_history": usageHistory,
				"updated_at":          kb.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		revised = kb
		return nil
	})
	return revised, err
}

// ReplaceChunks replaces all extracted chunks for a knowledge base.
func (s *GormStore) ReplaceChunks(knowledgeBaseID string, chunks []domain.KnowledgeChunk) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&KnowledgeChunkModel{}, "knowledge_base_id = ?", knowledgeBaseID).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		now := time.Now().UTC()
		models := make([]KnowledgeChunkModel, 0, len(chunks))
		for _, chunk := range chunks {
			model := chunkToModel(chunk)
			model.KnowledgeBaseID = knowledgeBaseID
			if model.ID == "" {
				model.ID = NewID()
			}
			if model.CreatedAt.IsZero() {
				model.CreatedAt = now
			}
			models = append(models, model)
		}
		return tx.CreateInBatches(&models, 200).Error
	})
}

// ListChunks returns extracted chunks in document order.
func (s *GormStore) ListChunks(knowledgeBaseID string, limit int) ([]domain.KnowledgeChunk, error) {
	tx := s.db.Where("knowledge_base_id = ?", knowledgeBaseID).Order("chunk_index ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var models []KnowledgeChunkModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.KnowledgeChunk, 0, len(models))
	for _, m := range models {
		res = append(res, chunkFromModel(m))
	}
	return res, nil
}

// CreateInterview stores a new interview document.
func (s *GormStore) CreateInterview(iv domain.Interview) error {
	model, err := interviewToModel(iv)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetInterview retrieves an interview by ID.
func (s *GormStore) GetInterview(id string) (domain.Interview, bool, error) {
	var model InterviewModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Interview{}, false, nil
		}
		return domain.Interview{}, false, err
	}
	return interviewFromModel(model), true, nil
}

// GetInterviewByShareToken retrieves an interview by its share token.
func (s *GormStore) GetInterviewByShareToken(token string) (domain.Interview, bool, error) {
	var model InterviewModel
	if err := s.db.Where("share_token = ?", token).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Interview{}, false, nil
		}
		return domain.Interview{}, false, err
	}
	return interviewFromModel(model), true, nil
}

// AppendTranscript adds one message to the interview transcript. The row is
// locked so concurrent appends cannot drop each other's messages.
func (s *GormStore) AppendTranscript(id string, msg domain.TranscriptMessage) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var model InterviewModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		transcript := transcriptFromJSON(model.Transcript)
		transcript = append(transcript, msg)
		raw, err := json.Marshal(transcript)
		if err != nil {
			return err
		}
		return tx.Model(&InterviewModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"transcript": datatypes.JSON(raw),
				"updated_at": time.Now().UTC(),
			}).Error
	})
}

// SetInterviewStatus updates the interview pipeline status.
func (s *GormStore) SetInterviewStatus(id string, status domain.InterviewStatus) error {
	res := s.db.Model(&InterviewModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateArticle stores a new article document.
func (s *GormStore) CreateArticle(a domain.Article) error {
	model, err := articleToModel(a)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetArticle retrieves an article by ID.
func (s *GormStore) GetArticle(id string) (domain.Article, bool, error) {
	var model ArticleModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Article{}, false, nil
		}
		return domain.Article{}, false, err
	}
	return articleFromModel(model), true, nil
}

// SaveArticleDraft overwrites the draft content of an article.
func (s *GormStore) SaveArticleDraft(id string, draft domain.ArticleDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	res := s.db.Model(&ArticleModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"draft":      datatypes.JSON(raw),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetArticleMetadata replaces the derived AI metadata document whole, so
// re-running generation never accumulates stale fields.
func (s *GormStore) SetArticleMetadata(id string, metadata json.RawMessage) error {
	res := s.db.Model(&ArticleModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"ai_metadata": datatypes.JSON(metadata),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetArticleStatus updates publication status.
func (s *GormStore) SetArticleStatus(id string, status domain.ArticleStatus) error {
	res := s.db.Model(&ArticleModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPublicArticles returns published articles, newest first.
func (s *GormStore) ListPublicArticles() ([]domain.Article, error) {
	var models []ArticleModel
	if err := s.db.Where("status = ?", string(domain.ArticleStatusPublic)).
		Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Article, 0, len(models))
	for _, m := range models {
		res = append(res, articleFromModel(m))
	}
	return res, nil
}

// IncrementArticleViews bumps the engagement counter atomically and returns
// the new value.
func (s *GormStore) IncrementArticleViews(id string) (int64, error) {
	var views int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ArticleModel{}).
			Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var model ArticleModel
		if err := tx.Select("views").First(&model, "id = ?", id).Error; err != nil {
			return err
		}
		views = model.Views
		return nil
	})
	return views, err
}

// CreateComment stores a new article comment.
func (s *GormStore) CreateComment(c domain.Comment) error {
	model := commentToModel(c)
	return s.db.Create(&model).Error
}

// ListComments returns the comments of an article, oldest first.
func (s *GormStore) ListComments(articleID string) ([]domain.Comment, error) {
	var models []CommentModel
	if err := s.db.Where("article_id = ?", articleID).
		Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Comment, 0, len(models))
	for _, m := range models {
		res = append(res, commentFromModel(m))
	}
	return res, nil
}

// CreateFeedback stores a new feedback document.
func (s *GormStore) CreateFeedback(f domain.Feedback) error {
	model := feedbackToModel(f)
	return s.db.Create(&model).Error
}

// GetSystemSetting retrieves a setting document by key.
func (s *GormStore) GetSystemSetting(key string) (domain.SystemSetting, bool, error) {
	var model SystemSettingModel
	if err := s.db.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SystemSetting{}, false, nil
		}
		return domain.SystemSetting{}, false, err
	}
	return settingFromModel(model), true, nil
}

// MergeSystemSetting merges data into the setting document, creating it when
// absent. Unspecified keys of the existing document are untouched.
func (s *GormStore) MergeSystemSetting(key string, data map[string]any, updatedBy string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	model := SystemSettingModel{
		Key:       key,
		Data:      datatypes.JSON(raw),
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"data":       gorm.Expr("COALESCE(system_setting_models.data, '{}'::jsonb) || excluded.data"),
			"updated_by": updatedBy,
			"updated_at": model.UpdatedAt,
		}),
	}).Create(&model).Error
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:          u.ID,
		Role:        string(u.Role),
		CompanyID:   u.CompanyID,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		PhotoURL:    u.PhotoURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	role := domain.UserRole(m.Role)
	if role == "" {
		role = domain.RoleUser
	}
	return domain.User{
		ID:          m.ID,
		Role:        role,
		CompanyID:   m.CompanyID,
		DisplayName: m.DisplayName,
		Bio:         m.Bio,
		PhotoURL:    m.PhotoURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func companyToModel(c domain.Company) CompanyModel {
	return CompanyModel{
		ID:        c.ID,
		Name:      c.Name,
		OwnerID:   c.OwnerID,
		CreatedAt: c.CreatedAt,
	}
}

func companyFromModel(m CompanyModel) domain.Company {
	return domain.Company{
		ID:        m.ID,
		Name:      m.Name,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt,
	}
}

func knowledgeToModel(kb domain.KnowledgeBase) (KnowledgeBaseModel, error) {
	summaryHistory, err := marshalVersions(kb.SummaryHistory)
	if err != nil {
		return KnowledgeBaseModel{}, err
	}
	usageHistory, err := marshalVersions(kb.UsageGuideHistory)
	if err != nil {
		return KnowledgeBaseModel{}, err
	}
	return KnowledgeBaseModel{
		ID:                kb.ID,
		Type:              string(kb.Type),
		UploadedBy:        kb.UploadedBy,
		CompanyID:         kb.CompanyID,
		FileName:          kb.FileName,
		FileSize:          kb.FileSize,
		StorageURL:        kb.StorageURL,
		StoragePath:       kb.StoragePath,
		Status:            string(kb.Status),
		ErrorMessage:      kb.ErrorMessage,
		Summary:           kb.Summary,
		UsageGuide:        kb.UsageGuide,
		SummaryHistory:    summaryHistory,
		UsageGuideHistory: usageHistory,
		ChunkCount:        kb.ChunkCount,
		PageCount:         kb.PageCount,
		Deleted:           kb.Deleted,
		DeletedAt:         kb.DeletedAt,
		CreatedAt:         kb.CreatedAt,
		UpdatedAt:         kb.UpdatedAt,
	}, nil
}

func knowledgeFromModel(m KnowledgeBaseModel) domain.KnowledgeBase {
	return domain.KnowledgeBase{
		ID:                m.ID,
		Type:              domain.KnowledgeType(m.Type),
		UploadedBy:        m.UploadedBy,
		CompanyID:         m.CompanyID,
		FileName:          m.FileName,
		FileSize:          m.FileSize,
		StorageURL:        m.StorageURL,
		StoragePath:       m.StoragePath,
		Status:            domain.KnowledgeStatus(m.Status),
		ErrorMessage:      m.ErrorMessage,
		Summary:           m.Summary,
		UsageGuide:        m.UsageGuide,
		SummaryHistory:    unmarshalVersions(m.SummaryHistory),
		UsageGuideHistory: unmarshalVersions(m.UsageGuideHistory),
		ChunkCount:        m.ChunkCount,
		PageCount:         m.PageCount,
		Deleted:           m.Deleted,
		DeletedAt:         m.DeletedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func chunkToModel(c domain.KnowledgeChunk) KnowledgeChunkModel {
	return KnowledgeChunkModel{
		ID:              c.ID,
		KnowledgeBaseID: c.KnowledgeBaseID,
		ChunkIndex:      c.Index,
		Text:            c.Text,
		CreatedAt:       c.CreatedAt,
	}
}

func chunkFromModel(m KnowledgeChunkModel) domain.KnowledgeChunk {
	return domain.KnowledgeChunk{
		ID:              m.ID,
		KnowledgeBaseID: m.KnowledgeBaseID,
		Index:           m.ChunkIndex,
		Text:            m.Text,
		CreatedAt:       m.CreatedAt,
	}
}

func interviewToModel(iv domain.Interview) (InterviewModel, error) {
	transcript := iv.Transcript
	if transcript == nil {
		transcript = []domain.TranscriptMessage{}
	}
	raw, err := json.Marshal(transcript)
	if err != nil {
		return InterviewModel{}, err
	}
	return InterviewModel{
		ID:                 iv.ID,
		ShareToken:         iv.ShareToken,
		CompanyID:          iv.CompanyID,
		IntervieweeName:    iv.IntervieweeName,
		IntervieweeCompany: iv.IntervieweeCompany,
		IntervieweeTitle:   iv.IntervieweeTitle,
		InterviewerName:    iv.InterviewerName,
		Objective:          iv.Objective,
		Purpose:            iv.Purpose,
		Category:           iv.Category,
		TargetAudience:     iv.TargetAudience,
		MediaType:          iv.MediaType,
		Transcript:         datatypes.JSON(raw),
		Status:             string(iv.Status),
		CreatedBy:          iv.CreatedBy,
		CreatedAt:          iv.CreatedAt,
		UpdatedAt:          iv.UpdatedAt,
	}, nil
}

func interviewFromModel(m InterviewModel) domain.Interview {
	return domain.Interview{
		ID:                 m.ID,
		ShareToken:         m.ShareToken,
		CompanyID:          m.CompanyID,
		IntervieweeName:    m.IntervieweeName,
		IntervieweeCompany: m.IntervieweeCompany,
		IntervieweeTitle:   m.IntervieweeTitle,
		InterviewerName:    m.InterviewerName,
		Objective:          m.Objective,
		Purpose:            m.Purpose,
		Category:           m.Category,
		TargetAudience:     m.TargetAudience,
		MediaType:          m.MediaType,
		Transcript:         transcriptFromJSON(m.Transcript),
		Status:             domain.InterviewStatus(m.Status),
		CreatedBy:          m.CreatedBy,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func articleToModel(a domain.Article) (ArticleModel, error) {
	model := ArticleModel{
		ID:          a.ID,
		InterviewID: a.InterviewID,
		CompanyID:   a.CompanyID,
		AuthorID:    a.AuthorID,
		Status:      string(a.Status),
		Views:       a.Views,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Draft != nil {
		raw, err := json.Marshal(a.Draft)
		if err != nil {
			return ArticleModel{}, err
		}
		model.Draft = datatypes.JSON(raw)
	}
	if len(a.AIMetadata) > 0 {
		model.AIMetadata = datatypes.JSON(a.AIMetadata)
	}
	return model, nil
}

func articleFromModel(m ArticleModel) domain.Article {
	article := domain.Article{
		ID:          m.ID,
		InterviewID: m.InterviewID,
		CompanyID:   m.CompanyID,
		AuthorID:    m.AuthorID,
		Status:      domain.ArticleStatus(m.Status),
		Views:       m.Views,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if len(m.Draft) > 0 {
		var draft domain.ArticleDraft
		if err := json.Unmarshal(m.Draft, &draft); err == nil {
			article.Draft = &draft
		}
	}
	if len(m.AIMetadata) > 0 {
		article.AIMetadata = json.RawMessage(m.AIMetadata)
	}
	return article
}

func commentToModel(c domain.Comment) CommentModel {
	return CommentModel{
		ID:             c.ID,
		ArticleID:      c.ArticleID,
		UserID:         c.UserID,
		Content:        c.Content,
		AuthorName:     c.Author.DisplayName,
		AuthorPhotoURL: c.Author.PhotoURL,
		CreatedAt:      c.CreatedAt,
	}
}

func commentFromModel(m CommentModel) domain.Comment {
	return domain.Comment{
		ID:        m.ID,
		ArticleID: m.ArticleID,
		UserID:    m.UserID,
		Content:   m.Content,
		Author: domain.CommentAuthor{
			DisplayName: m.AuthorName,
			PhotoURL:    m.AuthorPhotoURL,
		},
		CreatedAt: m.CreatedAt,
	}
}

func feedbackToModel(f domain.Feedback) FeedbackModel {
	return FeedbackModel{
		ID:          f.ID,
		CompanyID:   f.CompanyID,
		InterviewID: f.InterviewID,
		ArticleID:   f.ArticleID,
		Source:      f.Source,
		Type:        f.Type,
		Message:     f.Message,
		Context:     f.Context,
		Resolved:    f.Resolved,
		CreatedBy:   f.CreatedBy,
		CreatedAt:   f.CreatedAt,
	}
}

func settingFromModel(m SystemSettingModel) domain.SystemSetting {
	var data map[string]any
	if len(m.Data) > 0 {
		_ = json.Unmarshal(m.Data, &data)
	}
	return domain.SystemSetting{
		Key:       m.Key,
		Data:      data,
		UpdatedBy: m.UpdatedBy,
		UpdatedAt: m.UpdatedAt,
	}
}

func marshalVersions(versions []domain.ContentVersion) (datatypes.JSON, error) {
	if versions == nil {
		versions = []domain.ContentVersion{}
	}
	raw, err := json.Marshal(versions)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalVersions(raw datatypes.JSON) []domain.ContentVersion {
	if len(raw) == 0 {
		return nil
	}
	var versions []domain.ContentVersion
	if err := json.Unmarshal(raw, &versions); err != nil {
		return nil
	}
	return versions
}

func transcriptFromJSON(raw datatypes.JSON) []domain.TranscriptMessage {
	if len(raw) == 0 {
		return nil
	}
	var transcript []domain.TranscriptMessage
	if err := json.Unmarshal(raw, &transcript); err != nil {
		return nil
	}
	return transcript
}
