package store

import (
	"encoding/json"
	"sync"
	"time"

	"bankisha/internal/domain"
)

// MemoryStore keeps all collections in-process. It implements the same
// semantics as the Postgres store and backs handler and app tests.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	companies  map[string]domain.Company
	knowledge  map[string]domain.KnowledgeBase
	kbOrder    []string
	chunks     map[string][]domain.KnowledgeChunk
	interviews map[string]domain.Interview
	shareToken map[string]string // share token -> interview ID
	articles   map[string]domain.Article
	artOrder   []string
	comments   map[string][]domain.Comment // article ID -> comments in post order
	feedbacks  map[string]domain.Feedback
	settings   map[string]domain.SystemSetting
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]domain.User),
		companies:  make(map[string]domain.Company),
		knowledge:  make(map[string]domain.KnowledgeBase),
		chunks:     make(map[string][]domain.KnowledgeChunk),
		interviews: make(map[string]domain.Interview),
		shareToken: make(map[string]string),
		articles:   make(map[string]domain.Article),
		comments:   make(map[string][]domain.Comment),
		feedbacks:  make(map[string]domain.Feedback),
		settings:   make(map[string]domain.SystemSetting),
	}
}

// GetUser returns a user by ID.
func (m *MemoryStore) GetUser(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// SaveUser registers or replaces a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// UpdateUser applies a partial-merge update, creating the record with the
// lowest-privilege role when absent.
func (m *MemoryStore) UpdateUser(id string, upd UserUpdate) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		u = domain.User{ID: id, Role: domain.RoleUser, CreatedAt: time.Now().UTC()}
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = *upd.PhotoURL
	}
	if upd.CompanyID != nil {
		u.CompanyID = *upd.CompanyID
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return u, nil
}

// GetCompany returns a company by ID.
func (m *MemoryStore) GetCompany(id string) (domain.Company, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[id]
	return c, ok, nil
}

// FindCompanyByName looks up a company by exact name.
func (m *MemoryStore) FindCompanyByName(name string) (domain.Company, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.companies {
		if c.Name == name {
			return c, true, nil
		}
	}
	return domain.Company{}, false, nil
}

// CreateCompany stores a new company.
func (m *MemoryStore) CreateCompany(c domain.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.ID] = c
	return nil
}

// CreateKnowledgeBase stores a new knowledge base and tracks insertion order.
func (m *MemoryStore) CreateKnowledgeBase(kb domain.KnowledgeBase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.knowledge[kb.ID]; !exists {
		m.kbOrder = append(m.kbOrder, kb.ID)
	}
	m.knowledge[kb.ID] = kb
	return nil
}

// GetKnowledgeBase retrieves a knowledge base, including soft-deleted ones.
func (m *MemoryStore) GetKnowledgeBase(id string) (domain.KnowledgeBase, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	kb, ok := m.knowledge[id]
	return kb, ok, nil
}

// ListKnowledgeBases returns non-deleted entries matching the filter, newest
// first.
func (m *MemoryStore) ListKnowledgeBases(filter KnowledgeFilter) ([]domain.KnowledgeBase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.KnowledgeBase, 0, len(m.kbOrder))
	for i := len(m.kbOrder) - 1; i >= 0; i-- {
		kb, ok := m.knowledge[m.kbOrder[i]]
		if !ok || kb.Deleted {
			continue
		}
		if filter.Type != "" && kb.Type != filter.Type {
			continue
		}
		if filter.UploadedBy != "" && kb.UploadedBy != filter.UploadedBy {
			continue
		}
		res = append(res, kb)
	}
	return res, nil
}

// SetKnowledgeStatus updates status and optional error message.
func (m *MemoryStore) SetKnowledgeStatus(id string, status domain.KnowledgeStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kb, ok := m.knowledge[id]
	if !ok {
		return nil
	}
	kb.Status = status
	kb.ErrorMessage = errMsg
	kb.UpdatedAt = time.Now().UTC()
	m.knowledge[id] = kb
	return nil
}

// SetKnowledgeProcessed marks a knowledge base ready with derived content.
func (m *MemoryStore) SetKnowledgeProcessed(id string, result ProcessedKnowledge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kb, ok := m.knowledge[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	kb.Status = domain.KnowledgeReady
	kb.ErrorMessage = ""
	kb.Summary = result.Summary
	kb.UsageGuide = result.UsageGuide
	kb.SummaryHistory = []domain.ContentVersion{{Version: 1, Content: result.Summary, CreatedAt: now, CreatedBy: "processor"}}
	kb.UsageGuideHistory = []domain.ContentVersion{{Version: 1, Content: result.UsageGuide, CreatedAt: now, CreatedBy: "processor"}}
	kb.ChunkCount = result.ChunkCount
	kb.PageCount = result.PageCount
	kb.UpdatedAt = now
	m.knowledge[id] = kb
	return nil
}

// SoftDeleteKnowledgeBase marks an entry deleted without removing it.
func (m *MemoryStore) SoftDeleteKnowledgeBase(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kb, ok := m.knowledge[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	kb.Deleted = true
	kb.DeletedAt = &now
	kb.UpdatedAt = now
	m.knowledge[id] = kb
	return nil
}

// RestoreKnowledgeContent restores a numbered history version under the
// store lock.
func (m *MemoryStore) RestoreKnowledgeContent(id string, kind domain.ContentKind, version int) (domain.KnowledgeBase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kb, ok := m.knowledge[id]
	if !ok {
		return domain.KnowledgeBase{}, ErrNotFound
	}
	if _, err := domain.RestoreContent(&kb, kind, version, time.Now().UTC()); err != nil {
		return domain.KnowledgeBase{}, err
	}
	m.knowledge[id] = kb
	return kb, nil
}

// ReviseKnowledgeContent overwrites the selected content field under the
// store lock, snapshotting the previous content with the feedback.
func (m *MemoryStore) ReviseKnowledgeContent(id string, kind domain.ContentKind, newContent, feedback, feedbackType, revisedBy string) (domain.KnowledgeBase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kb, ok := m.knowledge[id]
	if !ok {
		return domain.KnowledgeBase{}, ErrNotFound
	}
	domain.ReviseContent(&kb, kind, newContent, feedback, feedbackType, revisedBy, time.Now().UTC())
	m.knowledge[id] = kb
	return kb, nil
}

// ReplaceChunks replaces all chunks for a knowledge base.
func (m *MemoryStore) ReplaceChunks(knowledgeBaseID string, chunks []domain.KnowledgeChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]domain.KnowledgeChunk, len(chunks))
	copy(copied, chunks)
	m.chunks[knowledgeBaseID] = copied
	return nil
}

// ListChunks returns chunks in document order.
func (m *MemoryStore) ListChunks(knowledgeBaseID string, limit int) ([]domain.KnowledgeChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chunks := m.chunks[knowledgeBaseID]
	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
	}
	res := make([]domain.KnowledgeChunk, len(chunks))
	copy(res, chunks)
	return res, nil
}

// CreateInterview stores a new interview.
func (m *MemoryStore) CreateInterview(iv domain.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviews[iv.ID] = iv
	if iv.ShareToken != "" {
		m.shareToken[iv.ShareToken] = iv.ID
	}
	return nil
}

// GetInterview retrieves an interview by ID.
func (m *MemoryStore) GetInterview(id string) (domain.Interview, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	iv, ok := m.interviews[id]
	return iv, ok, nil
}

// GetInterviewByShareToken retrieves an interview by share token.
func (m *MemoryStore) GetInterviewByShareToken(token string) (domain.Interview, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.shareToken[token]
	if !ok {
		return domain.Interview{}, false, nil
	}
	iv, ok := m.interviews[id]
	return iv, ok, nil
}

// AppendTranscript adds one message to the transcript.
func (m *MemoryStore) AppendTranscript(id string, msg domain.TranscriptMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.interviews[id]
	if !ok {
		return ErrNotFound
	}
	iv.Transcript = append(iv.Transcript, msg)
	iv.UpdatedAt = time.Now().UTC()
	m.interviews[id] = iv
	return nil
}

// SetInterviewStatus updates the pipeline status.
func (m *MemoryStore) SetInterviewStatus(id string, status domain.InterviewStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.interviews[id]
	if !ok {
		return ErrNotFound
	}
	iv.Status = status
	iv.UpdatedAt = time.Now().UTC()
	m.interviews[id] = iv
	return nil
}

// CreateArticle stores a new article and tracks insertion order.
func (m *MemoryStore) CreateArticle(a domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.articles[a.ID]; !exists {
		m.artOrder = append(m.artOrder, a.ID)
	}
	m.articles[a.ID] = a
	return nil
}

// GetArticle retrieves an article by ID.
func (m *MemoryStore) GetArticle(id string) (domain.Article, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[id]
	return a, ok, nil
}

// SaveArticleDraft overwrites the draft content.
func (m *MemoryStore) SaveArticleDraft(id string, draft domain.ArticleDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return ErrNotFound
	}
	copied := draft
	a.Draft = &copied
	a.UpdatedAt = time.Now().UTC()
	m.articles[id] = a
	return nil
}

// SetArticleMetadata replaces the AI metadata document whole.
func (m *MemoryStore) SetArticleMetadata(id string, metadata json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return ErrNotFound
	}
	a.AIMetadata = append(json.RawMessage(nil), metadata...)
	a.UpdatedAt = time.Now().UTC()
	m.articles[id] = a
	return nil
}

// SetArticleStatus updates publication status.
func (m *MemoryStore) SetArticleStatus(id string, status domain.ArticleStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	m.articles[id] = a
	return nil
}

// ListPublicArticles returns published articles, newest first.
func (m *MemoryStore) ListPublicArticles() ([]domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Article, 0, len(m.artOrder))
	for i := len(m.artOrder) - 1; i >= 0; i-- {
		if a, ok := m.articles[m.artOrder[i]]; ok && a.Status == domain.ArticleStatusPublic {
			res = append(res, a)
		}
	}
	return res, nil
}

// IncrementArticleViews bumps the engagement counter.
func (m *MemoryStore) IncrementArticleViews(id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return 0, ErrNotFound
	}
	a.Views++
	m.articles[id] = a
	return a.Views, nil
}

// CreateComment appends a comment to the article thread.
func (m *MemoryStore) CreateComment(c domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ArticleID] = append(m.comments[c.ArticleID], c)
	return nil
}

// ListComments returns the comments of an article, oldest first.
func (m *MemoryStore) ListComments(articleID string) ([]domain.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	comments := m.comments[articleID]
	res := make([]domain.Comment, len(comments))
	copy(res, comments)
	return res, nil
}

// CreateFeedback stores a new feedback document.
func (m *MemoryStore) CreateFeedback(f domain.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedbacks[f.ID] = f
	return nil
}

// FeedbackCount returns the number of stored feedback documents.
func (m *MemoryStore) FeedbackCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.feedbacks)
}

// GetSystemSetting retrieves a setting by key.
func (m *MemoryStore) GetSystemSetting(key string) (domain.SystemSetting, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[key]
	return s, ok, nil
}

// MergeSystemSetting merges data into the setting document.
func (m *MemoryStore) MergeSystemSetting(key string, data map[string]any, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[key]
	if !ok {
		s = domain.SystemSetting{Key: key, Data: make(map[string]any)}
	}
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	for k, v := range data {
		s.Data[k] = v
	}
	s.UpdatedBy = updatedBy
	s.UpdatedAt = time.Now().UTC()
	m.settings[key] = s
	return nil
}
