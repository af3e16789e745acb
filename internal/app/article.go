package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"bankisha/internal/ai"
	"bankisha/internal/domain"
	"bankisha/internal/store"
)

const metadataSystemPrompt = `You generate publication metadata for an interview article.
Respond with a single JSON object and nothing else, using exactly these fields:
{"title": string, "description": string, "category": string, "tags": [string], "seoKeywords": [string], "readingTimeMinutes": number}`

const draftSystemPrompt = `You are an editor turning an interview transcript into a publishable article.
Respond with a single JSON object and nothing else, using exactly these fields:
{"title": string, "lead": string, "sections": [{"heading": string, "body": string}]}
Write in the language of the transcript. Ground every claim in the transcript; use the reference material only for terminology and context.`

// GenerateArticleMetadata builds publication metadata from the article
// draft and overwrites the stored aiMetadata whole. On any provider or
// parse failure the article is left untouched.
func (s *Service) GenerateArticleMetadata(ctx context.Context, callerID, articleID string) (json.RawMessage, error) {
	article, ok, err := s.store.GetArticle(articleID)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: article %s", ErrNotFound, articleID)
	}
	if err := s.authorizeArticleManage(callerID, article); err != nil {
		return nil, err
	}
	if article.Draft == nil {
		return nil, fmt.Errorf("%w: article has no draft", ErrInvalid)
	}

	draftJSON, err := json.Marshal(article.Draft)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	var prompt strings.Builder
	prompt.WriteString("Article draft:\n")
	prompt.Write(draftJSON)
	if article.InterviewID != "" {
		if interview, ok, err := s.store.GetInterview(article.InterviewID); err == nil && ok {
			prompt.WriteString("\n\nInterview context:\n")
			prompt.WriteString(transcriptExcerpt(interview.Transcript, 4000))
		}
	}

	out, err := ai.GenerateJSON(ctx, s.generator, metadataSystemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, err)
	}
	metadata, err := compactJSONObject(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, err)
	}
	if err := s.store.SetArticleMetadata(articleID, metadata); err != nil {
		return nil, fmt.Errorf("store metadata: %w", err)
	}
	return metadata, nil
}

// GenerateArticleFromInterview produces an article draft from the
// interview transcript plus shared reference material, persists it, and
// flips the interview to draftReady. When articleID is empty a new draft
// article owned by the caller is created.
func (s *Service) GenerateArticleFromInterview(ctx context.Context, callerID, interviewID, articleID string) (domain.Article, error) {
	interview, ok, err := s.store.GetInterview(interviewID)
	if err != nil {
		return domain.Article{}, fmt.Errorf("load interview: %w", err)
	}
	if !ok {
		return domain.Article{}, fmt.Errorf("%w: interview %s", ErrNotFound, interviewID)
	}
	if err := s.authorizeInterviewManage(callerID, interview); err != nil {
		return domain.Article{}, err
	}
	if len(interview.Transcript) == 0 {
		return domain.Article{}, fmt.Errorf("%w: interview has no transcript", ErrInvalid)
	}

	reference, err := s.loadSkillContext(ctx)
	if err != nil {
		return domain.Article{}, err
	}

	var prompt strings.Builder
	prompt.WriteString(interviewBrief(interview))
	prompt.WriteString("\nTranscript:\n")
	prompt.WriteString(transcriptExcerpt(interview.Transcript, 20000))
	if reference != "" {
		prompt.WriteString("\n\nReference material:\n")
		prompt.WriteString(reference)
	}

	out, err := ai.GenerateJSON(ctx, s.generator, draftSystemPrompt, prompt.String())
	if err != nil {
		return domain.Article{}, fmt.Errorf("%w: %s", ErrGenerationFailed, err)
	}
	var draft domain.ArticleDraft
	if err := json.Unmarshal([]byte(out), &draft); err != nil {
		return domain.Article{}, fmt.Errorf("%w: decode draft: %s", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(draft.Title) == "" || len(draft.Sections) == 0 {
		return domain.Article{}, fmt.Errorf("%w: draft missing title or sections", ErrGenerationFailed)
	}

	if articleID == "" {
		article := domain.Article{
			ID:          store.NewID(),
			InterviewID: interview.ID,
			CompanyID:   interview.CompanyID,
			AuthorID:    callerID,
			Status:      domain.ArticleStatusDraft,
			CreatedAt:   s.now(),
			UpdatedAt:   s.now(),
		}
		if err := s.store.CreateArticle(article); err != nil {
			return domain.Article{}, fmt.Errorf("create article: %w", err)
		}
		articleID = article.ID
	} else {
		article, ok, err := s.store.GetArticle(articleID)
		if err != nil {
			return domain.Article{}, fmt.Errorf("load article: %w", err)
		}
		if !ok {
			return domain.Article{}, fmt.Errorf("%w: article %s", ErrNotFound, articleID)
		}
		if err := s.authorizeArticleManage(callerID, article); err != nil {
			return domain.Article{}, err
		}
	}
	if err := s.store.SaveArticleDraft(articleID, draft); err != nil {
		return domain.Article{}, fmt.Errorf("save draft: %w", err)
	}
	if err := s.store.SetInterviewStatus(interview.ID, domain.InterviewDraftReady); err != nil {
		return domain.Article{}, fmt.Errorf("update interview status: %w", err)
	}

	article, _, err := s.store.GetArticle(articleID)
	if err != nil {
		return domain.Article{}, fmt.Errorf("load article: %w", err)
	}
	return article, nil
}

// PublishArticle flips an article to public.
func (s *Service) PublishArticle(ctx context.Context, callerID, articleID string) error {
	article, ok, err := s.store.GetArticle(articleID)
	if err != nil {
		return fmt.Errorf("load article: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: article %s", ErrNotFound, articleID)
	}
	if err := s.authorizeArticleManage(callerID, article); err != nil {
		return err
	}
	if article.Draft == nil {
		return fmt.Errorf("%w: article has no draft", ErrInvalid)
	}
	if err := s.store.SetArticleStatus(articleID, domain.ArticleStatusPublic); err != nil {
		return fmt.Errorf("publish article: %w", err)
	}
	return nil
}

func (s *Service) authorizeArticleManage(callerID string, article domain.Article) error {
	role, err := s.RoleOf(callerID)
	if err != nil {
		return err
	}
	if role == domain.RoleSuperAdmin || article.AuthorID == callerID {
		return nil
	}
	return ErrForbidden
}

// loadSkillContext gathers summaries, usage guides and leading chunks of
// the ready shared skill entries. Chunk loads run concurrently, one
// goroutine per entry.
func (s *Service) loadSkillContext(ctx context.Context) (string, error) {
	const (
		maxEntries       = 5
		chunksPerEntry   = 3
		maxContextLength = 12000
	)
	entries, err := s.store.ListKnowledgeBases(store.KnowledgeFilter{Type: domain.KnowledgeSkill})
	if err != nil {
		return "", fmt.Errorf("list skill entries: %w", err)
	}
	var ready []domain.KnowledgeBase
	for _, kb := range entries {
		if kb.Status == domain.KnowledgeReady {
			ready = append(ready, kb)
		}
		if len(ready) == maxEntries {
			break
		}
	}
	if len(ready) == 0 {
		return "", nil
	}

	sections := make([]string, len(ready))
	group, _ := errgroup.WithContext(ctx)
	for i, kb := range ready {
		group.Go(func() error {
			var sb strings.Builder
			fmt.Fprintf(&sb, "## %s\n", kb.FileName)
			if kb.Summary != "" {
				sb.WriteString(kb.Summary)
				sb.WriteString("\n")
			}
			if kb.UsageGuide != "" {
				sb.WriteString(kb.UsageGuide)
				sb.WriteString("\n")
			}
			chunks, err := s.store.ListChunks(kb.ID, chunksPerEntry)
			if err != nil {
				return fmt.Errorf("load chunks for %s: %w", kb.ID, err)
			}
			for _, chunk := range chunks {
				sb.WriteString(chunk.Text)
				sb.WriteString("\n")
			}
			sections[i] = sb.String()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return "", err
	}
	joined := strings.Join(sections, "\n")
	runes := []rune(joined)
	if len(runes) > maxContextLength {
		joined = string(runes[:maxContextLength])
	}
	return joined, nil
}

func interviewBrief(interview domain.Interview) string {
	var sb strings.Builder
	pair := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(&sb, "%s: %s\n", label, value)
		}
	}
	pair("Interviewee", interview.IntervieweeName)
	pair("Company", interview.IntervieweeCompany)
	pair("Title", interview.IntervieweeTitle)
	pair("Interviewer", interview.InterviewerName)
	pair("Objective", interview.Objective)
	pair("Purpose", interview.Purpose)
	pair("Category", interview.Category)
	pair("Target audience", interview.TargetAudience)
	pair("Media type", interview.MediaType)
	return sb.String()
}

func transcriptExcerpt(transcript []domain.TranscriptMessage, maxRunes int) string {
	var sb strings.Builder
	for _, msg := range transcript {
		fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Content)
	}
	runes := []rune(sb.String())
	if len(runes) > maxRunes {
		// Keep the tail, the latest exchanges matter most.
		runes = runes[len(runes)-maxRunes:]
	}
	return string(runes)
}

// compactJSONObject validates that s is a JSON object and re-encodes it
// compactly.
func compactJSONObject(s string) (json.RawMessage, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if len(obj) == 0 {
		return nil, fmt.Errorf("empty metadata object")
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return out, nil
}
