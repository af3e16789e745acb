package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bankisha/internal/domain"
	"bankisha/internal/store"
)

// ListPublicArticles returns all published articles, newest first.
func (s *Service) ListPublicArticles(ctx context.Context) ([]domain.Article, error) {
	articles, err := s.store.ListPublicArticles()
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// PublicArticle returns a published article. Unpublished articles are
// indistinguishable from missing ones.
func (s *Service) PublicArticle(ctx context.Context, id string) (domain.Article, error) {
	article, ok, err := s.store.GetArticle(id)
	if err != nil {
		return domain.Article{}, fmt.Errorf("load article: %w", err)
	}
	if !ok || article.Status != domain.ArticleStatusPublic {
		return domain.Article{}, fmt.Errorf("%w: article %s", ErrNotFound, id)
	}
	return article, nil
}

// ListArticleComments returns the comment thread of a published article,
// oldest first.
func (s *Service) ListArticleComments(ctx context.Context, articleID string) ([]domain.Comment, error) {
	if _, err := s.PublicArticle(ctx, articleID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// AddArticleComment posts a comment on a published article. The author's
// display identity is frozen into the comment at post time.
func (s *Service) AddArticleComment(ctx context.Context, callerID, articleID, content string) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, fmt.Errorf("%w: content required", ErrInvalid)
	}
	if _, err := s.PublicArticle(ctx, articleID); err != nil {
		return domain.Comment{}, err
	}
	user, ok, err := s.store.GetUser(callerID)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return domain.Comment{}, fmt.Errorf("%w: user %s", ErrNotFound, callerID)
	}
	author := domain.CommentAuthor{DisplayName: user.DisplayName, PhotoURL: user.PhotoURL}
	if author.DisplayName == "" {
		author.DisplayName = "Anonymous"
	}
	comment := domain.Comment{
		ID:        store.NewID(),
		ArticleID: articleID,
		UserID:    callerID,
		Content:   content,
		Author:    author,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateComment(comment); err != nil {
		return domain.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// AddArticleView atomically increments the engagement counter of a
// published article and returns the new total.
func (s *Service) AddArticleView(ctx context.Context, id string) (int64, error) {
	if _, err := s.PublicArticle(ctx, id); err != nil {
		return 0, err
	}
	views, err := s.store.IncrementArticleViews(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("%w: article %s", ErrNotFound, id)
		}
		return 0, fmt.Errorf("count view: %w", err)
	}
	return views, nil
}
