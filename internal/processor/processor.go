// Package processor turns an uploaded knowledge file into chunks plus a
// generated summary and usage guide. It runs inside the server process and
// is triggered over the internal processing endpoint.
package processor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bankisha/internal/ai"
	"bankisha/internal/domain"
	"bankisha/internal/storage"
	"bankisha/internal/store"
	"bankisha/internal/util"
)

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 80
	maxFileBytes        = 64 << 20

	summarySystemPrompt = "You summarize uploaded reference documents for an interview preparation tool. " +
		"Write a concise summary in plain prose covering the document's main topics and claims."
	usageGuideSystemPrompt = "You write usage guides for reference documents used by an AI interviewer. " +
		"Explain when this document should be consulted during an interview and which topics it can answer."
)

// Processor downloads an uploaded file, extracts and chunks its text, and
// generates the derived summary and usage guide.
type Processor struct {
	store        store.Store
	objects      storage.ObjectStore
	generator    ai.TextGenerator
	httpClient   *http.Client
	chunkSize    int
	chunkOverlap int
}

// New builds a Processor with default chunking parameters.
func New(st store.Store, objects storage.ObjectStore, generator ai.TextGenerator) *Processor {
	return &Processor{
		store:        st,
		objects:      objects,
		generator:    generator,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
	}
}

// Process runs the full pipeline for a knowledge base entry. On any failure
// the entry is marked failed with the error message; the error is returned
// as well so the caller can log it.
func (p *Processor) Process(ctx context.Context, knowledgeBaseID string) error {
	logger := util.LoggerFromContext(ctx)
	if err := p.run(ctx, knowledgeBaseID); err != nil {
		logger.Error("knowledge processing failed", slog.String("knowledgeBaseId", knowledgeBaseID), slog.Any("err", err))
		if markErr := p.store.SetKnowledgeStatus(knowledgeBaseID, domain.KnowledgeFailed, err.Error()); markErr != nil {
			logger.Error("mark knowledge failed", slog.String("knowledgeBaseId", knowledgeBaseID), slog.Any("err", markErr))
		}
		return err
	}
	return nil
}

func (p *Processor) run(ctx context.Context, knowledgeBaseID string) error {
	kb, ok, err := p.store.GetKnowledgeBase(knowledgeBaseID)
	if err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}
	if !ok {
		return fmt.Errorf("knowledge base %s not found", knowledgeBaseID)
	}

	data, err := p.download(ctx, kb.StoragePath)
	if err != nil {
		return fmt.Errorf("download file: %w", err)
	}

	text, pages, err := extractText(kb.FileName, data)
	if err != nil {
		return err
	}

	parts := chunkText(text, p.chunkSize, p.chunkOverlap)
	if len(parts) == 0 {
		return fmt.Errorf("no chunks produced from %s", kb.FileName)
	}
	chunks := make([]domain.KnowledgeChunk, 0, len(parts))
	for idx, part := range parts {
		chunks = append(chunks, domain.KnowledgeChunk{
			KnowledgeBaseID: knowledgeBaseID,
			Index:           idx,
			Text:            part,
		})
	}

	// The two generations are independent, run them concurrently.
	excerpt := generationExcerpt(text)
	var summary, usageGuide string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		out, err := p.generator.GenerateText(groupCtx, summarySystemPrompt, excerpt)
		if err != nil {
			return fmt.Errorf("generate summary: %w", err)
		}
		summary = strings.TrimSpace(out)
		return nil
	})
	group.Go(func() error {
		out, err := p.generator.GenerateText(groupCtx, usageGuideSystemPrompt, excerpt)
		if err != nil {
			return fmt.Errorf("generate usage guide: %w", err)
		}
		usageGuide = strings.TrimSpace(out)
		return nil
	})
	if err := group.Wait(); err != nil {
		return err
	}

	if err := p.store.ReplaceChunks(knowledgeBaseID, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	if err := p.store.SetKnowledgeProcessed(knowledgeBaseID, store.ProcessedKnowledge{
		Summary:    summary,
		UsageGuide: usageGuide,
		ChunkCount: len(chunks),
		PageCount:  pages,
	}); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	return nil
}

func (p *Processor) download(ctx context.Context, key string) ([]byte, error) {
	url, err := p.objects.PresignGet(ctx, key, 5*time.Minute)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch object: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFileBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxFileBytes)
	}
	return data, nil
}

// generationExcerpt caps the text fed into the LLM prompts.
func generationExcerpt(text string) string {
	const maxRunes = 24000
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}
