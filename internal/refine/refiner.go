// Package refine condenses long free-text requests before they reach the
// recommendation prompt.
//
// Text at or above the threshold is cut into overlapping chunks, each chunk is
// summarised into one sentence by the text-generation service, and the
// summaries are joined in chunk order.
package refine

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"matjip/apps/backend/internal/ai"
)

const (
	DefaultThreshold       = 300
	DefaultChunkSize       = 200
	DefaultChunkOverlap    = 50
	DefaultMaxOutputTokens = 100

	SummaryDelimiter = " | "
	CallSite         = "refine"

	summarySystemPrompt = "맛집 추천에 필요한 핵심 조건만 한 문장으로 요약하세요."
)

// Separators are tried in order: paragraph break, line break, sentence end,
// then bare space.
var Separators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts text into chunks. langchaingo text splitters satisfy it.
type Splitter interface {
	SplitText(text string) ([]string, error)
}

type Options struct {
	Threshold       int
	ChunkSize       int
	ChunkOverlap    int
	Model           string
	MaxOutputTokens int
	// Splitter overrides the recursive character splitter built from
	// ChunkSize and ChunkOverlap.
	Splitter Splitter
}

type Refiner struct {
	client          ai.AIClient
	splitter        Splitter
	threshold       int
	model           string
	maxOutputTokens int
}

func New(client ai.AIClient, opts Options) *Refiner {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = min(DefaultChunkOverlap, opts.ChunkSize/4)
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	splitter := opts.Splitter
	if splitter == nil {
		splitter = textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(opts.ChunkSize),
			textsplitter.WithChunkOverlap(opts.ChunkOverlap),
			textsplitter.WithSeparators(Separators),
		)
	}
	return &Refiner{
		client:          client,
		splitter:        splitter,
		threshold:       opts.Threshold,
		model:           opts.Model,
		maxOutputTokens: opts.MaxOutputTokens,
	}
}

// Refine returns text unchanged when it is shorter than the threshold
// (counted in characters). Otherwise it summarises each chunk with one
// sequential call and joins the results with SummaryDelimiter. The first
// failing call aborts the whole refinement.
func (r *Refiner) Refine(ctx context.Context, text string) (string, error) {
	if utf8.RuneCountInString(text) < r.threshold {
		return text, nil
	}

	chunks, err := r.splitter.SplitText(text)
	if err != nil {
		return "", fmt.Errorf("split request text: %w", err)
	}

	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		resp, err := r.client.Query(ctx, ai.AIModelRequest{
			CallSite:        CallSite,
			Model:           r.model,
			SystemPrompt:    summarySystemPrompt,
			UserPrompt:      chunk,
			MaxOutputTokens: r.maxOutputTokens,
		})
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		summaries = append(summaries, strings.TrimSpace(resp.Answer))
	}
	return strings.Join(summaries, SummaryDelimiter), nil
}
