// Package reviews condenses merged store reviews into short summaries.
//
// Input is a JSON-lines file of store cards. Stores with fewer than
// MinReviews reviews are skipped, as are stores with MaxReviews or more; each
// remaining store is summarised into one or two sentences.
package reviews

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"matjip/apps/backend/internal/ai"
	"matjip/apps/backend/internal/logging"
)

const (
	DefaultMinReviews      = 10
	DefaultMaxReviews      = 20
	DefaultMaxOutputTokens = 100

	CallSite = "review_digest"

	digestSystemPrompt = "사용자의 리뷰를 요약하는 전문가입니다. 이 리뷰의 핵심 내용을 간결하게 1~2문장으로 요약하세요."
)

// Count accepts a review count written either as a JSON number or as a
// numeric string.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(raw))
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("review_count: %w", err)
	}
	*c = Count(n)
	return nil
}

// Card is one line of the store-card file.
type Card struct {
	StoreName    string `json:"store_name"`
	ReviewCount  Count  `json:"review_count"`
	MergedReview string `json:"merged_review"`
}

type Summary struct {
	StoreName   string `json:"store_name"`
	ReviewCount int    `json:"review_count"`
	Summary     string `json:"summary"`
}

type Stats struct {
	Read       int `json:"read"`
	Skipped    int `json:"skipped"`
	Summarized int `json:"summarized"`
	Failed     int `json:"failed"`
}

type Options struct {
	Model           string
	MinReviews      int
	MaxReviews      int
	MaxOutputTokens int
}

type Digester struct {
	client ai.AIClient
	opts   Options
}

func NewDigester(client ai.AIClient, opts Options) *Digester {
	if opts.MinReviews <= 0 {
		opts.MinReviews = DefaultMinReviews
	}
	if opts.MaxReviews <= 0 {
		opts.MaxReviews = DefaultMaxReviews
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return &Digester{client: client, opts: opts}
}

// Eligible reports whether a card with n reviews gets summarised.
func (d *Digester) Eligible(n int) bool {
	return n >= d.opts.MinReviews && n < d.opts.MaxReviews
}

// Digest reads cards from r in order and passes each summary to emit. A
// failed summarisation is logged and counted; the run continues with the next
// card. Malformed input, an emit error or a cancelled ctx stops the run.
func (d *Digester) Digest(ctx context.Context, r io.Reader, emit func(Summary) error) (Stats, error) {
	var stats Stats
	log := logging.With("reviews")
	dec := json.NewDecoder(r)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		var card Card
		err := dec.Decode(&card)
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("decode store card %d: %w", stats.Read+1, err)
		}
		stats.Read++

		count := int(card.ReviewCount)
		if !d.Eligible(count) || strings.TrimSpace(card.MergedReview) == "" {
			stats.Skipped++
			continue
		}

		resp, err := d.client.Query(ctx, ai.AIModelRequest{
			CallSite:        CallSite,
			Model:           d.opts.Model,
			SystemPrompt:    digestSystemPrompt,
			UserPrompt:      card.MergedReview,
			MaxOutputTokens: d.opts.MaxOutputTokens,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Failed++
			log.Warn().Err(err).Str("store", card.StoreName).Msg("review summary failed")
			continue
		}

		if err := emit(Summary{
			StoreName:   card.StoreName,
			ReviewCount: count,
			Summary:     strings.TrimSpace(resp.Answer),
		}); err != nil {
			return stats, err
		}
		stats.Summarized++
	}
}
