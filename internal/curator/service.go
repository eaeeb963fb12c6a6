package curator

import (
	"context"
	"strings"
	"time"

	"matjip/apps/backend/internal/logging"
	"matjip/apps/backend/internal/metrics"
	"matjip/apps/backend/internal/recommend"
)

// Result is what the result screen shows.
type Result struct {
	TopCategories []string                  `json:"top_categories"`
	Scores        []recommend.CategoryScore `json:"scores"`
	Answer        string                    `json:"answer"`
	RefinedPrompt string                    `json:"refined_prompt"`
	GeneratedAt   time.Time                 `json:"generated_at"`
}

// Refiner condenses the free-text request.
type Refiner interface {
	Refine(ctx context.Context, text string) (string, error)
}

// Service runs one recommendation: score categories, refine the request,
// then ask for the final answer.
type Service struct {
	tables    *recommend.Provider
	scorer    recommend.Scorer
	refiner   Refiner
	requester *Requester
	now       func() time.Time
}

func NewService(tables *recommend.Provider, scorer recommend.Scorer, refiner Refiner, requester *Requester) *Service {
	return &Service{
		tables:    tables,
		scorer:    scorer,
		refiner:   refiner,
		requester: requester,
		now:       time.Now,
	}
}

// Curate validates form and produces a Result. Only validation errors are
// returned; refinement failures fall back to the raw request and a failed
// final call is reported inside Result.Answer.
func (s *Service) Curate(ctx context.Context, form Form) (Result, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		metrics.Recommendations.WithLabelValues("invalid").Inc()
		return Result{}, err
	}
	log := logging.With("curator")

	scores, err := s.scorer.Score(s.tables.Table(ctx), form.Query())
	if err != nil {
		metrics.Recommendations.WithLabelValues("invalid").Inc()
		return Result{}, err
	}
	top := make([]string, len(scores))
	for i, item := range scores {
		top[i] = item.Category
	}

	refined, err := s.refiner.Refine(ctx, form.Prompt)
	if err != nil {
		metrics.RefineFallbacks.Inc()
		log.Warn().Err(err).Msg("prompt refinement failed; using raw request")
		refined = form.Prompt
	}

	answer := s.requester.Recommend(ctx, RecommendRequest{
		Gender:        recommend.ParseGender(form.Gender).Label(),
		AgeGroup:      form.AgeGroup,
		Foods:         form.Foods,
		Times:         form.Times,
		RefinedPrompt: refined,
		TopCategories: top,
	})
	outcome := "ok"
	if IsErrorAnswer(answer) {
		outcome = "llm_error"
	}
	metrics.Recommendations.WithLabelValues(outcome).Inc()
	log.Info().
		Strs("top_categories", top).
		Int("refined_len", len(refined)).
		Str("outcome", outcome).
		Msg("recommendation generated")

	return Result{
		TopCategories: top,
		Scores:        scores,
		Answer:        answer,
		RefinedPrompt: refined,
		GeneratedAt:   s.now().UTC(),
	}, nil
}

// IsErrorAnswer reports whether answer is the requester's error text.
func IsErrorAnswer(answer string) bool {
	return strings.HasPrefix(answer, ErrorMarker)
}
