package curator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matjip/apps/backend/internal/ai"
	"matjip/apps/backend/internal/recommend"
)

type stubClient struct {
	requests []ai.AIModelRequest
	answer   string
	err      error
	panicMsg string
}

func (c *stubClient) Query(_ context.Context, req ai.AIModelRequest) (ai.AIModelResponse, error) {
	c.requests = append(c.requests, req)
	if c.panicMsg != "" {
		panic(c.panicMsg)
	}
	if c.err != nil {
		return ai.AIModelResponse{}, c.err
	}
	return ai.AIModelResponse{Answer: c.answer}, nil
}

type stubRefiner struct {
	out string
	err error
	in  []string
}

func (r *stubRefiner) Refine(_ context.Context, text string) (string, error) {
	r.in = append(r.in, text)
	if r.err != nil {
		return "", r.err
	}
	if r.out == "" {
		return text, nil
	}
	return r.out, nil
}

func TestFormValidate(t *testing.T) {
	valid := Form{Gender: "남성", AgeGroup: "20대", Foods: []string{"한식"}, Times: []string{"11~13시"}}
	require.NoError(t, valid.Validate())

	noFood := valid
	noFood.Foods = nil
	assert.ErrorIs(t, noFood.Validate(), ErrNoFoodSelected)

	noTime := valid
	noTime.Times = []string{}
	assert.ErrorIs(t, noTime.Validate(), ErrNoTimeSelected)

	badFood := valid
	badFood.Foods = []string{"피자"}
	assert.ErrorIs(t, badFood.Validate(), ErrUnknownCategory)

	badTime := valid
	badTime.Times = []string{"10~12시"}
	assert.ErrorIs(t, badTime.Validate(), ErrUnknownTimeLabel)
}

func TestFormNormalizeDropsBlankSelections(t *testing.T) {
	form := Form{Gender: " 여성 ", Foods: []string{" ", "양식 "}, Times: []string{""}, Prompt: "  데이트  "}.Normalize()
	assert.Equal(t, "여성", form.Gender)
	assert.Equal(t, []string{"양식"}, form.Foods)
	assert.Empty(t, form.Times)
	assert.Equal(t, "데이트", form.Prompt)
}

func TestRequesterBuildsPromptsAndReturnsAnswer(t *testing.T) {
	client := &stubClient{answer: "추천 목록"}
	r := NewRequester(client, "gpt-4o-mini")

	got := r.Recommend(context.Background(), RecommendRequest{
		Gender:        "남성",
		AgeGroup:      "30대",
		Foods:         []string{"한식", "술"},
		Times:         []string{"19~21시"},
		RefinedPrompt: "회식 장소",
		TopCategories: []string{"고기", "한식"},
	})
	assert.Equal(t, "추천 목록", got)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Zero(t, req.MaxOutputTokens)
	assert.Contains(t, req.SystemPrompt, "[고기, 한식]")
	assert.Contains(t, req.UserPrompt, "- 사용자: 남성/30대")
	assert.Contains(t, req.UserPrompt, "- 선호 카테고리: 한식, 술")
	assert.Contains(t, req.UserPrompt, "- 희망 시간: 19~21시")
	assert.Contains(t, req.UserPrompt, "- 정돈된 상세 요청: 회식 장소")
}

func TestRequesterUsesPlaceholdersForEmptySelections(t *testing.T) {
	client := &stubClient{answer: "ok"}
	NewRequester(client, "").Recommend(context.Background(), RecommendRequest{Gender: "여성", AgeGroup: "20대"})

	require.Len(t, client.requests, 1)
	assert.Contains(t, client.requests[0].UserPrompt, "- 선호 카테고리: 없음")
	assert.Contains(t, client.requests[0].UserPrompt, "- 희망 시간: 무관")
	assert.Contains(t, client.requests[0].SystemPrompt, "[]")
}

func TestRequesterNeverReturnsErrors(t *testing.T) {
	failing := NewRequester(&stubClient{err: errors.New("connection reset")}, "m")
	got := failing.Recommend(context.Background(), RecommendRequest{})
	assert.True(t, strings.HasPrefix(got, ErrorMarker), got)
	assert.Contains(t, got, "connection reset")
	assert.True(t, IsErrorAnswer(got))

	panicking := NewRequester(&stubClient{panicMsg: "nil map"}, "m")
	var got2 string
	require.NotPanics(t, func() {
		got2 = panicking.Recommend(context.Background(), RecommendRequest{})
	})
	assert.Contains(t, got2, ErrorMarker)
	assert.Contains(t, got2, "nil map")
}

func newTestService(client ai.AIClient, refiner Refiner) *Service {
	table := recommend.Table{
		"2_M_1_11": {{Category: "A", Score: 2}, {Category: "B", Score: 4}},
		"2_M_2_12": {{Category: "A", Score: 3}, {Category: "B", Score: 5}, {Category: "C", Score: 1}},
	}
	svc := NewService(
		recommend.NewProvider(recommend.StaticSource(table)),
		recommend.Scorer{Policy: recommend.HourPolicyFullDay},
		refiner,
		NewRequester(client, "gpt-4o-mini"),
	)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestServiceCurate(t *testing.T) {
	client := &stubClient{answer: "맛집 3곳"}
	refiner := &stubRefiner{out: "조용한 곳"}
	svc := newTestService(client, refiner)

	result, err := svc.Curate(context.Background(), Form{
		Gender:   "남성",
		AgeGroup: "20대",
		Foods:    []string{"한식"},
		Times:    []string{"11~13시"},
		Prompt:   " 조용한 분위기의 식당 ",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, result.TopCategories)
	assert.Equal(t, "맛집 3곳", result.Answer)
	assert.Equal(t, "조용한 곳", result.RefinedPrompt)
	assert.Equal(t, []string{"조용한 분위기의 식당"}, refiner.in)
	assert.Equal(t, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), result.GeneratedAt)
	require.Len(t, client.requests, 1)
	assert.Contains(t, client.requests[0].SystemPrompt, "[B, A, C]")
}

func TestServiceCurateFallsBackToRawPrompt(t *testing.T) {
	client := &stubClient{answer: "ok"}
	svc := newTestService(client, &stubRefiner{err: errors.New("quota exceeded")})

	result, err := svc.Curate(context.Background(), Form{
		Gender: "남성", AgeGroup: "20대", Foods: []string{"한식"}, Times: []string{"11~13시"}, Prompt: "원문 요청",
	})
	require.NoError(t, err)
	assert.Equal(t, "원문 요청", result.RefinedPrompt)
	assert.Contains(t, client.requests[0].UserPrompt, "원문 요청")
}

func TestServiceCurateRejectsInvalidFormWithoutCalls(t *testing.T) {
	client := &stubClient{answer: "ok"}
	refiner := &stubRefiner{}
	svc := newTestService(client, refiner)

	_, err := svc.Curate(context.Background(), Form{Gender: "남성", AgeGroup: "20대", Times: []string{"11~13시"}})
	assert.ErrorIs(t, err, ErrNoFoodSelected)
	assert.Empty(t, client.requests)
	assert.Empty(t, refiner.in)
}

func TestServiceCurateReportsLLMFailureInAnswer(t *testing.T) {
	svc := newTestService(&stubClient{err: errors.New("timeout")}, &stubRefiner{})

	result, err := svc.Curate(context.Background(), Form{
		Gender: "여성", AgeGroup: "40대", Foods: []string{"카페/디저트"}, Times: []string{"15~17시"},
	})
	require.NoError(t, err)
	assert.True(t, IsErrorAnswer(result.Answer))
	assert.Empty(t, result.TopCategories)
}
