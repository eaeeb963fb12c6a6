package curator

import (
	"context"
	"fmt"
	"strings"

	"matjip/apps/backend/internal/ai"
)

const (
	// ErrorMarker prefixes the answer returned when the final call fails.
	ErrorMarker = "GPT 호출 중 오류 발생"

	recommendCallSite = "recommend"
)

type RecommendRequest struct {
	Gender        string
	AgeGroup      string
	Foods         []string
	Times         []string
	RefinedPrompt string
	TopCategories []string
}

// Requester issues the single final recommendation call.
type Requester struct {
	client ai.AIClient
	model  string
}

func NewRequester(client ai.AIClient, model string) *Requester {
	return &Requester{client: client, model: model}
}

// Recommend always returns displayable text. A failed call, or a panic inside
// the client, comes back as ErrorMarker followed by the cause.
func (r *Requester) Recommend(ctx context.Context, req RecommendRequest) (answer string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			answer = fmt.Sprintf("%s: %v", ErrorMarker, recovered)
		}
	}()

	resp, err := r.client.Query(ctx, ai.AIModelRequest{
		CallSite:     recommendCallSite,
		Model:        r.model,
		SystemPrompt: buildSystemPrompt(req.TopCategories),
		UserPrompt:   buildUserPrompt(req),
	})
	if err != nil {
		return fmt.Sprintf("%s: %v", ErrorMarker, err)
	}
	return resp.Answer
}

func buildSystemPrompt(topCategories []string) string {
	return strings.Join([]string{
		"당신은 데이터 기반 맛집 전문가입니다.",
		fmt.Sprintf("통계적으로 이 사용자와 비슷한 그룹은 현재 [%s] 카테고리를 선호합니다.", strings.Join(topCategories, ", ")),
		"분석된 데이터와 사용자의 정돈된 요청을 조합해 최적의 맛집 3~5곳을 추천하세요.",
		"이모지를 섞어 친절하게 답변하세요.",
	}, "\n")
}

func buildUserPrompt(req RecommendRequest) string {
	foods := "없음"
	if len(req.Foods) > 0 {
		foods = strings.Join(req.Foods, ", ")
	}
	times := "무관"
	if len(req.Times) > 0 {
		times = strings.Join(req.Times, ", ")
	}
	return strings.Join([]string{
		fmt.Sprintf("- 사용자: %s/%s", req.Gender, req.AgeGroup),
		"- 선호 카테고리: " + foods,
		"- 희망 시간: " + times,
		"- 정돈된 상세 요청: " + req.RefinedPrompt,
	}, "\n")
}
