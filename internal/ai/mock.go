package ai

import (
	"context"
	"strings"
)

// MockAIClient answers without network access. It is used with
// AI_PROVIDER=mock and in tests.
type MockAIClient struct {
	Model string
}

func (m MockAIClient) Query(_ context.Context, req AIModelRequest) (AIModelResponse, error) {
	question := strings.TrimSpace(req.UserPrompt)
	if question == "" {
		question = "No request provided."
	}

	var answer string
	switch req.CallSite {
	case "refine":
		answer = "요약: " + firstLine(question)
	case "review_digest":
		answer = "리뷰 요약: " + firstLine(question)
	default:
		answer = strings.Join([]string{
			"🍽️ Mock 추천 결과입니다.",
			"1) 동네 한식당 - 조용한 분위기",
			"2) 파스타 비스트로 - 데이트 코스",
			"3) 이자카야 - 늦은 시간까지 영업",
			"요청: " + firstLine(question),
		}, "\n")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = strings.TrimSpace(m.Model)
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return AIModelResponse{
		Answer: answer,
		Model:  model,
		Usage: AIUsage{
			PromptTokens:     120,
			CompletionTokens: 80,
			TotalTokens:      200,
		},
	}, nil
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line)
}
