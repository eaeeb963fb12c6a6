package refine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/textsplitter"

	"matjip/apps/backend/internal/ai"
)

type recordingClient struct {
	mu       sync.Mutex
	requests []ai.AIModelRequest
	failAt   int
}

func (c *recordingClient) Query(_ context.Context, req ai.AIModelRequest) (ai.AIModelResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.failAt > 0 && len(c.requests) == c.failAt {
		return ai.AIModelResponse{}, errors.New("upstream unavailable")
	}
	return ai.AIModelResponse{Answer: " summary of " + req.UserPrompt + " "}, nil
}

type fixedSplitter []string

func (s fixedSplitter) SplitText(string) ([]string, error) {
	return s, nil
}

func TestRefineReturnsShortTextUnchanged(t *testing.T) {
	client := &recordingClient{}
	r := New(client, Options{Threshold: 300})

	text := "조용한 분위기의 식당 추천해줘"
	got, err := r.Refine(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, text, got)

	again, err := r.Refine(context.Background(), got)
	require.NoError(t, err)
	assert.Equal(t, text, again)
	assert.Empty(t, client.requests)
}

func TestRefineCountsCharactersNotBytes(t *testing.T) {
	client := &recordingClient{}
	r := New(client, Options{Threshold: 10})

	// 9 Hangul syllables are 27 bytes but only 9 characters.
	text := strings.Repeat("맛", 9)
	got, err := r.Refine(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, text, got)
	assert.Empty(t, client.requests)
}

func TestRefineSummarizesEachChunkInOrder(t *testing.T) {
	client := &recordingClient{}
	r := New(client, Options{
		Threshold:       5,
		MaxOutputTokens: 100,
		Model:           "gpt-4o-mini",
		Splitter:        fixedSplitter{"first", "  ", "second", "third"},
	})

	got, err := r.Refine(context.Background(), "long enough request")
	require.NoError(t, err)
	assert.Equal(t, "summary of first | summary of second | summary of third", got)

	require.Len(t, client.requests, 3)
	for _, req := range client.requests {
		assert.Equal(t, CallSite, req.CallSite)
		assert.Equal(t, 100, req.MaxOutputTokens)
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Equal(t, summarySystemPrompt, req.SystemPrompt)
	}
}

func TestRefineFailsWholeRefinementOnCallError(t *testing.T) {
	client := &recordingClient{failAt: 2}
	r := New(client, Options{Threshold: 1, Splitter: fixedSplitter{"a", "b", "c"}})

	_, err := r.Refine(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 2/3")
	assert.Len(t, client.requests, 2)
}

func TestRefineWithRecursiveSplitter(t *testing.T) {
	client := &recordingClient{}
	r := New(client, Options{Threshold: 300, ChunkSize: 200, ChunkOverlap: 50})

	paragraph := strings.Repeat("회식 장소로 단체석이 있고 주차가 가능한 곳이면 좋겠어요. ", 6)
	text := paragraph + "\n\n" + paragraph + "\n" + paragraph

	expected, err := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(200),
		textsplitter.WithChunkOverlap(50),
		textsplitter.WithSeparators(Separators),
	).SplitText(text)
	require.NoError(t, err)
	require.Greater(t, len(expected), 1)

	got, err := r.Refine(context.Background(), text)
	require.NoError(t, err)
	assert.Len(t, client.requests, len(expected))
	assert.Equal(t, len(expected)-1, strings.Count(got, SummaryDelimiter))
}

func TestNewAppliesDefaults(t *testing.T) {
	r := New(&recordingClient{}, Options{ChunkSize: 40, ChunkOverlap: 40})
	assert.Equal(t, DefaultThreshold, r.threshold)
	assert.Equal(t, DefaultMaxOutputTokens, r.maxOutputTokens)
	assert.NotNil(t, r.splitter)
}
