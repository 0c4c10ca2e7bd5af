package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_WalksModelsInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("404 model not found")}},
		MockResponse{Err: errors.New("quota")},
		MockResponse{Content: json.RawMessage(`["ok"]`)},
	)
	p := WithFallback(mock, []string{"m1", "m2", "m3", "m4"}, nil)

	resp, err := p.Generate(context.Background(), Prompt("", "hi"))
	require.NoError(t, err)
	assert.Equal(t, "m2", resp.Model)

	var models []string
	for _, c := range mock.Calls() {
		models = append(models, c.Model)
	}
	// mock's own ModelID is tried first.
	assert.Equal(t, []string{"mock", "m1", "m2"}, models)
}

func TestFallback_AllFail(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: errors.New("a")},
		MockResponse{Err: errors.New("b")},
	)
	p := WithFallback(mock, []string{"mock", "m2"}, nil)

	_, err := p.Generate(context.Background(), Prompt("", "hi"))
	var all *ErrAllModelsFailed
	require.ErrorAs(t, err, &all)
	require.Len(t, all.Attempts, 2)
	assert.Equal(t, "mock", all.Attempts[0].Model)
	assert.Equal(t, "m2", all.Attempts[1].Model)
	assert.Contains(t, err.Error(), "m2: b")
}

func TestFallback_ErrorsAsReachesModelErrors(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	p := WithFallback(mock, []string{"mock"}, nil)

	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestFallback_StopsOnContextError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: context.DeadlineExceeded},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithFallback(mock, []string{"mock", "m2"}, nil)

	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mock.CallCount())
}

func TestFallback_ExplicitModelNotWalked(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: errors.New("nope")})
	p := WithFallback(mock, []string{"m1", "m2"}, nil)

	_, err := p.Generate(context.Background(), Request{Model: "pinned"})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "pinned", mock.Calls()[0].Model)
}

func TestFallback_EmptyListIsPassthrough(t *testing.T) {
	mock := NewMockProvider()
	assert.Same(t, Provider(mock), WithFallback(mock, nil, nil))
}
