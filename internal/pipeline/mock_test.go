package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JahirJmnz/marketpulse/pkg/saptiva"
	"github.com/JahirJmnz/marketpulse/pkg/tavily"
)

type mockAI struct {
	mock.Mock
}

var _ saptiva.Client = (*mockAI)(nil)

func (m *mockAI) Complete(ctx context.Context, prompt string, opts saptiva.CompletionOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

type mockSearch struct {
	mock.Mock
}

var _ tavily.Client = (*mockSearch)(nil)

func (m *mockSearch) Search(ctx context.Context, params tavily.SearchParams) (*tavily.SearchResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tavily.SearchResponse), args.Error(1)
}

func (m *mockSearch) SearchCompetitor(ctx context.Context, competitorName string, opts tavily.CompetitorSearchOptions) ([]tavily.SearchResult, error) {
	args := m.Called(ctx, competitorName, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tavily.SearchResult), args.Error(1)
}
