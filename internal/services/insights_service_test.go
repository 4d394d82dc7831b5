package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msydash/pkg/contracts/domain"
)

func insightsFixture() *domain.MetricsSnapshot {
	return &domain.MetricsSnapshot{
		Schedule: []domain.ScheduleEntry{
			{Supplier: "Acme Foods", Ingredient: "beef", Shipments: 5},
			{Supplier: "Acme Foods", Ingredient: "egg", Shipments: 6},
			{Supplier: "Green Farm", Ingredient: "Green Onion", Shipments: 2},
		},
		Overlap: domain.OverlapMatrix{Items: []string{"Beef Ramen", "Pad Thai"}},
	}
}

func TestRecommendationsRulesOnlyWithoutAPIKey(t *testing.T) {
	svc := NewInsightsService("", "", nil)

	recs := svc.Recommendations(context.Background(), insightsFixture())
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, domain.RecommendationRule, rec.Kind)
	}

	assert.Equal(t, "Bulk Buying Opportunity", recs[0].Title)
	assert.Contains(t, recs[0].Message, "beef, egg")
	assert.Equal(t, "Reduce Waste", recs[1].Title)
	assert.Equal(t, "Menu Engineering", recs[2].Title)
	assert.Contains(t, recs[2].Message, "2 items")
}

func TestRecommendationsEmptySnapshot(t *testing.T) {
	svc := NewInsightsService("", "", nil)
	recs := svc.Recommendations(context.Background(), &domain.MetricsSnapshot{})
	assert.Empty(t, recs)
}

func TestRuleRecommendationsSkipLowFrequency(t *testing.T) {
	snap := &domain.MetricsSnapshot{
		Schedule: []domain.ScheduleEntry{
			{Ingredient: "beef", Shipments: 3},
		},
	}
	assert.Empty(t, ruleRecommendations(snap))
}
