package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"msydash/pkg/contracts/domain"
)

// freshIngredients have high spoilage and trigger the waste recommendation.
var freshIngredients = []string{"Green Onion", "Cilantro", "Bokchoy"}

// InsightsService produces purchasing and menu recommendations from a
// snapshot. Rule-based suggestions always run; when a Gemini API key is
// configured an additional narrative suggestion is generated per request.
// The AI path is strictly additive — any failure degrades to rules only.
type InsightsService struct {
	apiKey string
	model  string
	logger *slog.Logger
}

// NewInsightsService creates the service. An empty apiKey disables the AI
// path entirely.
func NewInsightsService(apiKey, model string, logger *slog.Logger) *InsightsService {
	if logger == nil {
		logger = slog.Default()
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &InsightsService{
		apiKey: apiKey,
		model:  model,
		logger: logger.With(slog.String("component", "insights_service")),
	}
}

// Recommendations builds the suggestion list for the current snapshot.
func (s *InsightsService) Recommendations(ctx context.Context, snap *domain.MetricsSnapshot) []domain.Recommendation {
	recs := ruleRecommendations(snap)

	if s.apiKey != "" {
		if aiRec, err := s.generate(ctx, snap); err != nil {
			s.logger.WarnContext(ctx, "ai recommendation unavailable, serving rules only",
				slog.String("error", err.Error()))
		} else {
			recs = append(recs, *aiRec)
		}
	}
	return recs
}

// ruleRecommendations derives the fixed suggestions from shipment and menu
// structure.
func ruleRecommendations(snap *domain.MetricsSnapshot) []domain.Recommendation {
	var recs []domain.Recommendation

	var highFreq []string
	for _, entry := range snap.Schedule {
		if entry.Shipments >= 4 {
			highFreq = append(highFreq, entry.Ingredient)
		}
		if len(highFreq) == 2 {
			break
		}
	}
	if len(highFreq) > 0 {
		recs = append(recs, domain.Recommendation{
			Kind:    domain.RecommendationRule,
			Title:   "Bulk Buying Opportunity",
			Message: fmt.Sprintf("Consider monthly contracts for %s to save 10-15%%", strings.Join(highFreq, ", ")),
		})
	}

	for _, entry := range snap.Schedule {
		if containsAny(entry.Ingredient, freshIngredients) {
			recs = append(recs, domain.Recommendation{
				Kind:    domain.RecommendationRule,
				Title:   "Reduce Waste",
				Message: "Fresh vegetables have high spoilage. Optimize for 5-day freshness.",
			})
			break
		}
	}

	if len(snap.Overlap.Items) > 0 {
		recs = append(recs, domain.Recommendation{
			Kind:    domain.RecommendationRule,
			Title:   "Menu Engineering",
			Message: fmt.Sprintf("Promote dishes with overlapping ingredients (%d items).", len(snap.Overlap.Items)),
		})
	}
	return recs
}

// generate asks Gemini for one narrative suggestion grounded on the
// snapshot's headline numbers.
func (s *InsightsService) generate(ctx context.Context, snap *domain.MetricsSnapshot) (*domain.Recommendation, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.model)
	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(snap)))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty model response")
	}
	return &domain.Recommendation{
		Kind:    domain.RecommendationAI,
		Title:   "Inventory Insight",
		Message: text,
	}, nil
}

func buildPrompt(snap *domain.MetricsSnapshot) string {
	var b strings.Builder
	b.WriteString("You are advising a restaurant manager on inventory. ")
	b.WriteString("In two sentences, suggest one concrete purchasing or menu action based on these numbers. ")
	fmt.Fprintf(&b, "Menu items: %d. Tracked ingredients: %d. Weekly shipments: %d. ",
		snap.KPIs.TotalMenuItems, snap.KPIs.TotalIngredients, snap.KPIs.WeeklyShipments)
	if len(snap.TopDrivers) > 0 {
		b.WriteString("Top cost drivers: ")
		for i, d := range snap.TopDrivers {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s ($%s)", d.Ingredient, d.Total.StringFixed(2))
		}
		b.WriteString(".")
	}
	return b.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func containsAny(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
