package domain

// RecommendationKind classifies where a recommendation came from.
type RecommendationKind string

const (
	RecommendationRule RecommendationKind = "rule"
	RecommendationAI   RecommendationKind = "ai"
)

// Recommendation is an actionable purchasing or menu suggestion. Rule-based
// entries are derived from the snapshot; AI entries are generated on demand
// and are never part of the snapshot itself.
type Recommendation struct {
	Kind    RecommendationKind `json:"kind"`
	Title   string             `json:"title"`
	Message string             `json:"message"`
}
