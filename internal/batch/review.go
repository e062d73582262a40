package batch

import (
	"context"
	"fmt"
	"os"

	"github.com/kastheco/orchestra/config/planparser"
	"github.com/kastheco/orchestra/config/planstore"
	"github.com/kastheco/orchestra/session"
)

// PostReview asks a worker to review the finished run and records the
// features it suggests in the spec at specPath.
func PostReview(ctx context.Context, w session.Worker, specPath string) (planparser.Review, int, error) {
	data, err := os.ReadFile(specPath)
	if err != nil {
		return planparser.Review{}, 0, fmt.Errorf("failed to read spec for post-review: %w", err)
	}
	plan, _ := planstore.DecodePlan(string(data))

	raw, err := session.Ask(ctx, w, "post_review", session.PostReviewPrompt(string(data), plan.DomainText()))
	if err != nil {
		return planparser.Review{}, 0, err
	}
	review, err := planparser.ParseReview(raw)
	if err != nil {
		return planparser.Review{}, 0, err
	}
	added, err := planstore.AppendFeatures(specPath, review.Feature)
	if err != nil {
		return review, 0, err
	}
	return review, added, nil
}
