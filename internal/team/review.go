package team

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgelight/quorum/pkg/models"
)

// ReviewFunc produces one reviewer's feedback on a work product. The
// engine is agnostic to how the feedback is produced; a capability
// provider usually backs it.
type ReviewFunc func(ctx context.Context, reviewer, workProduct string) (string, error)

// RequestPeerReview messages each reviewer about the work product and
// returns the review record in "requested" status with no reviews.
func (t *Team) RequestPeerReview(workProduct, author string, reviewers []string) *models.PeerReview {
	review := &models.PeerReview{
		ID:          uuid.New().String(),
		WorkProduct: workProduct,
		Author:      author,
		Reviewers:   reviewers,
		Status:      models.ReviewStatusRequested,
		Reviews:     []models.ReviewFeedback{},
		CreatedAt:   time.Now().UTC(),
	}

	for _, reviewer := range reviewers {
		t.SendMessage(author, []string{reviewer}, "review_request",
			"Peer review requested", workProduct,
			map[string]string{"review_id": review.ID})
	}

	return review
}

// ConductPeerReview requests a review, collects feedback from every
// reviewer through collect, aggregates it, and returns the completed
// record. A collection failure aborts the review.
func (t *Team) ConductPeerReview(ctx context.Context, workProduct, author string, reviewers []string, collect ReviewFunc) (*models.PeerReview, error) {
	review := t.RequestPeerReview(workProduct, author, reviewers)

	for _, reviewer := range reviewers {
		feedback, err := collect(ctx, reviewer, workProduct)
		if err != nil {
			return nil, fmt.Errorf("collect review from %s: %w", reviewer, err)
		}
		review.Reviews = append(review.Reviews, models.ReviewFeedback{
			Reviewer:  reviewer,
			Feedback:  feedback,
			Timestamp: time.Now().UTC(),
		})
	}

	review.AggregateFeedback = aggregateFeedback(review.Reviews)
	review.Status = models.ReviewStatusCompleted
	return review, nil
}

// aggregateFeedback merges reviewer feedback into a single summary,
// one attributed line per reviewer.
func aggregateFeedback(reviews []models.ReviewFeedback) string {
	var b strings.Builder
	for i, r := range reviews {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", r.Reviewer, r.Feedback)
	}
	return b.String()
}
