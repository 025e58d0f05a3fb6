package models

import "time"

// Message is one immutable entry in a team's message log.
type Message struct {
	// ID is the unique identifier for this message.
	ID string `json:"id"`
	// Timestamp is when the message was appended.
	Timestamp time.Time `json:"timestamp"`
	// Sender is the name of the sending agent.
	Sender string `json:"sender"`
	// Recipients are the names of the receiving agents.
	Recipients []string `json:"recipients"`
	// Type categorizes the message (e.g. "status", "review_request").
	Type string `json:"type"`
	// Subject is the short message subject.
	Subject string `json:"subject,omitempty"`
	// Content is the message body.
	Content string `json:"content"`
	// Metadata carries arbitrary key/value annotations.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Peer review statuses.
const (
	// ReviewStatusRequested indicates reviewers were messaged but no
	// reviews have been collected yet.
	ReviewStatusRequested = "requested"
	// ReviewStatusCompleted indicates reviews were collected and
	// aggregated.
	ReviewStatusCompleted = "completed"
)

// ReviewFeedback is one reviewer's feedback on a work product.
type ReviewFeedback struct {
	// Reviewer is the name of the reviewing agent.
	Reviewer string `json:"reviewer"`
	// Feedback is the review content.
	Feedback string `json:"feedback"`
	// Timestamp is when the review was collected.
	Timestamp time.Time `json:"timestamp"`
}

// PeerReview tracks a review of one work product by a set of
// reviewer agents.
type PeerReview struct {
	// ID is the unique identifier for this review.
	ID string `json:"id"`
	// WorkProduct is the artifact under review.
	WorkProduct string `json:"work_product"`
	// Author is the name of the agent that produced the work.
	Author string `json:"author"`
	// Reviewers are the names of the reviewing agents.
	Reviewers []string `json:"reviewers"`
	// Status is "requested" or "completed".
	Status string `json:"status"`
	// Reviews holds the collected reviews, empty until conducted.
	Reviews []ReviewFeedback `json:"reviews"`
	// AggregateFeedback merges all collected reviews.
	AggregateFeedback string `json:"aggregate_feedback,omitempty"`
	// CreatedAt is when the review was requested.
	CreatedAt time.Time `json:"created_at"`
}
