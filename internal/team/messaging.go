package team

import (
	"time"

	"github.com/google/uuid"

	"github.com/forgelight/quorum/pkg/models"
)

// MessageFilter selects messages from the team log. Zero-value fields
// match everything; Metadata entries must all match exactly.
type MessageFilter struct {
	// Recipient matches messages addressed to this agent.
	Recipient string
	// Sender matches messages sent by this agent.
	Sender string
	// Type matches messages of this type.
	Type string
	// Metadata matches messages whose metadata contains every listed
	// key with exactly the listed value.
	Metadata map[string]string
}

// SendMessage appends an immutable message to the team log and
// returns it.
func (t *Team) SendMessage(sender string, recipients []string, msgType, subject, content string, metadata map[string]string) models.Message {
	msg := models.Message{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		Sender:     sender,
		Recipients: recipients,
		Type:       msgType,
		Subject:    subject,
		Content:    content,
		Metadata:   metadata,
	}
	t.messages = append(t.messages, msg)
	return msg
}

// BroadcastMessage sends a message to every team member except the
// sender and returns it.
func (t *Team) BroadcastMessage(sender, msgType, subject, content string, metadata map[string]string) models.Message {
	var recipients []string
	for _, m := range t.members {
		if m.Name() != sender {
			recipients = append(recipients, m.Name())
		}
	}
	return t.SendMessage(sender, recipients, msgType, subject, content, metadata)
}

// GetMessages returns the messages matching the filter, in append
// order.
func (t *Team) GetMessages(filter MessageFilter) []models.Message {
	var out []models.Message
	for _, msg := range t.messages {
		if filter.Sender != "" && msg.Sender != filter.Sender {
			continue
		}
		if filter.Type != "" && msg.Type != filter.Type {
			continue
		}
		if filter.Recipient != "" && !containsString(msg.Recipients, filter.Recipient) {
			continue
		}
		if !metadataMatches(msg.Metadata, filter.Metadata) {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func metadataMatches(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}
