package model

import (
	"fmt"

	"github.com/google/uuid"
)

// LinkTask represents one URL extracted from one message. Each task is
// owned by exactly one orchestration run and produces exactly one Outcome.
type LinkTask struct {
	ID             string
	URL            string
	SequenceIndex  int    // 1-based position of the link within the message
	ChatID         int64  // originating chat
	MessageID      int    // originating message
	OutputTemplate string // engine output template with %(ext)s placeholder
}

// NewLinkTask creates a task for one extracted link. The output template
// stem combines chat id, message id and link sequence number, so files
// from concurrently processed messages never collide.
func NewLinkTask(url string, index int, chatID int64, messageID int, workDir string) *LinkTask {
	return &LinkTask{
		ID:             generateTaskID(),
		URL:            url,
		SequenceIndex:  index,
		ChatID:         chatID,
		MessageID:      messageID,
		OutputTemplate: fmt.Sprintf("%s/%d-%d-%d.%%(ext)s", workDir, chatID, messageID, index),
	}
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return "task-" + uuid.New().String()
}
