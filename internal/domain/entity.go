package domain

import (
	"fmt"
	"time"
)

// ChatLogTimeLayout is the timestamp form written to the chat log
const ChatLogTimeLayout = "2006-01-02 15:04:05"

// ChatLogEntry is one inbound message as recorded before dispatch
type ChatLogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	Sender    string    `json:"sender" gorm:"index"`
	PeerID    string    `json:"peer_id"`
	Message   string    `json:"message"`
}

// Line renders the entry as `<timestamp>: <sender> - <message>` without a newline
func (e ChatLogEntry) Line() string {
	return fmt.Sprintf("%s: %s - %s", e.Timestamp.Format(ChatLogTimeLayout), e.Sender, e.Message)
}
