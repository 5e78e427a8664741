package queue

import (
	"encoding/json"
	"fmt"
)

const (
	// TypeUploadTicketed is sent when an upload URL is handed out.
	TypeUploadTicketed = "upload.ticketed"
	messageVersion     = 1
)

// Message is the payload sent to the orphan sweeper.
type Message struct {
	Type         string `json:"type"`
	FileKey      string `json:"fileKey"`
	UserID       string `json:"userId"`
	DocumentType string `json:"documentType"`
	RequestID    string `json:"requestId,omitempty"`
	EnqueuedAt   string `json:"enqueuedAt"`
	Version      int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.Version == 0 {
		msg.Version = messageVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Version > messageVersion {
		return Message{}, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	return msg, nil
}
