package dto

import "time"

type SendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	Text       string `json:"text"`
}

type MessageResponse struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Text       string    `json:"text"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

type SendMessageResponse struct {
	Message   MessageResponse `json:"message"`
	Sent      int             `json:"sent"`
	Remaining int             `json:"remaining"`
}

type ConversationResponse struct {
	Items []MessageResponse `json:"items"`
}

type MarkReadRequest struct {
	SenderID int64 `json:"sender_id"`
}

type MarkReadResponse struct {
	OK bool `json:"ok"`
}
