package httpdto

import (
	"time"

	"groupchat/internal/domain/message"
	"groupchat/internal/services"
)

// SendMessageRequest is used for POST /chats/:id/messages
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// EditMessageRequest is used for PATCH /messages/:id
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// AttachRequest is used for POST /messages/:id/attachments
type AttachRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes" binding:"required"`
}

type MessageDTO struct {
	ID        string  `json:"id"`
	ChatID    string  `json:"chat_id"`
	SenderID  string  `json:"sender_id"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"created_at"`
	EditedAt  *string `json:"edited_at,omitempty"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

type AttachmentDTO struct {
	ID          string `json:"id"`
	MessageID   string `json:"message_id"`
	AddedByID   string `json:"added_by_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
	UploadedAt  string `json:"uploaded_at"`
	URL         string `json:"url,omitempty"`
}

type AttachUploadResponse struct {
	Attachment AttachmentDTO     `json:"attachment"`
	UploadURL  string            `json:"upload_url"`
	Headers    map[string]string `json:"headers,omitempty"`
	ExpiresAt  string            `json:"expires_at"`
}

func FromMessage(m message.Message) MessageDTO {
	dto := MessageDTO{
		ID:        m.ID.String(),
		ChatID:    m.ChatID.String(),
		SenderID:  m.SenderID.String(),
		Content:   m.Content,
		CreatedAt: formatTime(m.CreatedAt),
	}
	if m.EditedAt != nil {
		edited := formatTime(*m.EditedAt)
		dto.EditedAt = &edited
	}
	return dto
}

func FromMessages(items []message.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(items))
	for _, m := range items {
		out = append(out, FromMessage(m))
	}
	return out
}

func FromAttachment(a message.Attachment, url string) AttachmentDTO {
	return AttachmentDTO{
		ID:          a.ID.String(),
		MessageID:   a.MessageID.String(),
		AddedByID:   a.AddedByID.String(),
		FileName:    a.FileName,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		UploadedAt:  formatTime(a.UploadedAt),
		URL:         url,
	}
}

func FromAttachmentUpload(u services.AttachmentUpload) AttachUploadResponse {
	return AttachUploadResponse{
		Attachment: FromAttachment(u.Attachment, ""),
		UploadURL:  u.Upload.URL,
		Headers:    u.Upload.Headers,
		ExpiresAt:  formatTime(u.Upload.ExpiresAt),
	}
}

func FromAttachmentViews(items []services.AttachmentView) []AttachmentDTO {
	out := make([]AttachmentDTO, 0, len(items))
	for _, v := range items {
		out = append(out, FromAttachment(v.Attachment, v.URL))
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
