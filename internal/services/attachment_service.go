//go:generate go run go.uber.org/mock/mockgen -source=attachment_service.go -destination=../mocks/mock_presigner.go -package=mocks
package services

import (
	"context"
	"fmt"
	"strings"

	"groupchat/internal/domain/message"
	"groupchat/internal/domain/user"
	"groupchat/internal/proxy"
	"groupchat/internal/repository"
	"groupchat/internal/storage"
	groupchat_errors "groupchat/pkg/errors"
	"groupchat/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Presigner signs direct uploads to object storage.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, sizeBytes int64) (storage.PresignedUpload, error)
	FileURL(key string) string
}

type AttachmentInput struct {
	FileName    string
	ContentType string
	SizeBytes   int64
}

type AttachmentUpload struct {
	ChatID     uuid.UUID
	Attachment message.Attachment
	Upload     storage.PresignedUpload
}

type AttachmentView struct {
	Attachment message.Attachment
	URL        string
}

type AttachmentService struct {
	store    repository.Store
	access   *proxy.AccessControl
	storage  Presigner
	maxBytes int64
	log      *logger.Logger
}

func NewAttachmentService(store repository.Store, access *proxy.AccessControl, presigner Presigner, maxBytes int64, log *logger.Logger) *AttachmentService {
	return &AttachmentService{
		store:    store,
		access:   access,
		storage:  presigner,
		maxBytes: maxBytes,
		log:      log,
	}
}

// Attach records attachment metadata on a message and returns a presigned
// upload for the body. The row is rolled back if signing fails.
func (s *AttachmentService) Attach(ctx context.Context, ref message.Ref, actor user.User, in AttachmentInput) (AttachmentUpload, error) {
	in.FileName = strings.TrimSpace(in.FileName)
	if in.FileName == "" {
		return AttachmentUpload{}, groupchat_errors.InvalidInput("file name is empty")
	}
	if in.SizeBytes <= 0 {
		return AttachmentUpload{}, groupchat_errors.InvalidInput("size must be positive")
	}
	if s.maxBytes > 0 && in.SizeBytes > s.maxBytes {
		return AttachmentUpload{}, fmt.Errorf("%w: %d bytes exceeds %d", groupchat_errors.ErrTooLarge, in.SizeBytes, s.maxBytes)
	}

	var out AttachmentUpload
	err := atomic(ctx, s.store, s.log, "attach file", func(tx repository.Store) error {
		m, err := tx.Messages().GetByID(ctx, ref.ID())
		if err != nil {
			return err
		}
		c, err := tx.Chats().GetByID(ctx, m.ChatID)
		if err != nil {
			return err
		}
		if err := s.access.CanSendMessage(ctx, actor, c); err != nil {
			return err
		}

		id := uuid.New()
		a := message.Attachment{
			ID:          id,
			MessageID:   m.ID,
			AddedByID:   actor.ID,
			ObjectKey:   storage.AttachmentKey(c.ID, m.ID, id, in.FileName),
			FileName:    in.FileName,
			ContentType: in.ContentType,
			SizeBytes:   in.SizeBytes,
			UploadedAt:  now(),
		}
		if err := a.Validate(); err != nil {
			return err
		}
		if err := tx.Attachments().Create(ctx, &a); err != nil {
			return err
		}
		upload, err := s.storage.PresignPut(ctx, a.ObjectKey, a.ContentType, a.SizeBytes)
		if err != nil {
			return err
		}
		out = AttachmentUpload{ChatID: c.ID, Attachment: a, Upload: upload}
		return nil
	})
	if err != nil {
		return AttachmentUpload{}, err
	}
	s.log.Info(ctx, "attachment added",
		zap.String("attachment_id", out.Attachment.ID.String()),
		zap.String("message_id", out.Attachment.MessageID.String()),
		zap.Int64("size_bytes", out.Attachment.SizeBytes),
	)
	return out, nil
}

func (s *AttachmentService) List(ctx context.Context, ref message.Ref, viewer user.User) ([]AttachmentView, error) {
	m, err := s.store.Messages().GetByID(ctx, ref.ID())
	if err != nil {
		return nil, storeError(ctx, s.log, "list attachments", err)
	}
	c, err := s.store.Chats().GetByID(ctx, m.ChatID)
	if err != nil {
		return nil, storeError(ctx, s.log, "list attachments", err)
	}
	if err := s.access.CanViewChat(ctx, viewer, c); err != nil {
		return nil, err
	}
	attachments, err := s.store.Attachments().ListByMessage(ctx, m.ID)
	if err != nil {
		return nil, storeError(ctx, s.log, "list attachments", err)
	}
	return lo.Map(attachments, func(a message.Attachment, _ int) AttachmentView {
		return AttachmentView{Attachment: a, URL: s.storage.FileURL(a.ObjectKey)}
	}), nil
}
