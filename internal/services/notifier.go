package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/nexovate-backend/internal/data/repos"
	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/platform/sendgrid"
)

// DocumentNotifier tells a user their document is ready. Delivery is best effort.
type DocumentNotifier interface {
	DocumentReady(ctx context.Context, userID uuid.UUID, artifact *types.Artifact, data []byte) error
}

type noopNotifier struct{}

func NewNoopNotifier() DocumentNotifier { return noopNotifier{} }

func (noopNotifier) DocumentReady(context.Context, uuid.UUID, *types.Artifact, []byte) error {
	return nil
}

type emailNotifier struct {
	log      *logger.Logger
	mail     sendgrid.Client
	userRepo repos.UserRepo
}

func NewEmailNotifier(log *logger.Logger, mail sendgrid.Client, userRepo repos.UserRepo) DocumentNotifier {
	return &emailNotifier{log: log.With("service", "DocumentNotifier"), mail: mail, userRepo: userRepo}
}

func (n *emailNotifier) DocumentReady(ctx context.Context, userID uuid.UUID, artifact *types.Artifact, data []byte) error {
	user, err := n.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s not found", userID)
	}
	msg := sendgrid.Message{
		To:      []sendgrid.Address{{Email: user.Email, Name: user.FirstName + " " + user.LastName}},
		Subject: "Your project recommendation is ready",
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour project recommendation %s has been generated. It is attached to this email and available from your documents page.\n",
			user.FirstName, artifact.FileName,
		),
	}
	if len(data) > 0 {
		msg.Attachments = []sendgrid.Attachment{{
			Filename: artifact.FileName,
			MIMEType: artifact.ContentType,
			Content:  data,
		}}
	}
	return n.mail.Send(ctx, msg)
}
