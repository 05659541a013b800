package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Suraj757/learning-profile-api/internal/dto"
	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/internal/repository"
	"github.com/Suraj757/learning-profile-api/pkg/config"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
	"github.com/Suraj757/learning-profile-api/pkg/jobs"
	"github.com/Suraj757/learning-profile-api/pkg/mailer"
)

const invitationJobType = "invitation_batch"

// invitationMailer is the delivery contract the service needs.
type invitationMailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// invitationBatch is the queued unit of work. Batching keeps bulk sends
// under the SES rate limit; the configured delay separates batches.
type invitationBatch struct {
	Invitations []models.Invitation
	Delay       time.Duration
}

// InvitationService queues and delivers parent invitation emails in batches.
type InvitationService struct {
	invitations repository.InvitationStore
	classrooms  repository.ClassroomStore
	mailer      invitationMailer
	queue       *jobs.Queue
	validator   *validator.Validate
	logger      *zap.Logger
	batchSize   int
	batchDelay  time.Duration
	baseURL     string
}

// NewInvitationService constructs an InvitationService and its worker queue.
// Call Start before accepting requests and Stop on shutdown.
func NewInvitationService(
	invitations repository.InvitationStore,
	classrooms repository.ClassroomStore,
	mail invitationMailer,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.InvitationsConfig,
	baseURL string,
) *InvitationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	s := &InvitationService{
		invitations: invitations,
		classrooms:  classrooms,
		mailer:      mail,
		validator:   validate,
		logger:      logger,
		batchSize:   batchSize,
		batchDelay:  cfg.BatchDelay,
		baseURL:     baseURL,
	}
	s.queue = jobs.NewQueue("invitations", s.processBatch, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.BatchDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the background workers.
func (s *InvitationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *InvitationService) Stop() {
	s.queue.Stop()
}

// BulkInvite validates and persists the invitations, then enqueues delivery
// in batches. The response reports what was queued, not what was delivered;
// per-invitation status updates as the batches drain.
func (s *InvitationService) BulkInvite(ctx context.Context, req dto.BulkInvitationRequest) (*dto.BulkInvitationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk invitation payload")
	}

	if _, err := s.classrooms.FindByID(ctx, req.ClassroomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}

	now := time.Now().UTC()
	created := make([]models.Invitation, 0, len(req.Invitations))
	for _, item := range req.Invitations {
		invitation := models.Invitation{
			ID:          uuid.NewString(),
			ClassroomID: req.ClassroomID,
			ChildName:   item.ChildName,
			ParentEmail: item.ParentEmail,
			Token:       uuid.NewString(),
			Status:      models.InvitationPending,
			CreatedAt:   now,
		}
		if err := s.invitations.Insert(ctx, &invitation); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store invitation")
		}
		created = append(created, invitation)
	}

	batches := 0
	for start := 0; start < len(created); start += s.batchSize {
		end := start + s.batchSize
		if end > len(created) {
			end = len(created)
		}
		var delay time.Duration
		if batches > 0 {
			delay = s.batchDelay
		}
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    invitationJobType,
			Payload: invitationBatch{Invitations: created[start:end], Delay: delay},
		}
		if err := s.queue.Enqueue(job); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue invitation batch")
		}
		batches++
	}

	return &dto.BulkInvitationResponse{Queued: len(created), Batches: batches}, nil
}

// ListByClassroom returns every invitation recorded for the classroom.
func (s *InvitationService) ListByClassroom(ctx context.Context, classroomID string) ([]models.Invitation, error) {
	if classroomID == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingFields, "classroom id is part of the required fields")
	}
	invitations, err := s.invitations.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invitations")
	}
	return invitations, nil
}

// processBatch delivers one batch and records per-invitation outcomes. It is
// the queue handler; errors returned here trigger the queue's retry policy.
func (s *InvitationService) processBatch(ctx context.Context, job jobs.Job) error {
	batch, ok := job.Payload.(invitationBatch)
	if !ok {
		return fmt.Errorf("unexpected payload for job %s", job.ID)
	}

	if batch.Delay > 0 {
		timer := time.NewTimer(batch.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	var failed int
	for _, invitation := range batch.Invitations {
		msg := s.buildMessage(invitation)
		if err := s.mailer.Send(ctx, msg); err != nil {
			failed++
			s.logger.Warn("invitation send failed",
				zap.String("invitation_id", invitation.ID),
				zap.Error(err),
			)
			if err := s.invitations.UpdateStatus(ctx, invitation.ID, models.InvitationFailed); err != nil {
				s.logger.Warn("failed to mark invitation failed", zap.String("invitation_id", invitation.ID), zap.Error(err))
			}
			continue
		}
		if err := s.invitations.UpdateStatus(ctx, invitation.ID, models.InvitationSent); err != nil {
			s.logger.Warn("failed to mark invitation sent", zap.String("invitation_id", invitation.ID), zap.Error(err))
		}
	}

	s.logger.Info("invitation batch processed",
		zap.String("job_id", job.ID),
		zap.Int("sent", len(batch.Invitations)-failed),
		zap.Int("failed", failed),
	)
	return nil
}

func (s *InvitationService) buildMessage(invitation models.Invitation) mailer.Message {
	link := fmt.Sprintf("%s/assessment/start?invite=%s", s.baseURL, invitation.Token)
	subject := fmt.Sprintf("Help us understand how %s learns best", invitation.ChildName)
	text := fmt.Sprintf(
		"Hello,\n\nYour child's teacher invited you to complete a short learning assessment for %s. "+
			"Your answers about how %s plays and learns at home combine with classroom observations "+
			"into a single learning profile.\n\nStart here: %s\n\nIt takes about ten minutes.\n",
		invitation.ChildName, invitation.ChildName, link,
	)
	html := fmt.Sprintf(
		`<p>Hello,</p><p>Your child's teacher invited you to complete a short learning assessment for <strong>%s</strong>. Your answers about how %s plays and learns at home combine with classroom observations into a single learning profile.</p><p><a href="%s">Start the assessment</a> (about ten minutes).</p>`,
		invitation.ChildName, invitation.ChildName, link,
	)
	return mailer.Message{
		To:       invitation.ParentEmail,
		ToName:   "",
		Subject:  subject,
		HTMLBody: html,
		TextBody: text,
	}
}
