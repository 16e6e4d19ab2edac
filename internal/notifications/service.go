package notifications

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sharepoint-portal/portal-backend/internal/metrics"
)

// Dispatcher sends workflow notifications. It never returns errors: every attempt yields an Outcome.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) Outcome
	SendBatch(ctx context.Context, msgs []Message) []Outcome
}

// ServiceConfig contains service configuration
type ServiceConfig struct {
	PortalURL   string
	Concurrency int
}

// Service provides notification delivery
type Service struct {
	sender      Sender
	templates   *TemplateManager
	logger      *zap.Logger
	concurrency int
}

// NewService creates a new notification service
func NewService(sender Sender, logger *zap.Logger, config ServiceConfig) (*Service, error) {
	templates, err := NewTemplateManager(config.PortalURL)
	if err != nil {
		return nil, err
	}
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		sender:      sender,
		templates:   templates,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

// Send renders and delivers a single message.
func (s *Service) Send(ctx context.Context, msg Message) Outcome {
	outcome := Outcome{
		Kind:      msg.Kind,
		Recipient: msg.To,
		Status:    StatusSent,
		SentAt:    time.Now(),
	}

	if err := s.deliver(ctx, msg); err != nil {
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		s.logger.Warn("Notification failed",
			zap.String("kind", string(msg.Kind)),
			zap.String("recipient", msg.To.Email),
			zap.String("sharepoint_id", msg.Params.SharePointID.String()),
			zap.Error(err))
	} else {
		s.logger.Debug("Notification sent",
			zap.String("kind", string(msg.Kind)),
			zap.String("recipient", msg.To.Email))
	}
	metrics.RecordNotification(string(msg.Kind), outcome.OK())
	return outcome
}

func (s *Service) deliver(ctx context.Context, msg Message) error {
	if msg.To.Email == "" {
		return errNoAddress
	}
	subject, body, err := s.templates.Render(msg)
	if err != nil {
		return err
	}
	return s.sender.SendEmail(ctx, msg.To.Email, subject, body)
}

// SendBatch delivers each message independently with bounded concurrency.
// Outcomes are returned in the order of msgs.
func (s *Service) SendBatch(ctx context.Context, msgs []Message) []Outcome {
	outcomes := make([]Outcome, len(msgs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, msg := range msgs {
		i, msg := i, msg
		g.Go(func() error {
			outcomes[i] = s.Send(ctx, msg)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

type dispatchError string

func (e dispatchError) Error() string { return string(e) }

const errNoAddress = dispatchError("recipient has no email address")
