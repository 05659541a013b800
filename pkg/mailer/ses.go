package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/Suraj757/learning-profile-api/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

// SESMailer delivers email through Amazon SES. When no from-address is
// configured the mailer runs disabled and every send is a logged no-op.
type SESMailer struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
	logger    *zap.Logger
}

// NewSESMailer builds a mailer from the email configuration.
func NewSESMailer(ctx context.Context, cfg config.EmailConfig, logger *zap.Logger) (*SESMailer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FromEmail == "" {
		logger.Info("email delivery disabled: SES_FROM_EMAIL not configured")
		return &SESMailer{enabled: false, logger: logger}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	logger.Info("email delivery enabled", zap.String("from", cfg.FromEmail), zap.String("region", cfg.AWSRegion))
	return &SESMailer{
		client:    sesv2.NewFromConfig(awsCfg),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		enabled:   true,
		logger:    logger,
	}, nil
}

// Enabled reports whether sends will actually reach SES.
func (m *SESMailer) Enabled() bool {
	return m != nil && m.enabled
}

// Send delivers a single message.
func (m *SESMailer) Send(ctx context.Context, msg Message) error {
	if !m.Enabled() {
		m.logger.Info("skipping email send (mailer disabled)", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return nil
	}

	from := m.fromEmail
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}

	body := &types.Body{}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTMLBody)}
	}
	if msg.TextBody != "" {
		body.Text = &types.Content{Data: aws.String(msg.TextBody)}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body:    body,
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send to %s: %w", msg.To, err)
	}
	return nil
}
