package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// EmailService sends transactional email via Amazon SES. When no sender
// address is configured the service is disabled and sends become no-ops,
// so local development works without AWS credentials.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewEmailService creates a new email service
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*EmailService, error) {
	if fromEmail == "" {
		logger.Info("email service disabled: no sender address configured")
		return &EmailService{enabled: false, logger: logger}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	logger.Info("email service enabled",
		zap.String("from", fromEmail),
		zap.String("region", awsRegion))

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		logger:     logger,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendPasswordResetEmail sends a password reset email with a reset link
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	if !s.enabled {
		s.logger.Info("skipping email send, service disabled",
			zap.String("to", toEmail))
		return nil
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, resetToken)

	subject := "Reset your ToneQuest password"
	textBody := fmt.Sprintf(
		"Hi %s,\n\nSomeone requested a password reset for your ToneQuest account. "+
			"Open the link below to choose a new password. The link expires in one hour.\n\n%s\n\n"+
			"If you did not request this, you can ignore this email.\n",
		toName, resetLink)
	htmlBody := fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Someone requested a password reset for your ToneQuest account.
Click the link below to choose a new password. The link expires in one hour.</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not request this, you can ignore this email.</p>
</body></html>`, toName, resetLink)

	return s.send(ctx, toEmail, subject, textBody, htmlBody)
}

func (s *EmailService) send(ctx context.Context, toEmail, subject, textBody, htmlBody string) error {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(textBody)},
					Html: &types.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("sending email via SES: %w", err)
	}

	s.logger.Info("email sent", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}
