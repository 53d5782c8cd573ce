// Package mailer delivers generated reports by email.
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/logging"
)

// Attachment is a file sent with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds mail delivery settings.
type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// Enabled reports whether delivery is configured.
func (c Config) Enabled() bool {
	return c.APIKey != "" && c.FromEmail != ""
}

// New returns a SendGrid sender, or a NopSender when delivery is not
// configured.
func New(cfg Config) Sender {
	if !cfg.Enabled() {
		return NopSender{}
	}
	return NewSendGridSender(cfg)
}

// NopSender refuses every message with errors.ErrMailDisabled.
type NopSender struct{}

// Send implements Sender.
func (NopSender) Send(context.Context, Message) error {
	return errors.ErrMailDisabled
}

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender sends mail through the SendGrid v3 API.
type SendGridSender struct {
	fromEmail string
	fromName  string
	client    sendClient
}

// NewSendGridSender creates a SendGrid sender.
func NewSendGridSender(cfg Config) *SendGridSender {
	logging.DebugLog("sendgrid sender configured", "api_key", logging.MaskSecret(cfg.APIKey))
	return &SendGridSender{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client:    sendgrid.NewSendClient(cfg.APIKey),
	}
}

// Send implements Sender.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.NewValidationError("email", "", "is a required field")
	}

	message := Build(s.fromName, s.fromEmail, msg)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid error: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	logging.Info("report mailed", "to", msg.To, logging.KeyCount, len(msg.Attachments))
	return nil
}

// Build assembles the SendGrid payload for msg. Attachment content is base64
// encoded as the v3 API requires.
func Build(fromName, fromEmail string, msg Message) *mail.SGMailV3 {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(fromName, fromEmail))
	message.Subject = msg.Subject

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail("", msg.To))
	message.AddPersonalizations(personalization)

	text := msg.Text
	if text == "" && msg.HTML == "" {
		text = msg.Subject
	}
	if text != "" {
		message.AddContent(mail.NewContent("text/plain", text))
	}
	if msg.HTML != "" {
		message.AddContent(mail.NewContent("text/html", msg.HTML))
	}

	for _, a := range msg.Attachments {
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		attachment.SetFilename(a.Filename)
		if a.ContentType != "" {
			attachment.SetType(a.ContentType)
		}
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}
	return message
}
