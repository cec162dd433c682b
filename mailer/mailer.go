// Package mailer sends the auction confirmation email
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/questionnaire"
	templates "github.com/linesmerrill/vehicle-intake-api/templates/html"
)

// Message is one outgoing email
type Message struct {
	ToName    string
	ToEmail   string
	Subject   string
	HTML      string
	PlainText string
}

// Sender delivers a Message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGrid sends through the SendGrid v3 API
type SendGrid struct {
	from   *mail.Email
	client *sendgrid.Client
}

// NewSendGrid returns a SendGrid sender
func NewSendGrid(apiKey, fromName, fromEmail string) *SendGrid {
	return &SendGrid{
		from:   mail.NewEmail(fromName, fromEmail),
		client: sendgrid.NewSendClient(apiKey),
	}
}

// Send sends msg
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	message := mail.NewSingleEmail(s.from, msg.Subject, to, msg.PlainText, msg.HTML)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		zap.S().Errorw("failed to send email", "error", err, "to", msg.ToEmail)
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.ToEmail)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	zap.S().Infow("email sent successfully", "to", msg.ToEmail, "subject", msg.Subject)
	return nil
}

// Discard logs and drops every message. It is used when no API key is configured.
type Discard struct{}

// Send logs msg
func (Discard) Send(_ context.Context, msg Message) error {
	zap.S().Debugw("email discarded, no sender configured", "to", msg.ToEmail, "subject", msg.Subject)
	return nil
}

// Mailer renders and sends domain emails
type Mailer struct {
	sender Sender
}

// New returns a Mailer over sender
func New(sender Sender) *Mailer {
	return &Mailer{sender: sender}
}

// AuctionStarted emails the seller once their auction is live. Questions drive the
// deduction lines; deductions of zero are left out.
func (m *Mailer) AuctionStarted(ctx context.Context, who models.Identity, offer models.OfferResult, auction models.AuctionStart, questions []models.ConditionQuestion, deductions models.DeductionResult) error {
	if who.Email == "" {
		return fmt.Errorf("no recipient email")
	}

	e := templates.AuctionEmail{
		FirstName:   who.FirstName,
		CarSummary:  offer.CarSummary,
		OfferAmount: offer.OfferAmount,
		ProductID:   auction.ProductID,
		EndsAt:      auction.AuctionEndsAt,
	}
	if e.ProductID == "" {
		e.ProductID = offer.ProductID
	}
	for _, q := range questions {
		amount := deductions[q.Key]
		if amount == 0 {
			continue
		}
		e.Deductions = append(e.Deductions, fmt.Sprintf("%s (%s): %s", q.Label, questionnaire.AnswerText(q), templates.FormatAmount(float64(-amount))))
	}

	return m.sender.Send(ctx, Message{
		ToName:    strings.TrimSpace(who.FirstName + " " + who.LastName),
		ToEmail:   who.Email,
		Subject:   "Your auction has started",
		HTML:      templates.RenderAuctionStartedEmail(e),
		PlainText: templates.RenderAuctionStartedText(e),
	})
}
