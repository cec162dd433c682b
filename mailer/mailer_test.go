package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/questionnaire"
)

type captureSender struct {
	sent []Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	c.sent = append(c.sent, msg)
	return c.err
}

func TestAuctionStarted(t *testing.T) {
	sender := &captureSender{}
	m := New(sender)

	qs, err := questionnaire.UpdateAnswer(questionnaire.Defaults(), questionnaire.CosmeticCondition, "Good")
	require.NoError(t, err)
	deductions := models.DeductionResult{questionnaire.CosmeticCondition: 850}

	err = m.AuctionStarted(context.Background(),
		models.Identity{FirstName: "Sam", LastName: "Lee", Email: "sam@example.com"},
		models.OfferResult{CarSummary: "2003 Honda Accord", OfferAmount: 12500, ProductID: "p-1"},
		models.AuctionStart{AuctionEndsAt: "2026-10-25T00:00:00Z"},
		qs, deductions)

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Sam Lee", msg.ToName)
	assert.Equal(t, "sam@example.com", msg.ToEmail)
	assert.Contains(t, msg.HTML, "$12,500")
	assert.Contains(t, msg.PlainText, "Listing reference: p-1")
	assert.Contains(t, msg.PlainText, "Cosmetic condition (Good): -$850")
}

func TestAuctionStartedNeedsRecipient(t *testing.T) {
	sender := &captureSender{}
	err := New(sender).AuctionStarted(context.Background(), models.Identity{}, models.OfferResult{}, models.AuctionStart{}, nil, nil)

	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestAuctionStartedReturnsSenderError(t *testing.T) {
	sender := &captureSender{err: errors.New("sendgrid error: status 401")}
	err := New(sender).AuctionStarted(context.Background(), models.Identity{Email: "a@b.co"}, models.OfferResult{}, models.AuctionStart{}, nil, nil)

	assert.EqualError(t, err, "sendgrid error: status 401")
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard{}.Send(context.Background(), Message{ToEmail: "a@b.co"}))
}
