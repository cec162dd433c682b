package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$0", FormatAmount(0))
	assert.Equal(t, "$950", FormatAmount(950))
	assert.Equal(t, "$12,500", FormatAmount(12500))
	assert.Equal(t, "$1,234,567", FormatAmount(1234567))
	assert.Equal(t, "-$150", FormatAmount(-150))
	assert.Equal(t, "-$2,400", FormatAmount(-2400))
	assert.Equal(t, "$10,001", FormatAmount(10000.6))
}

func TestRenderAuctionStartedEmailEscapes(t *testing.T) {
	out := RenderAuctionStartedEmail(AuctionEmail{
		FirstName:   "<b>Sam</b>",
		CarSummary:  "2003 Honda Accord",
		OfferAmount: 12500,
		ProductID:   "p-1",
		Deductions:  []string{"Cosmetic condition: $850"},
	})

	assert.Contains(t, out, "&lt;b&gt;Sam&lt;/b&gt;")
	assert.NotContains(t, out, "<b>Sam</b>")
	assert.Contains(t, out, "$12,500")
	assert.Contains(t, out, "Cosmetic condition: $850")
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html"))
}

func TestRenderAuctionStartedEmailDefaultsGreeting(t *testing.T) {
	out := RenderAuctionStartedEmail(AuctionEmail{CarSummary: "car"})
	assert.Contains(t, out, "Hi there,")
	assert.NotContains(t, out, "Condition adjustments")
}

func TestRenderAuctionStartedText(t *testing.T) {
	out := RenderAuctionStartedText(AuctionEmail{CarSummary: "2003 Honda Accord", OfferAmount: 9000, ProductID: "p-9", EndsAt: "2026-10-20"})
	assert.Equal(t, "Your 2003 Honda Accord is now live.\nInstant cash offer: $9,000\nBidding closes 2026-10-20.\nListing reference: p-9\n", out)
}
