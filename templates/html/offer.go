package templates

import (
	"fmt"
	"html"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// AuctionEmail holds the values shown in the auction confirmation email
type AuctionEmail struct {
	FirstName   string
	CarSummary  string
	OfferAmount float64
	ProductID   string
	EndsAt      string
	// Deductions lists "label: amount" lines in display order
	Deductions []string
}

// FormatAmount renders whole currency units with thousands separators, e.g. 12500 -> $12,500
func FormatAmount(amount float64) string {
	n := int64(math.Round(amount))
	if n < 0 {
		return usd.Sprintf("-$%d", -n)
	}
	return usd.Sprintf("$%d", n)
}

// RenderAuctionStartedEmail generates the HTML confirmation sent once an auction starts.
// Every user supplied value is HTML-escaped.
func RenderAuctionStartedEmail(e AuctionEmail) string {
	name := e.FirstName
	if name == "" {
		name = "there"
	}

	var rows strings.Builder
	for _, d := range e.Deductions {
		rows.WriteString("<tr><td>" + html.EscapeString(d) + "</td></tr>")
	}
	summary := ""
	if rows.Len() > 0 {
		summary = `<p>Condition adjustments:</p><table class="summary">` + rows.String() + `</table>`
	}
	ends := ""
	if e.EndsAt != "" {
		ends = fmt.Sprintf("<p>Bidding closes %s.</p>", html.EscapeString(e.EndsAt))
	}

	body := fmt.Sprintf(`<p>Hi %s,</p>
      <p>Your %s is now live.</p>
      <p>Instant cash offer:</p>
      <div class="amount">%s</div>
      %s
      %s
      <p>Listing reference: %s</p>`,
		html.EscapeString(name),
		html.EscapeString(e.CarSummary),
		FormatAmount(e.OfferAmount),
		ends,
		summary,
		html.EscapeString(e.ProductID),
	)
	return renderLayout("Your auction has started", body)
}

// RenderAuctionStartedText is the plain text part of the same email
func RenderAuctionStartedText(e AuctionEmail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your %s is now live.\n", e.CarSummary)
	fmt.Fprintf(&b, "Instant cash offer: %s\n", FormatAmount(e.OfferAmount))
	if e.EndsAt != "" {
		fmt.Fprintf(&b, "Bidding closes %s.\n", e.EndsAt)
	}
	for _, d := range e.Deductions {
		b.WriteString(d + "\n")
	}
	fmt.Fprintf(&b, "Listing reference: %s\n", e.ProductID)
	return b.String()
}
