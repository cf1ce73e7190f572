// Package display renders odds estimations the way users see them.
package display

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"

	"github.com/yourusername/prize-odds/internal/models"
)

// Display states
const (
	StatePending = "pending"
	StateNone    = "none"
	StateOdds    = "odds"
)

// Display is a rendered estimation. Text is empty while pending.
type Display struct {
	State   string `json:"state"`
	Text    string `json:"text"`
	Label   string `json:"label"`
	Tooltip string `json:"tooltip"`
	Locale  string `json:"locale"`
}

// Formatter renders estimations for one locale
type Formatter struct {
	tag         language.Tag
	messages    Messages
	emptyString string
}

// NewFormatter creates a formatter for the best match of locales. A non-empty
// emptyString replaces the localized "none" text.
func NewFormatter(emptyString string, locales ...string) *Formatter {
	tag, messages := Lookup(locales...)
	return &Formatter{
		tag:         tag,
		messages:    messages,
		emptyString: emptyString,
	}
}

// Locale returns the matched locale
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// Format renders e: pending until fetched, the "none" text for zero odds,
// otherwise "1 in N" with N to two decimals
func (f *Formatter) Format(e models.Estimation) Display {
	d := Display{
		Label:   f.messages.UpdatedWinningOdds,
		Tooltip: f.messages.OddsToWinOnePrize,
		Locale:  f.tag.String(),
	}

	switch {
	case !e.IsFetched || e.Data == nil:
		d.State = StatePending
	case !e.Data.HasOdds():
		d.State = StateNone
		d.Text = f.messages.None
		if f.emptyString != "" {
			d.Text = f.emptyString
		}
	default:
		d.State = StateOdds
		d.Text = f.OneIn(e.Data.OneOverOdds)
	}
	return d
}

// OneIn renders "1 in N" with N fixed to two decimals
func (f *Formatter) OneIn(oneOverOdds float64) string {
	return fmt.Sprintf(f.messages.OneInOdds, strconv.FormatFloat(oneOverOdds, 'f', 2, 64))
}
