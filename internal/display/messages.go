package display

import "golang.org/x/text/language"

// Messages holds the user-facing strings for one locale
type Messages struct {
	// None is shown when the odds are zero
	None string
	// OneInOdds is a format with a single %s verb for the two-decimal N
	OneInOdds string
	// UpdatedWinningOdds labels a projected estimate
	UpdatedWinningOdds string
	// OddsToWinOnePrize explains the estimate
	OddsToWinOnePrize string
}

var english = Messages{
	None:               "None",
	OneInOdds:          "1 in %s",
	UpdatedWinningOdds: "Updated winning odds",
	OddsToWinOnePrize:  "Your estimated odds of winning at least one prize",
}

// The first tag is the fallback for unmatched locales.
var catalogue = []struct {
	tag      language.Tag
	messages Messages
}{
	{tag: language.English, messages: english},
	{tag: language.Spanish, messages: Messages{
		None:               "Ninguna",
		OneInOdds:          "1 entre %s",
		UpdatedWinningOdds: "Probabilidades de ganar actualizadas",
		OddsToWinOnePrize:  "Tus probabilidades estimadas de ganar al menos un premio",
	}},
	{tag: language.German, messages: Messages{
		None:               "Keine",
		OneInOdds:          "1 zu %s",
		UpdatedWinningOdds: "Aktualisierte Gewinnchancen",
		OddsToWinOnePrize:  "Deine geschätzte Chance, mindestens einen Preis zu gewinnen",
	}},
	{tag: language.French, messages: Messages{
		None:               "Aucune",
		OneInOdds:          "1 sur %s",
		UpdatedWinningOdds: "Chances de gain mises à jour",
		OddsToWinOnePrize:  "Vos chances estimées de gagner au moins un prix",
	}},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(catalogue))
	for i, entry := range catalogue {
		tags[i] = entry.tag
	}
	return language.NewMatcher(tags)
}()

// Lookup returns the messages best matching the given locales or Accept-Language
// values, falling back to English
func Lookup(locales ...string) (language.Tag, Messages) {
	_, index := language.MatchStrings(matcher, locales...)
	return catalogue[index].tag, catalogue[index].messages
}

// Supported lists the locales with a translation
func Supported() []language.Tag {
	tags := make([]language.Tag, len(catalogue))
	for i, entry := range catalogue {
		tags[i] = entry.tag
	}
	return tags
}
