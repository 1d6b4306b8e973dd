// Package lang provides Arabic/English language detection and the
// language-aware text normalisation applied before embedding and before
// grounding comparisons.
package lang

import (
	"strings"
	"unicode"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// Detect guesses the language of text from its script. Mixed text follows
// the majority script; text with no letters at all falls back to the
// given default.
func Detect(text string, fallback domain.Language) domain.Language {
	var arabic, latin int
	for _, r := range text {
		switch {
		case isArabicRune(r):
			arabic++
		case unicode.In(r, unicode.Latin):
			latin++
		}
	}

	if arabic == 0 && latin == 0 {
		if fallback.IsValid() {
			return fallback
		}
		return domain.LanguageArabic
	}
	if arabic >= latin {
		return domain.LanguageArabic
	}
	return domain.LanguageEnglish
}

// Normalize applies language-appropriate normalisation: Arabic text has
// diacritics (tashkeel) stripped, tatweel removed and letter variants
// unified; all text is whitespace-collapsed and lowercased. The embedding
// provider and the grounding gate both normalise through here so that
// surface variation does not defeat matching.
func Normalize(text string, language domain.Language) string {
	if language == domain.LanguageArabic {
		text = normalizeArabic(text)
	}
	text = strings.ToLower(text)
	return strings.Join(strings.Fields(text), " ")
}

// Tokens splits text into normalised content tokens: punctuation is
// stripped, Arabic letter variants unified, everything lowercased. Used by
// the grounding overlap check.
func Tokens(text string, language domain.Language) []string {
	normalized := Normalize(text, language)
	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// normalizeArabic strips tashkeel and tatweel and unifies common letter
// variants (alef forms, teh marbuta, alef maqsura).
func normalizeArabic(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch {
		case r >= 0x064B && r <= 0x0652: // tashkeel
			continue
		case r == 0x0640: // tatweel
			continue
		case r == 'أ' || r == 'إ' || r == 'آ':
			b.WriteRune('ا')
		case r == 'ة':
			b.WriteRune('ه')
		case r == 'ى':
			b.WriteRune('ي')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isArabicRune(r rune) bool {
	return (r >= 0x0600 && r <= 0x06FF) ||
		(r >= 0x0750 && r <= 0x077F) ||
		(r >= 0x08A0 && r <= 0x08FF) ||
		(r >= 0xFB50 && r <= 0xFDFF) ||
		(r >= 0xFE70 && r <= 0xFEFF)
}
