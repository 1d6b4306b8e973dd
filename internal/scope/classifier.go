// Package scope implements the two-sided topical gate: a keyword
// classifier that screens queries before retrieval, and a grounding
// check that screens drafted answers against their source chunks.
package scope

import (
	"strings"
	"unicode"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
	"github.com/maarif-labs/maarif/internal/lang"
)

// Ensure Classifier implements the interface.
var _ driven.ScopeClassifier = (*Classifier)(nil)

// Classifier matches queries against allow and deny keyword lists and
// checks drafted answers for grounding in their sources. All matching
// happens on normalised text, so Arabic orthographic variants of a
// keyword hit the same entry.
type Classifier struct {
	allow              []string
	deny               []string
	allowUnmatched     bool
	groundingThreshold float64
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithAllowUnmatched controls the verdict for queries matching neither
// list. Default is to admit them and let the grounding gate decide.
func WithAllowUnmatched(allow bool) Option {
	return func(c *Classifier) {
		c.allowUnmatched = allow
	}
}

// WithGroundingThreshold sets the minimum fraction of answer tokens
// that must appear in the source chunks.
func WithGroundingThreshold(threshold float64) Option {
	return func(c *Classifier) {
		c.groundingThreshold = threshold
	}
}

// New creates a classifier over the given topic lists. Keywords are
// normalised once at construction.
func New(allowlist, denylist []string, opts ...Option) *Classifier {
	c := &Classifier{
		allow:              normaliseKeywords(allowlist),
		deny:               normaliseKeywords(denylist),
		allowUnmatched:     true,
		groundingThreshold: 0.5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassifyQuery screens a query before any retrieval cost is incurred.
// Allowlist matches win over denylist matches: a question that touches
// both an organisational topic and a disallowed one is still answerable
// from the organisational side.
func (c *Classifier) ClassifyQuery(text string, language domain.Language) domain.ScopeDecision {
	tokens := lang.Tokens(text, language)
	if len(tokens) == 0 {
		return domain.ScopeDecision{InScope: false, Reason: domain.ReasonUnclassifiable}
	}

	padded := pad(tokens)
	if matchAny(padded, c.allow) {
		return domain.ScopeDecision{InScope: true, Reason: domain.ReasonAllowlisted}
	}
	if matchAny(padded, c.deny) {
		return domain.ScopeDecision{InScope: false, Reason: domain.ReasonDenylisted}
	}
	return domain.ScopeDecision{InScope: c.allowUnmatched, Reason: domain.ReasonUnmatched}
}

// ClassifyAnswer is the fail-closed boundary after generation. The
// answer passes only if enough of its tokens trace back to the source
// chunks, and every numeral it asserts appears verbatim in a source.
func (c *Classifier) ClassifyAnswer(text string, language domain.Language, sources []domain.Chunk) domain.ScopeDecision {
	if len(sources) == 0 {
		return domain.ScopeDecision{InScope: false, Reason: domain.ReasonNoSources}
	}

	answerTokens := lang.Tokens(text, language)
	if len(answerTokens) == 0 {
		return domain.ScopeDecision{InScope: false, Reason: domain.ReasonUnclassifiable, Sources: sources}
	}

	sourceSet := make(map[string]struct{})
	for _, chunk := range sources {
		chunkLang := chunk.Meta.Language
		if chunkLang == "" {
			chunkLang = language
		}
		for _, token := range lang.Tokens(chunk.Content, chunkLang) {
			sourceSet[asciiDigits(token)] = struct{}{}
		}
	}

	supported := 0
	for _, token := range answerTokens {
		token = asciiDigits(token)
		_, ok := sourceSet[token]
		if ok {
			supported++
			continue
		}
		// A fabricated number is the worst failure mode for a policy
		// assistant; any unsupported numeral rejects the answer outright.
		if containsDigit(token) {
			return domain.ScopeDecision{InScope: false, Reason: domain.ReasonUngrounded, Sources: sources}
		}
	}

	ratio := float64(supported) / float64(len(answerTokens))
	if ratio < c.groundingThreshold {
		return domain.ScopeDecision{InScope: false, Reason: domain.ReasonUngrounded, Sources: sources}
	}
	return domain.ScopeDecision{InScope: true, Reason: domain.ReasonGrounded, Sources: sources}
}

// normaliseKeywords normalises each keyword under its own detected
// language, so mixed Arabic and English lists both match.
func normaliseKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		language := lang.Detect(kw, domain.LanguageEnglish)
		tokens := lang.Tokens(kw, language)
		if len(tokens) == 0 {
			continue
		}
		out = append(out, strings.Join(tokens, " "))
	}
	return out
}

// pad joins tokens with single spaces and pads the ends so keyword
// matches are whole-word: "it" must not hit "item".
func pad(tokens []string) string {
	return " " + strings.Join(tokens, " ") + " "
}

func matchAny(padded string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}

// asciiDigits maps Arabic-Indic and Extended Arabic-Indic digits to
// their ASCII equivalents so "٣٠" and "30" compare equal.
func asciiDigits(token string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		default:
			return r
		}
	}, token)
}

func containsDigit(token string) bool {
	for _, r := range token {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
