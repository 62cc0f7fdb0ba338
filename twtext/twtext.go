// Package twtext extracts mentions, hashtags and URLs from tweet text.
//
// Offsets are half-open [Start, End) ranges counted in runes, matching the
// indices the API reports for entities.
package twtext

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Kind is the kind of an extracted entity.
type Kind int

const (
	KindMention Kind = iota
	KindHashtag
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindMention:
		return "mention"
	case KindHashtag:
		return "hashtag"
	case KindURL:
		return "url"
	}
	return "unknown"
}

// Entity is one match in a text. Value excludes the leading @ or # sigil.
type Entity struct {
	Kind  Kind
	Value string
	Start int
	End   int
}

var (
	mentionRe = regexp.MustCompile(`(?:^|[^A-Za-z0-9_!#$%&*@＠])([@＠])([A-Za-z0-9_]{1,20})`)
	hashtagRe = regexp.MustCompile(`(?:^|[^\p{L}\p{M}\p{N}_&])([#＃])([\p{L}\p{M}\p{N}_]*[\p{L}\p{M}][\p{L}\p{M}\p{N}_]*)`)
	urlRe     = regexp.MustCompile(`https?://[^\s<>"]+`)
)

const urlTrailing = ".,;:!?'\")]}"

// Mentions returns @screen_name mentions in order of appearance.
func Mentions(text string) []Entity {
	var out []Entity
	for _, m := range mentionRe.FindAllStringSubmatchIndex(text, -1) {
		sigil, end := m[2], m[5]
		if followedByInvalid(text[end:]) || followedByWordChar(text[end:]) {
			continue
		}
		out = append(out, newEntity(text, KindMention, text[m[4]:m[5]], sigil, end))
	}
	return out
}

// Hashtags returns #hashtags in order of appearance.
func Hashtags(text string) []Entity {
	var out []Entity
	for _, m := range hashtagRe.FindAllStringSubmatchIndex(text, -1) {
		sigil, end := m[2], m[5]
		if followedByInvalid(text[end:]) {
			continue
		}
		out = append(out, newEntity(text, KindHashtag, text[m[4]:m[5]], sigil, end))
	}
	return out
}

// URLs returns http(s) URLs in order of appearance, without trailing punctuation.
func URLs(text string) []Entity {
	var out []Entity
	for _, m := range urlRe.FindAllStringIndex(text, -1) {
		u := strings.TrimRight(text[m[0]:m[1]], urlTrailing)
		if !strings.Contains(u[strings.Index(u, "://")+3:], ".") {
			continue
		}
		out = append(out, newEntity(text, KindURL, u, m[0], m[0]+len(u)))
	}
	return out
}

// Extract returns every mention, hashtag and URL sorted by start offset.
// Mentions and hashtags that fall inside a URL are dropped.
func Extract(text string) []Entity {
	urls := URLs(text)
	all := append([]Entity(nil), urls...)
	for _, e := range append(Mentions(text), Hashtags(text)...) {
		if !insideAny(e, urls) {
			all = append(all, e)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Start < all[j].Start })
	return all
}

// Locate returns the rune range of the first occurrence of substr in text.
func Locate(text, substr string) (start, end int, ok bool) {
	if substr == "" {
		return 0, 0, false
	}
	i := strings.Index(text, substr)
	if i < 0 {
		return 0, 0, false
	}
	start = utf8.RuneCountInString(text[:i])
	return start, start + utf8.RuneCountInString(substr), true
}

func newEntity(text string, kind Kind, value string, byteStart, byteEnd int) Entity {
	start := utf8.RuneCountInString(text[:byteStart])
	return Entity{
		Kind:  kind,
		Value: value,
		Start: start,
		End:   start + utf8.RuneCountInString(text[byteStart:byteEnd]),
	}
}

// followedByInvalid reports whether a candidate is glued to an email-like or
// URL-like continuation.
func followedByInvalid(rest string) bool {
	return strings.HasPrefix(rest, "@") || strings.HasPrefix(rest, "＠") ||
		strings.HasPrefix(rest, "#") || strings.HasPrefix(rest, "://")
}

// followedByWordChar catches screen names longer than the 20 character limit.
func followedByWordChar(rest string) bool {
	if rest == "" {
		return false
	}
	c := rest[0]
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func insideAny(e Entity, spans []Entity) bool {
	for _, s := range spans {
		if e.Start >= s.Start && e.End <= s.End {
			return true
		}
	}
	return false
}
