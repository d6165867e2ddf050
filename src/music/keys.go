package music

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
)

const leadingArticle = "the "

const trailingArticle = ", the"

// StripLeadingArticle removes a leading "The " from an artist or title, keeping the original case of the rest.
func StripLeadingArticle(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= len(leadingArticle) && strings.EqualFold(name[:len(leadingArticle)], leadingArticle) {
		return strings.TrimSpace(name[len(leadingArticle):])
	}
	return name
}

// HasTrailingArticle reports names tagged as "Shadows, the" instead of "The Shadows".
func HasTrailingArticle(name string) bool {
	return strings.HasSuffix(cases.Fold().String(strings.TrimSpace(name)), trailingArticle)
}

// DeriveKey builds the comparison key for an artist and title.
// With phonetic set the key is the soundex code of "artist:title", so distinct
// names can share a key; callers resolve those collisions separately.
func DeriveKey(artist, title string, phonetic bool) string {
	folder := cases.Fold()
	key := folder.String(StripLeadingArticle(artist)) + ":" + folder.String(StripLeadingArticle(title))
	if phonetic {
		return Soundex(key)
	}
	return key
}

var soundexCodes = [26]byte{
	'0', '1', '2', '3', '0', '1', '2', '0', '0', '2', '2', '4', '5',
	'5', '0', '1', '2', '6', '2', '3', '0', '1', '0', '2', '0', '2',
}

// Soundex returns a soundex variant of s, not classic American Soundex: the code is
// neither padded nor truncated, the first letter's own digit is not used to collapse
// the next one, and vowels do not separate repeated digits ("Pfister" is P1236).
// Non-ASCII input is transliterated first; the first character is kept as is.
func Soundex(s string) string {
	s = strings.ToUpper(unidecode.Unidecode(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.WriteByte(s[0])
	var last byte
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			continue
		}
		code := soundexCodes[c-'A']
		if code == '0' || code == last {
			continue
		}
		b.WriteByte(code)
		last = code
	}
	return b.String()
}
