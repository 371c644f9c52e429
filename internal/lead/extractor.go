package lead

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

const (
	phoneRegion   = "LK"
	maxAddressLen = 120
	minAddressLen = 8
	maxNameLen    = 50
	trimCutset    = " \t,.-:;"
)

// Info is the contact detail found in a single utterance. Only the fields
// actually present in the text are set; it is merged into the stored lead,
// never replacing it.
type Info struct {
	Name    string
	Address string
	Phone   string
}

func (i Info) Empty() bool {
	return i.Name == "" && i.Address == "" && i.Phone == ""
}

// Ordered most-specific first so the international form is not swallowed by
// the local 0XXXXXXXXX pattern. Matched against whitespace-stripped text.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|[^\d])(\+94\d{9})(?:[^\d]|$)`),
	regexp.MustCompile(`(?:^|[^\d])(0094\d{9})(?:[^\d]|$)`),
	regexp.MustCompile(`(?:^|[^\d])(0\d{9})(?:[^\d]|$)`),
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:my name is|name is|mage nama|මගේ නම)\s+([^\d,.\n]{1,50})`),
	regexp.MustCompile(`^\s*([A-Z][a-z]+(?: [A-Z][a-z]+)?)\b`),
}

var nameStoplist = map[string]bool{
	"hi": true, "hello": true, "hey": true, "my": true, "i": true,
	"please": true, "can": true, "how": true, "what": true, "need": true,
	"want": true, "send": true, "yes": true, "no": true, "ok": true,
	"okay": true, "the": true, "this": true, "is": true, "thanks": true,
	"thank": true, "good": true, "morning": true,
}

var addressTokens = []string{
	"road", "street", "lane", "avenue", "mawatha", "junction", "watta",
	"colombo", "kandy", "galle", "gampaha", "negombo", "kurunegala",
	"matara", "jaffna", "kadawatha", "ratnapura", "anuradhapura",
	"පාර", "මාවත", "වීදිය", "නගරය", "හන්දිය",
}

// Extract parses free text into a partial contact record. The zero Info
// means nothing matched, which gates whether a lead upsert happens at all.
func Extract(text string) Info {
	var info Info

	phone, start, end := extractPhone(text)
	info.Phone = phone
	info.Address = extractAddress(text, start, end)
	info.Name = extractName(text)

	return info
}

func extractPhone(text string) (phone string, start, end int) {
	stripped, offsets := stripWhitespace(text)
	for _, pattern := range phonePatterns {
		loc := pattern.FindStringSubmatchIndex(stripped)
		if loc == nil {
			continue
		}
		candidate := stripped[loc[2]:loc[3]]
		parsed, err := phonenumbers.Parse(candidate, phoneRegion)
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			continue
		}
		start = offsets[loc[2]]
		end = len(text)
		if loc[3] < len(stripped) {
			end = offsets[loc[3]]
		}
		return candidate, start, end
	}
	return "", -1, -1
}

// Addresses usually precede the contact number, so the text before the phone
// is tried first; when that part carries no location hint the remainder after
// the number is tried instead.
func extractAddress(text string, phoneStart, phoneEnd int) string {
	candidates := []string{text}
	if phoneStart >= 0 {
		candidates = []string{text[:phoneStart], text[phoneEnd:]}
	}

	for _, candidate := range candidates {
		candidate = strings.Trim(candidate, trimCutset)
		if len(candidate) < minAddressLen || !hasAddressToken(candidate) {
			continue
		}
		if len(candidate) > maxAddressLen {
			cut := maxAddressLen
			for cut > 0 && !utf8.RuneStart(candidate[cut]) {
				cut--
			}
			candidate = candidate[:cut]
		}
		return candidate
	}
	return ""
}

func hasAddressToken(text string) bool {
	lower := strings.ToLower(text)
	for _, token := range addressTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func extractName(text string) string {
	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		candidate := strings.Trim(match[1], trimCutset)
		if candidate == "" || len(candidate) > maxNameLen {
			continue
		}
		if stoplisted(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

func stoplisted(candidate string) bool {
	for _, word := range strings.Fields(strings.ToLower(candidate)) {
		if !nameStoplist[word] {
			return false
		}
	}
	return true
}

// stripWhitespace removes space runes and keeps a byte-offset mapping back
// into the original text, so a phone matched on the stripped form can be
// located in the original for the address split.
func stripWhitespace(text string) (string, []int) {
	var b strings.Builder
	offsets := make([]int, 0, len(text))
	for i, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		before := b.Len()
		b.WriteRune(r)
		for j := before; j < b.Len(); j++ {
			offsets = append(offsets, i)
		}
	}
	return b.String(), offsets
}
