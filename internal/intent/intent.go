package intent

import (
	"strings"
)

// Language of an inbound utterance. Singlish means Sinhala written with (or
// mixed with) Latin letters, which is how most ad-funnel customers type.
type Language string

const (
	LanguageSinhala  Language = "sinhala"
	LanguageEnglish  Language = "english"
	LanguageSinglish Language = "singlish"
)

var photoKeywords = []string{
	"photo", "photos", "pic", "pics", "picture", "pictures", "image", "images",
	"foto", "pintura", "pinthura", "pinthoora",
	"ඡායාරූප", "පින්තූර", "පින්තූරය", "පින්තුර", "ෆොටෝ",
}

var orderKeywords = []string{
	"order", "buy", "purchase", "confirm",
	"ganna", "gannawa", "gannwa",
	"ගන්නවා", "ගන්න", "ඕඩර්", "මිලදී", "ගෙන්නන්න",
}

// DetectLanguage classifies by script presence: Sinhala characters plus Latin
// words means singlish, Sinhala alone means sinhala, anything else english.
func DetectLanguage(text string) Language {
	hasSinhala := false
	hasLatin := false
	for _, r := range text {
		if r >= 0x0D80 && r <= 0x0DFF {
			hasSinhala = true
		} else if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			hasLatin = true
		}
	}

	switch {
	case hasSinhala && hasLatin:
		return LanguageSinglish
	case hasSinhala:
		return LanguageSinhala
	default:
		return LanguageEnglish
	}
}

// DetectPhotoRequest reports whether the customer is asking to see product
// pictures. False positives just cost an image push.
func DetectPhotoRequest(text string) bool {
	return containsAny(text, photoKeywords)
}

// DetectOrderIntent reports whether the customer is confirming a purchase.
func DetectOrderIntent(text string) bool {
	return containsAny(text, orderKeywords)
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
