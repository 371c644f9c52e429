package reply

import (
	"context"
	"log"
	"strings"

	"messenger-funnel/internal/ai"
	"messenger-funnel/internal/catalog"
	"messenger-funnel/internal/intent"
	"messenger-funnel/internal/models"
)

const (
	maxReplyTokens   = 120
	replyTemperature = 0.7
)

const noProductClause = "You have NO product data for this conversation. Do not mention, describe, or invent any product or price. If asked about products, say you will check and get back."

// Per-language persona instructions. Each variant carries the same rules:
// short replies, keep context, mention only listed products, never invent
// products, always close with the marker.
const (
	promptSinhala = "You are a friendly Sri Lankan online shop sales assistant. Reply in Sinhala script. Keep the reply to 1-2 short sentences. Stay on the current conversation topic. You may only mention products from the list given below, never any other product."

	promptSinglish = "You are a friendly Sri Lankan online shop sales assistant. Reply in Singlish (Sinhala written in English letters), casual and warm. Keep the reply to 1-2 short sentences. Stay on the current conversation topic. You may only mention products from the list given below, never any other product."

	promptEnglish = "You are a friendly Sri Lankan online shop sales assistant. Reply in simple English. Keep the reply to 1-2 short sentences. Stay on the current conversation topic. You may only mention products from the list given below, never any other product."
)

var apologies = map[intent.Language]string{
	intent.LanguageSinhala:  "සමාවෙන්න, පොඩි ප්‍රශ්නයක් ආවා. ටිකකින් ආයේ උත්සාහ කරන්න.",
	intent.LanguageSinglish: "Sorry, podi prashnayak awa. Tikakin aye try karanna.",
	intent.LanguageEnglish:  "Sorry, something went wrong on our side. Please try again in a moment.",
}

// Input bundles everything the generator needs for one turn.
type Input struct {
	UserMessage   string
	History       []models.Conversation
	Product       catalog.Context
	Language      intent.Language
	OrderDetected bool
	AdID          string
}

// Generator turns one inbound message into a short grounded reply. It never
// returns an error: a collaborator failure becomes a language-appropriate
// apology so the conversation is never left silent.
type Generator struct {
	ai     ai.Completer
	marker string
}

func NewGenerator(completer ai.Completer, closingMarker string) *Generator {
	return &Generator{ai: completer, marker: closingMarker}
}

func (g *Generator) Generate(ctx context.Context, in Input) string {
	system := g.buildSystemPrompt(in)

	history := make([]ai.Turn, 0, len(in.History))
	for _, turn := range in.History {
		if turn.Role != models.RoleUser && turn.Role != models.RoleAssistant {
			continue
		}
		history = append(history, ai.Turn{Role: turn.Role, Text: turn.Text})
	}

	text, err := g.ai.Complete(ctx, ai.Request{
		System:      system,
		History:     history,
		UserMessage: in.UserMessage,
		MaxTokens:   maxReplyTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		log.Printf("Completion failed, sending apology: %v", err)
		return g.EnsureMarker(apologyFor(in.Language))
	}

	return g.EnsureMarker(strings.TrimSpace(text))
}

// buildSystemPrompt selects the persona for the detected language and
// appends either the literal product listing or the explicit no-product
// clause. That textual branch is what keeps fabricated products out.
func (g *Generator) buildSystemPrompt(in Input) string {
	var b strings.Builder

	switch in.Language {
	case intent.LanguageSinhala:
		b.WriteString(promptSinhala)
	case intent.LanguageSinglish:
		b.WriteString(promptSinglish)
	default:
		b.WriteString(promptEnglish)
	}

	b.WriteString("\nAlways end your reply with \"" + g.marker + "\".")

	if in.Product.Empty() {
		b.WriteString("\n" + noProductClause)
	} else {
		b.WriteString("\nAvailable products:\n" + in.Product.Listing)
	}

	if in.OrderDetected {
		b.WriteString("\nThe customer is confirming an order. Thank them and ask for any missing delivery details (name, address, phone).")
	}

	return b.String()
}

// EnsureMarker appends the closing marker when the text does not already
// end with it. Every outbound reply passes through here.
func (g *Generator) EnsureMarker(text string) string {
	if g.marker == "" {
		return text
	}
	if strings.HasSuffix(text, g.marker) {
		return text
	}
	return text + " " + g.marker
}

// Apology returns the canned failure reply for a language, marker included.
// Used by callers that bail out before generation.
func (g *Generator) Apology(language intent.Language) string {
	return g.EnsureMarker(apologyFor(language))
}

func apologyFor(language intent.Language) string {
	if text, ok := apologies[language]; ok {
		return text
	}
	return apologies[intent.LanguageEnglish]
}
