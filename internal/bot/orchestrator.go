package bot

import (
	"context"
	"log"
	"strings"

	"messenger-funnel/internal/catalog"
	"messenger-funnel/internal/intent"
	"messenger-funnel/internal/lead"
	"messenger-funnel/internal/models"
	"messenger-funnel/internal/reply"
	"messenger-funnel/internal/store"
)

const maxImagesPerSend = 3

// Sender is the outbound transport contract. Both operations are
// fire-and-log; the bot never consumes a delivery result.
type Sender interface {
	SendText(recipientID, text string) error
	SendImage(recipientID, imageURL string) error
}

// Broadcaster pushes persisted turns to live dashboard clients. Optional.
type Broadcaster interface {
	BroadcastTurn(turn models.Conversation)
}

var photoReplies = map[intent.Language]string{
	intent.LanguageSinhala:  "ඡායාරූප ටික එවනවා!",
	intent.LanguageSinglish: "Photos tika ewanawa!",
	intent.LanguageEnglish:  "Sending you the photos now!",
}

const referralGreeting = "ආයුබෝවන්! ඔබේ නම, ලිපිනය සහ දුරකථන අංකය එවන්න.\nWelcome! Please send your name, address and phone number to place your order."

// Orchestrator drives one inbound event through intent detection, lead
// extraction, product grounding, reply generation and the outbound send.
// Each event is an independent, synchronous unit of work.
type Orchestrator struct {
	conversations *store.Conversations
	leads         *lead.Repository
	catalog       *catalog.Resolver
	generator     *reply.Generator
	sender        Sender
	hub           Broadcaster
	historyLimit  int
}

func NewOrchestrator(
	conversations *store.Conversations,
	leads *lead.Repository,
	resolver *catalog.Resolver,
	generator *reply.Generator,
	sender Sender,
	hub Broadcaster,
	historyLimit int,
) *Orchestrator {
	return &Orchestrator{
		conversations: conversations,
		leads:         leads,
		catalog:       resolver,
		generator:     generator,
		sender:        sender,
		hub:           hub,
		historyLimit:  historyLimit,
	}
}

// HandleEvent dispatches a normalized event. Failures are logged and
// recovered locally; no event can take the process down.
func (o *Orchestrator) HandleEvent(ctx context.Context, ev Event) {
	switch ev.Kind {
	case KindMessage:
		o.handleMessage(ctx, ev)
	case KindReferral:
		o.handleReferral(ev)
	case KindPostback:
		o.handlePostback(ctx, ev)
	default:
		log.Printf("Skipping event of unknown kind %q from %s", ev.Kind, ev.SenderID)
	}
}

func (o *Orchestrator) handleMessage(ctx context.Context, ev Event) {
	adID, err := o.conversations.LastAdID(ev.SenderID)
	if err != nil {
		log.Printf("Error resolving ad for %s: %v", ev.SenderID, err)
	}

	// The current message goes to the generator separately, so the window is
	// read before the user turn is persisted.
	history, err := o.conversations.Recent(ev.SenderID, o.historyLimit)
	if err != nil {
		log.Printf("Error loading history for %s: %v", ev.SenderID, err)
		history = nil
	}

	if _, err := o.persistTurn(ev.SenderID, adID, models.RoleUser, ev.Text); err != nil {
		log.Printf("Error persisting user turn for %s: %v", ev.SenderID, err)
	}

	language := intent.DetectLanguage(ev.Text)
	photoRequested := intent.DetectPhotoRequest(ev.Text)
	orderDetected := intent.DetectOrderIntent(ev.Text)
	info := lead.Extract(ev.Text)

	if !info.Empty() {
		if err := o.leads.Upsert(ev.SenderID, adID, info); err != nil {
			log.Printf("Error upserting lead for %s: %v", ev.SenderID, err)
		}
	}

	var product catalog.Context
	if adID != "" {
		product = o.catalog.ByAd(adID)
	} else {
		product = o.catalog.ByQuery(ctx, ev.Text)
	}

	var replyText string
	if photoRequested && len(product.ImageURLs) > 0 {
		o.sendImages(ev.SenderID, product.ImageURLs)
		replyText = o.generator.EnsureMarker(photoReplyFor(language))
	} else {
		replyText = o.generator.Generate(ctx, reply.Input{
			UserMessage:   ev.Text,
			History:       history,
			Product:       product,
			Language:      language,
			OrderDetected: orderDetected,
			AdID:          adID,
		})
	}

	if _, err := o.persistTurn(ev.SenderID, adID, models.RoleAssistant, replyText); err != nil {
		log.Printf("Error persisting assistant turn for %s: %v", ev.SenderID, err)
	}

	if orderDetected {
		o.markOrdered(ev.SenderID, product)
	}

	if err := o.sender.SendText(ev.SenderID, replyText); err != nil {
		log.Printf("Error sending reply to %s: %v", ev.SenderID, err)
	}
}

// handleReferral greets an ad click with the ad's product images and a
// canned contact-detail prompt. No AI call is made on this turn.
func (o *Orchestrator) handleReferral(ev Event) {
	adID := ev.ReferralRef

	if _, err := o.persistTurn(ev.SenderID, adID, models.RoleSystem, referralGreeting); err != nil {
		log.Printf("Error persisting referral turn for %s: %v", ev.SenderID, err)
	}

	product := o.catalog.ByAd(adID)
	o.sendImages(ev.SenderID, product.ImageURLs)

	if err := o.sender.SendText(ev.SenderID, o.generator.EnsureMarker(referralGreeting)); err != nil {
		log.Printf("Error sending referral greeting to %s: %v", ev.SenderID, err)
	}
}

// handlePostback treats a recognized payload as a synthetic "Hello" message
// fed into the normal pipeline. Unknown payloads are skipped.
func (o *Orchestrator) handlePostback(ctx context.Context, ev Event) {
	switch ev.PostbackPayload {
	case "GET_STARTED", "START":
		// An ad click on the get-started button carries its referral here.
		if ev.ReferralRef != "" {
			o.handleReferral(ev)
		}
		synthetic := ev
		synthetic.Kind = KindMessage
		synthetic.Text = "Hello"
		o.handleMessage(ctx, synthetic)
	default:
		log.Printf("Skipping postback with unknown payload %q from %s", ev.PostbackPayload, ev.SenderID)
	}
}

func (o *Orchestrator) markOrdered(senderID string, product catalog.Context) {
	stored, err := o.leads.BySender(senderID)
	if err != nil {
		log.Printf("Error loading lead for %s: %v", senderID, err)
		return
	}
	if stored == nil {
		return
	}
	if err := o.leads.MarkOrdered(senderID, firstLine(product.Listing)); err != nil {
		log.Printf("Error marking lead ordered for %s: %v", senderID, err)
	}
}

func (o *Orchestrator) sendImages(senderID string, urls []string) {
	for i, url := range urls {
		if i >= maxImagesPerSend {
			break
		}
		if err := o.sender.SendImage(senderID, url); err != nil {
			log.Printf("Error sending image to %s: %v", senderID, err)
		}
	}
}

func (o *Orchestrator) persistTurn(senderID, adID, role, text string) (models.Conversation, error) {
	turn, err := o.conversations.Append(senderID, adID, role, text)
	if err == nil && o.hub != nil {
		o.hub.BroadcastTurn(turn)
	}
	return turn, err
}

func photoReplyFor(language intent.Language) string {
	if text, ok := photoReplies[language]; ok {
		return text
	}
	return photoReplies[intent.LanguageEnglish]
}

func firstLine(listing string) string {
	if listing == "" {
		return ""
	}
	if idx := strings.IndexByte(listing, '\n'); idx >= 0 {
		return listing[:idx]
	}
	return listing
}
