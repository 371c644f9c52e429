package webhook

import (
	"context"
	"log"
	"net/http"

	"messenger-funnel/internal/bot"
	"messenger-funnel/internal/config"
	"messenger-funnel/pkg/models"

	"github.com/gin-gonic/gin"
)

// EventHandler consumes normalized events. Satisfied by bot.Orchestrator.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev bot.Event)
}

type Handler struct {
	Config *config.Config
	Bot    EventHandler
}

func NewHandler(cfg *config.Config, eventHandler EventHandler) *Handler {
	return &Handler{
		Config: cfg,
		Bot:    eventHandler,
	}
}

// VerifyWebhook answers the platform's subscription handshake.
func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "" && token != "" {
		if mode == "subscribe" && token == h.Config.VerifyToken {
			log.Println("Webhook verified successfully!")
			c.String(http.StatusOK, challenge)
		} else {
			c.Status(http.StatusForbidden)
		}
	} else {
		c.Status(http.StatusBadRequest)
	}
}

// HandleEvent receives the event POST, normalizes every entry and runs each
// event through the bot. Events within one request are processed in order so
// a referral followed by a message from the same sender cannot race.
func (h *Handler) HandleEvent(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Error binding JSON: %v", err)
		c.Status(http.StatusBadRequest)
		return
	}

	if payload.Object != "page" {
		c.Status(http.StatusOK)
		return
	}

	for _, ev := range Normalize(payload) {
		h.Bot.HandleEvent(c.Request.Context(), ev)
	}

	c.Status(http.StatusOK)
}

// Normalize flattens the raw payload into tagged events, resolving field
// presence exactly once. Malformed entries are skipped so one bad event
// never blocks the rest of the batch.
func Normalize(payload models.WebhookPayload) []bot.Event {
	var events []bot.Event
	for _, entry := range payload.Entry {
		for _, raw := range entry.Messaging {
			if raw.Sender.ID == "" {
				log.Println("Skipping messaging event without sender id")
				continue
			}

			ev := bot.Event{
				SenderID: raw.Sender.ID,
				PageID:   entry.ID,
			}
			switch {
			case raw.Message != nil && raw.Message.Text != "":
				ev.Kind = bot.KindMessage
				ev.Text = raw.Message.Text
			case raw.Postback != nil:
				ev.Kind = bot.KindPostback
				ev.PostbackPayload = raw.Postback.Payload
				if raw.Postback.Referral != nil {
					ev.ReferralRef = referralID(raw.Postback.Referral)
				}
			case raw.Referral != nil:
				ev.Kind = bot.KindReferral
				ev.ReferralRef = referralID(raw.Referral)
			default:
				log.Printf("Skipping messaging event from %s with no usable content", raw.Sender.ID)
				continue
			}
			events = append(events, ev)
		}
	}
	return events
}

func referralID(ref *models.Referral) string {
	if ref.Ref != "" {
		return ref.Ref
	}
	return ref.AdID
}
