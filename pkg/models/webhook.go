package models

// WebhookPayload is the incoming JSON body from the Messenger platform.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry groups the messaging events delivered for one page.
type Entry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

// MessagingEvent is one raw event. Exactly one of Message, Postback or
// Referral is expected to be present.
type MessagingEvent struct {
	Sender    Participant     `json:"sender"`
	Recipient Participant     `json:"recipient"`
	Timestamp int64           `json:"timestamp"`
	Message   *MessageContent `json:"message,omitempty"`
	Postback  *Postback       `json:"postback,omitempty"`
	Referral  *Referral       `json:"referral,omitempty"`
}

type Participant struct {
	ID string `json:"id"`
}

type MessageContent struct {
	MID  string `json:"mid"`
	Text string `json:"text"`
}

type Postback struct {
	Title    string    `json:"title"`
	Payload  string    `json:"payload"`
	Referral *Referral `json:"referral,omitempty"`
}

// Referral carries the ad context from a click-to-Messenger ad.
type Referral struct {
	Ref    string `json:"ref"`
	AdID   string `json:"ad_id"`
	Source string `json:"source"`
	Type   string `json:"type"`
}
