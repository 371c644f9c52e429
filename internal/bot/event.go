package bot

// EventKind tags the normalized inbound event.
type EventKind string

const (
	KindMessage  EventKind = "message"
	KindPostback EventKind = "postback"
	KindReferral EventKind = "referral"
)

// Event is the normalized form of one messaging event, resolved once at the
// webhook boundary so the pipeline never pokes at optional payload fields.
type Event struct {
	Kind            EventKind
	SenderID        string
	PageID          string
	Text            string
	PostbackPayload string
	ReferralRef     string
}
