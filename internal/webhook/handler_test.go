package webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"messenger-funnel/internal/bot"
	"messenger-funnel/internal/config"
	"messenger-funnel/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []bot.Event
}

func (r *recordingHandler) HandleEvent(ctx context.Context, ev bot.Event) {
	r.events = append(r.events, ev)
}

func setupRouter(recorder *recordingHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(&config.Config{VerifyToken: "secret-token"}, recorder)
	r := gin.New()
	r.GET("/webhook", handler.VerifyWebhook)
	r.POST("/webhook", handler.HandleEvent)
	return r
}

func TestVerifyWebhook(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", query: "hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", wantStatus: http.StatusOK, wantBody: "12345"},
		{name: "wrong token", query: "hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", wantStatus: http.StatusForbidden},
		{name: "missing params", query: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&recordingHandler{})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/webhook?"+tt.query, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestHandleEventDispatch(t *testing.T) {
	recorder := &recordingHandler{}
	router := setupRouter(recorder)

	body := `{
		"object": "page",
		"entry": [{
			"id": "page-1",
			"messaging": [
				{"sender": {"id": "sender-1"}, "message": {"mid": "m1", "text": "hello"}},
				{"sender": {"id": "sender-2"}, "referral": {"ref": "ad-42", "source": "ADS"}},
				{"sender": {"id": "sender-3"}, "postback": {"payload": "GET_STARTED"}}
			]
		}]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, recorder.events, 3)

	assert.Equal(t, bot.KindMessage, recorder.events[0].Kind)
	assert.Equal(t, "sender-1", recorder.events[0].SenderID)
	assert.Equal(t, "page-1", recorder.events[0].PageID)
	assert.Equal(t, "hello", recorder.events[0].Text)

	assert.Equal(t, bot.KindReferral, recorder.events[1].Kind)
	assert.Equal(t, "ad-42", recorder.events[1].ReferralRef)

	assert.Equal(t, bot.KindPostback, recorder.events[2].Kind)
	assert.Equal(t, "GET_STARTED", recorder.events[2].PostbackPayload)
}

func TestHandleEventIgnoresNonPageObjects(t *testing.T) {
	recorder := &recordingHandler{}
	router := setupRouter(recorder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(`{"object":"instagram","entry":[]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.events)
}

func TestHandleEventBadJSON(t *testing.T) {
	router := setupRouter(&recordingHandler{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNormalizeSkipsMalformedEvents(t *testing.T) {
	payload := models.WebhookPayload{
		Object: "page",
		Entry: []models.Entry{{
			ID: "page-1",
			Messaging: []models.MessagingEvent{
				{Sender: models.Participant{ID: ""}, Message: &models.MessageContent{Text: "no sender"}},
				{Sender: models.Participant{ID: "sender-1"}},
				{Sender: models.Participant{ID: "sender-2"}, Message: &models.MessageContent{Text: "kept"}},
			},
		}},
	}

	events := Normalize(payload)
	require.Len(t, events, 1, "events without sender or content are skipped")
	assert.Equal(t, "kept", events[0].Text)
}

func TestNormalizePostbackReferral(t *testing.T) {
	payload := models.WebhookPayload{
		Object: "page",
		Entry: []models.Entry{{
			ID: "page-1",
			Messaging: []models.MessagingEvent{{
				Sender:   models.Participant{ID: "sender-1"},
				Postback: &models.Postback{Payload: "GET_STARTED", Referral: &models.Referral{AdID: "ad-7"}},
			}},
		}},
	}

	events := Normalize(payload)
	require.Len(t, events, 1)
	assert.Equal(t, bot.KindPostback, events[0].Kind)
	assert.Equal(t, "ad-7", events[0].ReferralRef, "ad_id used when ref is empty")
}
