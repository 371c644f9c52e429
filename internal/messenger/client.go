package messenger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://graph.facebook.com/v21.0"

// Client talks to the Messenger Send API. Sends are fire-and-log: the bot
// never consumes a delivery result beyond the error.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(pageToken string) *Client {
	return &Client{
		token:      pageToken,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point at a local server.
func NewClientWithBaseURL(pageToken, baseURL string) *Client {
	c := NewClient(pageToken)
	c.baseURL = baseURL
	return c
}

type sendRequest struct {
	Recipient recipient `json:"recipient"`
	Message   message   `json:"message"`
}

type recipient struct {
	ID string `json:"id"`
}

type message struct {
	Text       string      `json:"text,omitempty"`
	Attachment *attachment `json:"attachment,omitempty"`
}

type attachment struct {
	Type    string            `json:"type"`
	Payload attachmentPayload `json:"payload"`
}

type attachmentPayload struct {
	URL        string `json:"url"`
	IsReusable bool   `json:"is_reusable"`
}

func (c *Client) SendText(recipientID, text string) error {
	return c.send(sendRequest{
		Recipient: recipient{ID: recipientID},
		Message:   message{Text: text},
	})
}

func (c *Client) SendImage(recipientID, imageURL string) error {
	return c.send(sendRequest{
		Recipient: recipient{ID: recipientID},
		Message: message{
			Attachment: &attachment{
				Type:    "image",
				Payload: attachmentPayload{URL: imageURL, IsReusable: true},
			},
		},
	})
}

func (c *Client) send(payload sendRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s", c.baseURL, url.QueryEscape(c.token))
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("send API error: %s - %s", resp.Status, string(respBody))
	}
	return nil
}
