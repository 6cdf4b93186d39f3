// Package notifications pushes friend-invitation notices to mobile devices
// through the Firebase Cloud Messaging HTTP v1 API.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	messagingScope  = "https://www.googleapis.com/auth/firebase.messaging"
	defaultEndpoint = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
)

// ErrInvalidToken means the device registration is gone and should be dropped.
var ErrInvalidToken = errors.New("fcm_invalid_token")

type Notification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// Message is a push payload. Data-only messages are delivered silently;
// a Notification makes it a visible alert on both platforms.
type Message struct {
	Data         map[string]string
	Notification *Notification
}

type FCMSender struct {
	projectID   string
	endpoint    string
	tokenSource oauth2.TokenSource
	client      *http.Client
}

func NewFCMSender(ctx context.Context, projectID, credentialsPath string) (*FCMSender, error) {
	credentialsPath = strings.TrimSpace(credentialsPath)
	if credentialsPath == "" {
		return nil, errors.New("fcm credentials path required")
	}
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read fcm credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, messagingScope)
	if err != nil {
		return nil, fmt.Errorf("parse fcm credentials: %w", err)
	}
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, errors.New("fcm project id required")
	}
	return &FCMSender{
		projectID:   projectID,
		tokenSource: oauth2.ReuseTokenSource(nil, creds.TokenSource),
		client:      http.DefaultClient,
	}, nil
}

func (s *FCMSender) Send(ctx context.Context, deviceToken string, msg Message) error {
	if s == nil {
		return errors.New("fcm sender not configured")
	}
	if strings.TrimSpace(deviceToken) == "" {
		return errors.New("fcm device token required")
	}

	body, err := json.Marshal(sendRequest{Message: buildWireMessage(deviceToken, msg)})
	if err != nil {
		return fmt.Errorf("encode fcm message: %w", err)
	}
	tok, err := s.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("fcm access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build fcm request: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fcm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, _ := io.ReadAll(resp.Body)
	return decodeSendError(resp.StatusCode, raw)
}

func (s *FCMSender) url() string {
	if s.endpoint != "" {
		return s.endpoint
	}
	return fmt.Sprintf(defaultEndpoint, s.projectID)
}

func buildWireMessage(deviceToken string, msg Message) wireMessage {
	out := wireMessage{
		Token:        deviceToken,
		Data:         msg.Data,
		Notification: msg.Notification,
		Android:      &androidConfig{Priority: "HIGH"},
	}
	if msg.Notification != nil {
		out.APNS = &apnsConfig{Headers: map[string]string{
			"apns-push-type": "alert",
			"apns-priority":  "10",
		}}
	}
	return out
}

type sendRequest struct {
	Message wireMessage `json:"message"`
}

type wireMessage struct {
	Token        string            `json:"token"`
	Data         map[string]string `json:"data,omitempty"`
	Notification *Notification     `json:"notification,omitempty"`
	Android      *androidConfig    `json:"android,omitempty"`
	APNS         *apnsConfig       `json:"apns,omitempty"`
}

type androidConfig struct {
	Priority string `json:"priority,omitempty"`
}

type apnsConfig struct {
	Headers map[string]string `json:"headers,omitempty"`
}

type errorEnvelope struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Details []struct {
			Type      string `json:"@type"`
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

func decodeSendError(status int, body []byte) error {
	var env errorEnvelope
	if len(body) == 0 || json.Unmarshal(body, &env) != nil {
		return fmt.Errorf("fcm send failed: status %d: %s", status, string(body))
	}
	for _, d := range env.Error.Details {
		if d.ErrorCode == "UNREGISTERED" {
			return fmt.Errorf("%w: %s", ErrInvalidToken, env.Error.Message)
		}
	}
	if status == http.StatusNotFound && env.Error.Status == "NOT_FOUND" {
		return fmt.Errorf("%w: %s", ErrInvalidToken, env.Error.Message)
	}
	return fmt.Errorf("fcm send failed: status %d: %s", status, env.Error.Message)
}
