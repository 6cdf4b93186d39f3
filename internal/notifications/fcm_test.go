package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

type recorded struct {
	auth string
	body map[string]any
}

func newTestSender(t *testing.T, status int, reply string) (*FCMSender, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &rec.body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	return &FCMSender{
		projectID:   "flash-test",
		endpoint:    srv.URL,
		tokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access-1"}),
		client:      srv.Client(),
	}, rec
}

func message(t *testing.T, rec *recorded) map[string]any {
	t.Helper()
	msg, _ := rec.body["message"].(map[string]any)
	if msg == nil {
		t.Fatalf("missing message in payload: %v", rec.body)
	}
	return msg
}

func TestSendAlertAddsAPNSHeaders(t *testing.T) {
	sender, rec := newTestSender(t, http.StatusOK, `{"name":"m/1"}`)

	err := sender.Send(context.Background(), "device-1", Message{
		Data:         map[string]string{"type": "friend_invitation", "invitation_id": "frn:invitation:1"},
		Notification: &Notification{Title: "New friend invitation", Body: "ana wants to be friends"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if rec.auth != "Bearer access-1" {
		t.Fatalf("unexpected auth header: %q", rec.auth)
	}

	msg := message(t, rec)
	if msg["token"] != "device-1" {
		t.Fatalf("unexpected token: %v", msg["token"])
	}
	note, _ := msg["notification"].(map[string]any)
	if note == nil || note["title"] != "New friend invitation" {
		t.Fatalf("unexpected notification: %v", msg["notification"])
	}
	apns, _ := msg["apns"].(map[string]any)
	headers, _ := apns["headers"].(map[string]any)
	if headers["apns-push-type"] != "alert" || headers["apns-priority"] != "10" {
		t.Fatalf("unexpected apns headers: %v", headers)
	}
}

func TestSendDataOnlyOmitsAlertFields(t *testing.T) {
	sender, rec := newTestSender(t, http.StatusOK, `{}`)

	if err := sender.Send(context.Background(), "device-1", Message{Data: map[string]string{"type": "friend_invitation"}}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msg := message(t, rec)
	if _, ok := msg["notification"]; ok {
		t.Fatalf("notification should be omitted")
	}
	if _, ok := msg["apns"]; ok {
		t.Fatalf("apns should be omitted")
	}
}

func TestSendUnregisteredMapsToInvalidToken(t *testing.T) {
	reply := `{"error":{"status":"NOT_FOUND","message":"Requested entity was not found.","details":[{"@type":"type.googleapis.com/google.firebase.fcm.v1.FcmError","errorCode":"UNREGISTERED"}]}}`
	sender, _ := newTestSender(t, http.StatusNotFound, reply)

	err := sender.Send(context.Background(), "stale", Message{})
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSendOtherFailure(t *testing.T) {
	sender, _ := newTestSender(t, http.StatusInternalServerError, `{"error":{"status":"INTERNAL","message":"boom"}}`)

	err := sender.Send(context.Background(), "device-1", Message{})
	if err == nil || errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected generic failure, got %v", err)
	}
}

func TestSendRequiresToken(t *testing.T) {
	sender, _ := newTestSender(t, http.StatusOK, `{}`)
	if err := sender.Send(context.Background(), "  ", Message{}); err == nil {
		t.Fatalf("expected error for blank token")
	}
}
