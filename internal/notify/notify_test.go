package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfigured(t *testing.T) {
	var nilSG *SendGrid
	if nilSG.Configured() {
		t.Error("nil client configured")
	}
	if NewSendGrid("", "k", "a@x", "").Configured() {
		t.Error("missing recipient should not be configured")
	}
	if err := NewSendGrid("", "", "", "").Send(context.Background(), Message{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v", err)
	}
}

func TestSend(t *testing.T) {
	var got mailSend
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("authorization")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()
	sg := NewSendGrid(srv.URL, "SG.key", "from@example.com", "to@example.com")
	if err := sg.Send(context.Background(), Message{Subject: "New Lead #1", HTML: "<p>x</p>"}); err != nil {
		t.Fatal(err)
	}
	if path != "/v3/mail/send" {
		t.Errorf("path = %q", path)
	}
	if auth != "Bearer SG.key" {
		t.Errorf("auth = %q", auth)
	}
	if got.Subject != "New Lead #1" || got.From.Email != "from@example.com" || got.Personalizations[0].To[0].Email != "to@example.com" {
		t.Errorf("payload = %+v", got)
	}
	if got.Content[0].Type != "text/html" {
		t.Errorf("content = %+v", got.Content)
	}
}

// 解码 SDK 生成的请求体
type mailSend struct {
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	From struct {
		Email string `json:"email"`
	} `json:"from"`
	Subject string `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func TestSendStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"message":"sender not verified"}]}`))
	}))
	defer srv.Close()
	err := NewSendGrid(srv.URL, "k", "a@x", "b@x").Send(context.Background(), Message{})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusForbidden {
		t.Fatalf("err = %v", err)
	}
}
