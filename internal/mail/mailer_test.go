package mail

import (
	"bytes"
	"strings"
	"testing"
)

// TestResetMailTemplate_RendersFields はリセットメール本文にユーザー名・リンク・有効期限が含まれることを検証する。
func TestResetMailTemplate_RendersFields(t *testing.T) {
	var body bytes.Buffer
	err := resetMailTemplate.Execute(&body, resetMailData{
		Username:  "taro",
		ResetLink: "https://fittrack.example.com/reset-password?uid=abc&token=def",
		TTLHours:  24,
	})
	if err != nil {
		t.Fatalf("template execution failed: %v", err)
	}

	text := body.String()
	if !strings.Contains(text, "Hi taro,") {
		t.Error("expected greeting with username")
	}
	if !strings.Contains(text, "https://fittrack.example.com/reset-password?uid=abc&token=def") {
		t.Error("expected reset link in body")
	}
	if !strings.Contains(text, "expires in 24 hours") {
		t.Error("expected expiry notice in body")
	}
}

// TestNewMailer_Initializes はMailerが正しく初期化されることを検証する。
func TestNewMailer_Initializes(t *testing.T) {
	m := NewMailer("smtp.example.com", 587, "user", "pass", "noreply@fittrack.example.com")
	if m == nil {
		t.Fatal("expected non-nil Mailer")
	}
	if m.sender != "noreply@fittrack.example.com" {
		t.Errorf("sender = %q", m.sender)
	}
}
