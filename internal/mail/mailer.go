// Package mail はSMTP経由のメール送信を提供する。
package mail

import (
	"bytes"
	"fmt"
	"text/template"

	gomail "github.com/go-mail/mail/v2"
)

// パスワードリセットメールの本文テンプレート。
var resetMailTemplate = template.Must(template.New("password_reset").Parse(
	`Hi {{.Username}},

We received a request to reset the password for your account.
To choose a new password, open the link below:

{{.ResetLink}}

This link expires in {{.TTLHours}} hours. If you did not request a
password reset, you can safely ignore this email.
`))

// resetMailData はリセットメールテンプレートに渡すデータ。
type resetMailData struct {
	Username  string
	ResetLink string
	TTLHours  int
}

// Mailer はSMTP経由でメールを送信する。
type Mailer struct {
	dialer *gomail.Dialer
	sender string
}

// NewMailer はMailerを生成する。
func NewMailer(host string, port int, username, password, sender string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		sender: sender,
	}
}

// SendPasswordReset はパスワードリセットメールを送信する。
// 一時的なSMTP障害に備えて最大3回リトライする。
func (m *Mailer) SendPasswordReset(to, username, resetLink string, ttlHours int) error {
	var body bytes.Buffer
	err := resetMailTemplate.Execute(&body, resetMailData{
		Username:  username,
		ResetLink: resetLink,
		TTLHours:  ttlHours,
	})
	if err != nil {
		return fmt.Errorf("failed to render reset mail template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", "Reset your fittrack password")
	msg.SetBody("text/plain", body.String())

	for i := 0; i < 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	return nil
}
