package mailer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// DefaultSenderName is the display name digests are sent under
const DefaultSenderName = "Article SRS bot"

// Message is a prepared HTML email
type Message struct {
	FromName string
	From     string
	To       []string
	Bcc      []string
	Subject  string
	HTML     string
}

// Sender delivers prepared messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Subject returns the subject line of the digest sent on day
func Subject(day time.Time) string {
	return "[Article digest] Your daily article reviews for " + day.Format("2006-01-02")
}

// NewDigestMessage builds the digest email. Recipients go to Bcc so that
// subscribers do not see each other.
func NewDigestMessage(senderName, senderAddress string, recipients []string, html string, day time.Time) Message {
	return Message{
		FromName: senderName,
		From:     senderAddress,
		Bcc:      recipients,
		Subject:  Subject(day),
		HTML:     html,
	}
}

// Recipients returns every address the message goes to
func (m Message) Recipients() []string {
	all := make([]string, 0, len(m.To)+len(m.Bcc))
	all = append(all, m.To...)
	return append(all, m.Bcc...)
}

// Bytes renders the message in RFC 5322 form with a base64 HTML body
func (m Message) Bytes() ([]byte, error) {
	msg := mail.NewMsg(mail.WithEncoding(mail.EncodingB64))

	if m.From != "" {
		if err := msg.FromFormat(m.FromName, m.From); err != nil {
			return nil, fmt.Errorf("setting sender: %w", err)
		}
	}
	if len(m.To) > 0 {
		if err := msg.To(m.To...); err != nil {
			return nil, fmt.Errorf("setting recipients: %w", err)
		}
	}
	// go-mail leaves Bcc out of the rendered message; Gmail reads it from there
	if len(m.Bcc) > 0 {
		msg.SetGenHeader(mail.Header("Bcc"), m.Bcc...)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("rendering message: %w", err)
	}
	return buf.Bytes(), nil
}
