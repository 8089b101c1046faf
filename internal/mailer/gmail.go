package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"sync"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrNoRecipients is returned when a message has nobody to go to
var ErrNoRecipients = errors.New("message has no recipients")

// GmailSender sends messages from the authenticated Gmail account
type GmailSender struct {
	service *gmail.Service
	userID  string

	mu      sync.Mutex
	address string
}

// NewGmailSender creates a Gmail sender. An empty credentials file falls back
// to application default credentials.
func NewGmailSender(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*GmailSender, error) {
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(gmail.GmailSendScope, gmail.GmailMetadataScope))

	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}

	return &GmailSender{
		service: service,
		userID:  "me",
	}, nil
}

// Send implements Sender. A message without a From address is sent from the
// account's own address so the sender name is kept.
func (s *GmailSender) Send(ctx context.Context, msg Message) error {
	if len(msg.Recipients()) == 0 {
		return ErrNoRecipients
	}

	if msg.From == "" {
		address, err := s.accountAddress(ctx)
		if err != nil {
			log.Printf("⚠️ Sending without a sender name: %v", err)
		}
		msg.From = address
	}

	body, err := msg.Bytes()
	if err != nil {
		return err
	}

	raw := base64.URLEncoding.EncodeToString(body)
	sent, err := s.service.Users.Messages.Send(s.userID, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	if sent.Id == "" {
		return fmt.Errorf("sending message: gmail returned no message id")
	}
	return nil
}

// accountAddress looks up the authenticated account's address once
func (s *GmailSender) accountAddress(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.address != "" {
		return s.address, nil
	}

	profile, err := s.service.Users.GetProfile(s.userID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("getting gmail profile: %w", err)
	}
	if profile.EmailAddress == "" {
		return "", errors.New("gmail profile has no address")
	}

	s.address = profile.EmailAddress
	return s.address, nil
}
