package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pep299/article-digest/internal/article"
	"github.com/pep299/article-digest/internal/digest"
	"github.com/pep299/article-digest/internal/mailer"
)

// Workbook is the part of the review workbook the reminder needs
type Workbook interface {
	DailyArticleCount(ctx context.Context) (int, error)
	LoadArticles(ctx context.Context, count int) ([]article.Article, int, error)
	LoadRecipients(ctx context.Context) ([]string, error)
	LogSending(ctx context.Context, articles []article.Article, day time.Time) error
}

// Notifier is told about every digest that went out
type Notifier interface {
	NotifyDigestSent(ctx context.Context, summary string) error
}

// Options controls a single sending
type Options struct {
	Recipients []string
	LogSending bool
}

// Result describes what a sending did
type Result struct {
	Day        string `json:"day"`
	Requested  int    `json:"requested"`
	Articles   int    `json:"articles"`
	Skipped    int    `json:"skipped"`
	Recipients int    `json:"recipients"`
	Sent       bool   `json:"sent"`
	Logged     bool   `json:"logged"`
	Notified   bool   `json:"notified"`
}

// Service sends the daily article digest
type Service struct {
	workbook      Workbook
	sender        mailer.Sender
	notifier      Notifier
	ownerEmail    string
	senderName    string
	senderAddress string
	now           func() time.Time
}

// NewService creates a reminder service. notifier may be nil.
func NewService(workbook Workbook, sender mailer.Sender, notifier Notifier, ownerEmail, senderName string) *Service {
	if senderName == "" {
		senderName = mailer.DefaultSenderName
	}
	return &Service{
		workbook:   workbook,
		sender:     sender,
		notifier:   notifier,
		ownerEmail: ownerEmail,
		senderName: senderName,
		now:        time.Now,
	}
}

// SetSenderAddress sets the From address of outgoing digests. Without one
// the mail provider uses the authenticated account.
func (s *Service) SetSenderAddress(address string) {
	s.senderAddress = address
}

// SendToOwner sends the digest to the owner without logging it
func (s *Service) SendToOwner(ctx context.Context) (*Result, error) {
	if s.ownerEmail == "" {
		return nil, fmt.Errorf("sending to owner: no owner email configured")
	}
	return s.Send(ctx, Options{Recipients: []string{s.ownerEmail}, LogSending: false})
}

// SendToSubscribers sends the digest to every active subscriber and logs it
func (s *Service) SendToSubscribers(ctx context.Context) (*Result, error) {
	recipients, err := s.workbook.LoadRecipients(ctx)
	if err != nil {
		return nil, err
	}
	return s.Send(ctx, Options{Recipients: recipients, LogSending: true})
}

// Send renders the queued articles and mails them to opts.Recipients. Nothing
// is sent when no article is queued.
func (s *Service) Send(ctx context.Context, opts Options) (*Result, error) {
	day := s.now().UTC()
	result := &Result{
		Day:        day.Format("2006-01-02"),
		Recipients: len(opts.Recipients),
	}

	log.Printf("🕐 Preparing article digest for %s", result.Day)

	articles, html, err := s.load(ctx, result)
	if err != nil {
		return result, err
	}
	if result.Requested == 0 {
		log.Printf("✅ No articles queued, nothing to send")
		return result, nil
	}
	if len(opts.Recipients) == 0 {
		log.Printf("⚠️ No recipients, digest of %d articles not sent", result.Articles)
		return result, nil
	}

	msg := mailer.NewDigestMessage(s.senderName, s.senderAddress, opts.Recipients, html, day)
	if err := s.sender.Send(ctx, msg); err != nil {
		return result, fmt.Errorf("sending digest: %w", err)
	}
	result.Sent = true
	log.Printf("✅ Digest with %d articles sent to %d recipients", result.Articles, result.Recipients)

	if opts.LogSending {
		if err := s.workbook.LogSending(ctx, articles, day); err != nil {
			return result, err
		}
		result.Logged = true
	}

	s.notify(ctx, result)
	return result, nil
}

// Preview renders the digest that would be sent now
func (s *Service) Preview(ctx context.Context) (string, *Result, error) {
	result := &Result{Day: s.now().UTC().Format("2006-01-02")}

	_, html, err := s.load(ctx, result)
	if err != nil {
		return "", result, err
	}
	return html, result, nil
}

func (s *Service) load(ctx context.Context, result *Result) ([]article.Article, string, error) {
	count, err := s.workbook.DailyArticleCount(ctx)
	if err != nil {
		return nil, "", err
	}
	result.Requested = count

	articles, skipped, err := s.workbook.LoadArticles(ctx, count)
	if err != nil {
		return nil, "", err
	}
	result.Articles = len(articles)
	result.Skipped = skipped
	if skipped > 0 {
		log.Printf("⚠️ Skipped %d rows without a title", skipped)
	}

	return articles, digest.Render(articles), nil
}

func (s *Service) notify(ctx context.Context, result *Result) {
	if s.notifier == nil {
		return
	}

	summary := fmt.Sprintf("Article digest for %s sent to %d recipients with %d articles",
		result.Day, result.Recipients, result.Articles)
	if err := s.notifier.NotifyDigestSent(ctx, summary); err != nil {
		log.Printf("❌ Failed to notify about the digest: %v", err)
		return
	}
	result.Notified = true
}
