package application

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/pep299/article-digest/internal/cache"
	"github.com/pep299/article-digest/internal/config"
	"github.com/pep299/article-digest/internal/handlers"
	"github.com/pep299/article-digest/internal/mailer"
	"github.com/pep299/article-digest/internal/reminder"
	"github.com/pep299/article-digest/internal/sheets"
	"github.com/pep299/article-digest/internal/slack"
	"github.com/pep299/article-digest/internal/subscription"
)

// Application holds every component of the digest service
type Application struct {
	Config       *config.Config
	Workbook     *sheets.Workbook
	Reminder     *reminder.Service
	Intake       *subscription.Intake
	CacheManager *cache.Manager
	Server       *handlers.Server
	cleanup      []func() error
}

// New creates the application with Google clients built from cfg
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var (
		source  sheets.Source
		cleanup []func() error
	)

	switch cfg.SourceBackend {
	case config.BackendBucket:
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating storage client: %w", err)
		}
		cleanup = append(cleanup, client.Close)

		bucket := sheets.NewBucketSource(client, cfg.SourceBucket, cfg.SourcePrefix)
		checkBucketSheets(ctx, bucket)
		source = bucket
	default:
		client, err := sheets.NewClient(ctx, cfg.SpreadsheetID, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		source = client
	}

	sender, err := mailer.NewGmailSender(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	var notifier reminder.Notifier
	if cfg.SlackEnabled() {
		notifier = slack.NewClient(cfg.SlackBotToken, cfg.SlackChannel)
	}

	app, err := NewWithDeps(cfg, source, sender, notifier)
	if err != nil {
		return nil, err
	}
	app.cleanup = append(app.cleanup, cleanup...)
	return app, nil
}

// NewWithDeps creates the application around the given collaborators.
// notifier may be nil.
func NewWithDeps(cfg *config.Config, source sheets.Source, sender mailer.Sender, notifier reminder.Notifier) (*Application, error) {
	cacheManager, err := cache.NewManager("memory", cfg.CacheTTL())
	if err != nil {
		return nil, fmt.Errorf("creating cache manager: %w", err)
	}

	workbook := sheets.NewWorkbook(source)

	reminderService := reminder.NewService(workbook, sender, notifier, cfg.OwnerEmail, cfg.SenderName)
	reminderService.SetSenderAddress(cfg.SenderAddress)

	intake := subscription.NewIntake(workbook, cfg.IntakeLockTimeout())

	return &Application{
		Config:       cfg,
		Workbook:     workbook,
		Reminder:     reminderService,
		Intake:       intake,
		CacheManager: cacheManager,
		Server:       handlers.NewServer(cfg, reminderService, intake, cacheManager),
		cleanup:      []func() error{cacheManager.Close},
	}, nil
}

// Close releases the application's clients
func (a *Application) Close() error {
	var errs []string
	for _, fn := range a.cleanup {
		if err := fn(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing application: %s", strings.Join(errs, "; "))
	}
	return nil
}

// checkBucketSheets warns about workbook sheets missing from the bucket
func checkBucketSheets(ctx context.Context, bucket *sheets.BucketSource) {
	names, err := bucket.SheetNames(ctx)
	if err != nil {
		log.Printf("❌ Listing bucket sheets failed: %v", err)
		return
	}

	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}
	for _, name := range []string{sheets.NextSheet, sheets.SubscribersSheet, sheets.SubscriptionsSheet} {
		if !present[name] {
			log.Printf("⚠️ Sheet %s has no object %s yet", name, bucket.ObjectName(name))
		}
	}
}
