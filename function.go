package cloudfunctions

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/pep299/article-digest/internal/application"
	"github.com/pep299/article-digest/internal/config"
	"github.com/pep299/article-digest/internal/handlers"
	"github.com/pep299/article-digest/internal/response"
)

func init() {
	functions.HTTP("SendArticleReminder", SendArticleReminder)
	functions.HTTP("Subscribe", Subscribe)
}

var (
	appMu sync.Mutex
	app   *application.Application

	// newApplication builds the application on the first request of an instance
	newApplication = func(ctx context.Context) (*application.Application, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return application.New(ctx, cfg)
	}
)

// getApplication returns the instance's application. Its clients outlive the
// request that creates them, so they are built on a background context.
func getApplication() (*application.Application, error) {
	appMu.Lock()
	defer appMu.Unlock()

	if app != nil {
		return app, nil
	}

	created, err := newApplication(context.Background())
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Application initialized")
	app = created
	return app, nil
}

// SendArticleReminder sends the daily digest. The audience query parameter
// selects owner or subscribers; subscribers is the default.
func SendArticleReminder(w http.ResponseWriter, r *http.Request) {
	a, err := getApplication()
	if err != nil {
		log.Printf("❌ Failed to initialize application: %v", err)
		response.WriteInternalError(w, "Internal server error")
		return
	}

	audience := r.URL.Query().Get("audience")
	if audience == "" {
		audience = handlers.AudienceSubscribers
	}

	result, err := a.Server.Send(r.Context(), audience)
	if errors.Is(err, handlers.ErrUnknownAudience) {
		response.WriteBadRequest(w, err.Error())
		return
	}
	if err != nil {
		response.WriteInternalError(w, err.Error())
		return
	}

	response.WriteSuccess(w, "Digest processed", result)
}

// Subscribe appends a subscription form submission to the Subscriptions sheet
func Subscribe(w http.ResponseWriter, r *http.Request) {
	a, err := getApplication()
	if err != nil {
		log.Printf("❌ Failed to initialize application: %v", err)
		response.WriteInternalError(w, "Internal server error")
		return
	}

	a.Server.SubscribeHandler(w, r)
}
