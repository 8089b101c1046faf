package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pep299/article-digest/internal/cache"
	"github.com/pep299/article-digest/internal/config"
	"github.com/pep299/article-digest/internal/mocks"
	"github.com/pep299/article-digest/internal/reminder"
	"github.com/pep299/article-digest/internal/response"
	"github.com/pep299/article-digest/internal/sheets"
	"github.com/pep299/article-digest/internal/subscription"
)

func testWorkbook() *sheets.Grid {
	grid := sheets.NewGrid()
	grid.SetSheet(sheets.NextSheet, [][]string{
		{"url"},
		{"https://example.com/1", "https://example.com/1", "2021-01-01", "One & Two", "", "", "", "en", "", "", "", "8", "Good", "tech"},
	})
	grid.SetSheet(sheets.SubscribersSheet, [][]string{
		{"email", "name", "since", "srs"},
		{"a@example.com", "A", "2021", "on"},
	})
	grid.SetSheet(sheets.LogSheet, [][]string{{"date", "url"}})
	grid.SetSheet(sheets.SubscriptionsSheet, [][]string{{"Timestamp", "emailAddress", "articleSrs"}})
	return grid
}

func newTestServer(t *testing.T) (*Server, *sheets.Grid, *mocks.MockSender) {
	t.Helper()

	grid := testWorkbook()
	workbook := sheets.NewWorkbook(grid)
	sender := &mocks.MockSender{}

	cacheManager, err := cache.NewManager("memory", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create cache manager: %v", err)
	}
	t.Cleanup(func() { cacheManager.Close() })

	cfg := &config.Config{
		SourceBackend: config.BackendSheets,
		SpreadsheetID: "sheet-123",
		SlackBotToken: "secret",
		OwnerEmail:    "owner@example.com",
		SenderAddress: "bot@example.com",
	}
	server := NewServer(cfg,
		reminder.NewService(workbook, sender, nil, "owner@example.com", ""),
		subscription.NewIntake(workbook, time.Second),
		cacheManager,
	)
	return server, grid, sender
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.SetupRoutes().ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := serve(server, httptest.NewRequest("GET", "/api/v1/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %v", body["status"])
	}
}

func TestPreviewHandler(t *testing.T) {
	server, _, sender := newTestServer(t)

	w := serve(server, httptest.NewRequest("GET", "/api/v1/digest/preview", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Expected HTML content type, got %s", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "One &amp; Two") {
		t.Errorf("Expected escaped title in preview:\n%s", w.Body.String())
	}
	if w.Header().Get("X-Cache") != "MISS" {
		t.Errorf("Expected first preview to miss the cache")
	}

	w = serve(server, httptest.NewRequest("GET", "/api/v1/digest/preview", nil))
	if w.Header().Get("X-Cache") != "HIT" {
		t.Errorf("Expected second preview to hit the cache")
	}

	w = serve(server, httptest.NewRequest("GET", "/api/v1/digest/preview?refresh=true", nil))
	if w.Header().Get("X-Cache") != "MISS" {
		t.Errorf("Expected refresh to bypass the cache")
	}

	if sender.Count() != 0 {
		t.Error("Preview must not send mail")
	}
}

func TestSendHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		status     int
		sent       int
		loggedRows int
	}{
		{"owner", `{"audience":"owner"}`, http.StatusOK, 1, 1},
		{"subscribers", `{"audience":"subscribers"}`, http.StatusOK, 1, 2},
		{"unknown audience", `{"audience":"everyone"}`, http.StatusBadRequest, 0, 1},
		{"invalid body", `not json`, http.StatusBadRequest, 0, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server, grid, sender := newTestServer(t)

			req := httptest.NewRequest("POST", "/api/v1/digest/send", strings.NewReader(test.body))
			w := serve(server, req)

			if w.Code != test.status {
				t.Fatalf("Expected status %d, got %d: %s", test.status, w.Code, w.Body.String())
			}
			if sender.Count() != test.sent {
				t.Errorf("Expected %d messages, got %d", test.sent, sender.Count())
			}
			if rows := len(grid.Sheet(sheets.LogSheet)); rows != test.loggedRows {
				t.Errorf("Expected %d log rows, got %d", test.loggedRows, rows)
			}
		})
	}
}

func TestSendRecordsStatus(t *testing.T) {
	server, _, _ := newTestServer(t)

	serve(server, httptest.NewRequest("POST", "/api/v1/digest/send", strings.NewReader(`{"audience":"owner"}`)))

	w := serve(server, httptest.NewRequest("GET", "/api/v1/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Status   string `json:"status"`
		LastSend struct {
			Audience string           `json:"audience"`
			Result   *reminder.Result `json:"result"`
		} `json:"last_send"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.LastSend.Audience != "owner" || body.LastSend.Result == nil || !body.LastSend.Result.Sent {
		t.Errorf("Unexpected last send: %+v", body.LastSend)
	}
}

func TestStatusReportsCachedPreview(t *testing.T) {
	server, _, _ := newTestServer(t)

	var body struct {
		PreviewCached bool `json:"preview_cached"`
	}
	w := serve(server, httptest.NewRequest("GET", "/api/v1/status", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.PreviewCached {
		t.Error("Expected no cached preview before the first render")
	}

	serve(server, httptest.NewRequest("GET", "/api/v1/digest/preview", nil))

	w = serve(server, httptest.NewRequest("GET", "/api/v1/status", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !body.PreviewCached {
		t.Error("Expected the preview to be cached after rendering it")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := serve(server, httptest.NewRequest("DELETE", "/api/v1/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected status 405, got %d", w.Code)
	}

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "error" {
		t.Errorf("Expected status 'error', got '%s'", resp.Status)
	}
}

func TestSubscribeHandler(t *testing.T) {
	server, grid, _ := newTestServer(t)

	form := url.Values{"emailAddress": {"me@example.com"}, "articleSrs": {"on"}}
	req := httptest.NewRequest("POST", "/api/v1/subscriptions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := serve(server, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result subscription.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Result != "success" || result.Row != 2 {
		t.Errorf("Unexpected result: %+v", result)
	}

	sheet := grid.Sheet(sheets.SubscriptionsSheet)
	if len(sheet) != 2 || sheet[1][1] != "me@example.com" || sheet[1][2] != "on" {
		t.Errorf("Unexpected subscriptions sheet: %q", sheet)
	}

	w = serve(server, httptest.NewRequest("GET", "/api/v1/subscriptions?emailAddress=you%40example.com", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for GET, got %d", w.Code)
	}
	if len(grid.Sheet(sheets.SubscriptionsSheet)) != 3 {
		t.Error("Expected GET to append a subscription too")
	}
}

func TestSubscribeHandlerNoHeaders(t *testing.T) {
	server, grid, _ := newTestServer(t)
	grid.SetSheet(sheets.SubscriptionsSheet, nil)

	w := serve(server, httptest.NewRequest("GET", "/api/v1/subscriptions?emailAddress=x%40example.com", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}

	var result subscription.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Result != "error" || result.Error == "" {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestCacheHandlers(t *testing.T) {
	server, _, _ := newTestServer(t)

	serve(server, httptest.NewRequest("GET", "/api/v1/digest/preview", nil))

	w := serve(server, httptest.NewRequest("GET", "/api/v1/cache/stats", nil))
	var stats cache.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.TotalEntries != 1 {
		t.Errorf("Expected 1 cached preview, got %d", stats.TotalEntries)
	}

	w = serve(server, httptest.NewRequest("DELETE", "/api/v1/cache", nil))
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("Expected success, got %+v", resp)
	}

	w = serve(server, httptest.NewRequest("GET", "/api/v1/cache/stats", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.TotalEntries != 0 {
		t.Errorf("Expected empty cache after clear, got %d", stats.TotalEntries)
	}
}

func TestConfigHandlerHidesSecrets(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := serve(server, httptest.NewRequest("GET", "/api/v1/config", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	for _, hidden := range []string{"secret", "owner@example.com", "bot@example.com"} {
		if strings.Contains(w.Body.String(), hidden) {
			t.Errorf("Expected %s to be hidden: %s", hidden, w.Body.String())
		}
	}
	if !strings.Contains(w.Body.String(), "sheet-123") {
		t.Errorf("Expected spreadsheet ID in config: %s", w.Body.String())
	}
}
