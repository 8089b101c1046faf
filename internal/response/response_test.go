package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()

	var result Response
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteJSON(w, http.StatusOK, Response{Status: "success", Message: "test message"})
	if err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}

	result := decode(t, w)
	if result.Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", result.Status)
	}
	if result.Message != "test message" {
		t.Errorf("Expected message 'test message', got '%s'", result.Message)
	}
}

func TestWriteValue(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteValue(w, http.StatusCreated, map[string]interface{}{"result": "success", "row": 3})
	if err != nil {
		t.Fatalf("WriteValue failed: %v", err)
	}

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if body := w.Body.String(); body != "{\"result\":\"success\",\"row\":3}\n" {
		t.Errorf("Unexpected body: %s", body)
	}
}

func TestWriteHTML(t *testing.T) {
	w := httptest.NewRecorder()

	if err := WriteHTML(w, http.StatusOK, "<html></html>"); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}

	if w.Header().Get("Content-Type") != "text/html; charset=utf-8" {
		t.Errorf("Unexpected Content-Type %s", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != "<html></html>" {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteSuccess(w, "operation successful", map[string]string{"key": "value"})
	if err != nil {
		t.Fatalf("WriteSuccess failed: %v", err)
	}

	result := decode(t, w)
	if result.Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", result.Status)
	}

	dataMap, ok := result.Data.(map[string]interface{})
	if !ok {
		t.Error("Expected data to be a map")
	} else if dataMap["key"] != "value" {
		t.Errorf("Expected data.key 'value', got '%v'", dataMap["key"])
	}
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter, message string) error
		status int
	}{
		{"bad request", WriteBadRequest, http.StatusBadRequest},
		{"internal error", WriteInternalError, http.StatusInternalServerError},
		{"method not allowed", WriteMethodNotAllowed, http.StatusMethodNotAllowed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			if err := test.write(w, "went wrong"); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if w.Code != test.status {
				t.Errorf("Expected status %d, got %d", test.status, w.Code)
			}

			result := decode(t, w)
			if result.Status != "error" || result.Error != "went wrong" {
				t.Errorf("Unexpected response: %+v", result)
			}
		})
	}
}
