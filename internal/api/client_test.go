package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/config"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.NewConfig()
	cfg.BaseURL = server.URL
	cfg.AccessToken = "token-1"

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

// TestNewClientRejectsEmptyBaseURL verifies that NewClient fails early when neither an
// organization slug nor a base URL is configured.
func TestNewClientRejectsEmptyBaseURL(t *testing.T) {
	_, err := NewClient(config.NewConfig())
	if err == nil {
		t.Fatal("NewClient() should return error without an organization")
	}
	if !strings.Contains(err.Error(), "API base URL is empty") {
		t.Errorf("NewClient() error = %q, want error containing 'API base URL is empty'", err.Error())
	}
}

func TestNewClientBuildsOrganizationURL(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Organization = "acme"

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.BaseURL() != "https://acme.commercelayer.io" {
		t.Errorf("BaseURL() = %s", client.BaseURL())
	}
}

func TestCreateExport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/exports" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/vnd.api+json" {
			t.Errorf("Content-Type = %q", got)
		}

		var doc struct {
			Data struct {
				Type       string         `json:"type"`
				Attributes map[string]any `json:"attributes"`
			} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if doc.Data.Type != "exports" || doc.Data.Attributes["resource_type"] != "orders" {
			t.Errorf("unexpected body: %+v", doc)
		}
		filters, _ := doc.Data.Attributes["filters"].(map[string]any)
		if filters["status_eq"] != "placed" {
			t.Errorf("filters not sent: %v", doc.Data.Attributes["filters"])
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":"exp1","type":"exports","attributes":{"resource_type":"orders","status":"pending","records_count":42}}}`)
	})

	job, err := client.CreateExport(context.Background(), models.ExportCreate{
		ResourceType: "orders",
		Format:       "json",
		Filters:      map[string]string{"status_eq": "placed"},
	})
	if err != nil {
		t.Fatalf("CreateExport() error = %v", err)
	}
	if job.ID != "exp1" || job.Status != "pending" || job.RecordsCount != 42 {
		t.Errorf("unexpected job %+v", job)
	}
}

func TestRetrieveExportUsesLatestToken(t *testing.T) {
	var auth []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		if r.URL.Path != "/api/exports/exp1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"data":{"id":"exp1","type":"exports","attributes":{"status":"completed","records_count":3,"attachment_url":"https://files/x.json.gz"}}}`)
	})

	if _, err := client.RetrieveExport(context.Background(), "exp1"); err != nil {
		t.Fatal(err)
	}
	client.SetAccessToken("token-2")
	job, err := client.RetrieveExport(context.Background(), "exp1")
	if err != nil {
		t.Fatal(err)
	}

	if len(auth) != 2 || auth[0] != "Bearer token-1" || auth[1] != "Bearer token-2" {
		t.Errorf("unexpected Authorization headers %v", auth)
	}
	if !job.IsTerminal() || job.AttachmentURL != "https://files/x.json.gz" {
		t.Errorf("unexpected job %+v", job)
	}
}

func TestRetrieveExportRequiresID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := client.RetrieveExport(context.Background(), ""); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestListExportsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page[number]") != "2" || q.Get("page[size]") != "25" || q.Get("sort") != "-started_at" {
			t.Errorf("unexpected paging query %s", r.URL.RawQuery)
		}
		if q.Get("filter[q][resource_type_eq]") != "skus" {
			t.Errorf("filter missing from %s", r.URL.RawQuery)
		}
		if strings.Contains(r.URL.RawQuery, "%5B") {
			t.Errorf("brackets should not be escaped: %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"data":[{"id":"a","type":"exports","attributes":{"status":"completed"}}],"meta":{"record_count":26,"page_count":2}}`)
	})

	page, err := client.ListExports(context.Background(), models.ListParams{
		PageNumber: 2,
		PageSize:   25,
		Sort:       "-started_at",
		Filters:    map[string]string{"resource_type_eq": "skus"},
	})
	if err != nil {
		t.Fatalf("ListExports() error = %v", err)
	}
	if len(page.Items) != 1 || page.CurrentPage != 2 || page.RecordCount != 26 || page.PageCount != 2 {
		t.Errorf("unexpected page %+v", page)
	}
	if page.HasMore(26) {
		t.Error("page 2 of 2 should not have more")
	}
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		contains string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"errors":[{"title":"Invalid token","detail":"The access token you provided is invalid.","code":"INVALID_TOKEN","status":"401"}]}`, ErrUnauthorized, "Invalid token - The access token you provided is invalid."},
		{"not found", http.StatusNotFound, `{"errors":[{"title":"Not found","detail":"Not found","code":"RECORD_NOT_FOUND","status":"404"}]}`, ErrNotFound, "404 Not Found: Not found"},
		{"throttled", http.StatusTooManyRequests, `{"errors":[{"title":"Too many requests"}]}`, ErrThrottled, "Too many requests"},
		{"plain body", http.StatusBadGateway, `upstream unavailable`, nil, "upstream unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.RetrieveExport(context.Background(), "exp1")

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v) = false", tt.sentinel)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Error() = %q, want it to contain %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestServerErrorIsNotRetriedByDefault(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := client.RetrieveExport(context.Background(), "exp1"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}
