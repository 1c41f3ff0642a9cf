package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPageRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)

	page := pageRequest(req)

	if page.Number != 0 || page.Size != 0 {
		t.Errorf("expected zero values before normalization, got number=%d size=%d", page.Number, page.Size)
	}
	if page.SortBy != "" || page.SortDir != "" {
		t.Errorf("expected empty sort, got %q %q", page.SortBy, page.SortDir)
	}
}

func TestPageRequest_ParsesQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/goals?page=2&size=50&sortBy=title&sortDir=desc", nil)

	page := pageRequest(req)

	if page.Number != 2 {
		t.Errorf("expected page 2, got %d", page.Number)
	}
	if page.Size != 50 {
		t.Errorf("expected size 50, got %d", page.Size)
	}
	if page.SortBy != "title" || page.SortDir != "desc" {
		t.Errorf("expected sort title/desc, got %q %q", page.SortBy, page.SortDir)
	}
}

func TestPageRequest_IgnoresMalformedNumbers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/goals?page=abc&size=-", nil)

	page := pageRequest(req)

	if page.Number != 0 || page.Size != 0 {
		t.Errorf("expected malformed numbers ignored, got number=%d size=%d", page.Number, page.Size)
	}
}
