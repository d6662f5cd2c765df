package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

type stubItemRepo struct {
	domain.ItemRepository
	byID    map[int64]*domain.Item
	byState map[domain.State][]*domain.Item
}

func (s *stubItemRepo) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	if item, ok := s.byID[id]; ok {
		return item, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubItemRepo) ListByState(_ context.Context, state domain.State, limit int) ([]*domain.Item, error) {
	items := s.byState[state]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func newItemsMux(repo *stubItemRepo) *http.ServeMux {
	h := NewItemsHandler(slog.Default(), repo)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/items", h.GetItems)
	mux.HandleFunc("GET /api/v1/items/{id}", h.GetItemByID)
	return mux
}

func TestGetItemByIDMaterializesMediaLists(t *testing.T) {
	repo := &stubItemRepo{byID: map[int64]*domain.Item{
		5: {
			ID:             5,
			URL:            "https://news.test/a",
			Title:          "Headline",
			Source:         "NBC News",
			ContentType:    domain.ContentTypeArticle,
			Images:         []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg?x=1,2"},
			Videos:         []string{"https://cdn.test/a.mp4"},
			LocalVideoPath: "/media/a.mp4",
			State:          domain.StateProcessed,
		},
	}}

	rec := httptest.NewRecorder()
	newItemsMux(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var dto ItemDto
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(dto.Images) != 2 || dto.Images[1] != "https://cdn.test/b.jpg?x=1,2" {
		t.Errorf("images = %v, want materialized array with comma URL intact", dto.Images)
	}
	if len(dto.Videos) != 1 {
		t.Errorf("videos = %v", dto.Videos)
	}
	if !dto.Processed {
		t.Error("processed projection must follow state")
	}
	if dto.State != "processed" {
		t.Errorf("state = %q", dto.State)
	}
}

func TestGetItemByIDNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newItemsMux(&stubItemRepo{byID: map[int64]*domain.Item{}}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/404", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetItemsFiltersByState(t *testing.T) {
	repo := &stubItemRepo{byState: map[domain.State][]*domain.Item{
		domain.StateFailed: {
			{ID: 1, URL: "https://news.test/x", State: domain.StateFailed, FailureReason: "unresolved"},
		},
	}}

	rec := httptest.NewRecorder()
	newItemsMux(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items?state=failed", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Items []*ItemDto `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].FailureReason != "unresolved" {
		t.Errorf("items = %+v", body.Items)
	}
}

func TestGetItemsRejectsUnknownState(t *testing.T) {
	rec := httptest.NewRecorder()
	newItemsMux(&stubItemRepo{}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items?state=bogus", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetItemsEmptyListIsArray(t *testing.T) {
	rec := httptest.NewRecorder()
	newItemsMux(&stubItemRepo{}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if body == "" || body == "null\n" {
		t.Errorf("body = %q, want JSON object with items array", body)
	}
	var parsed struct {
		Items []*ItemDto `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if parsed.Items == nil {
		t.Error("items must decode to an empty array, not null")
	}
}
