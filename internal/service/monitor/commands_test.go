package monitor

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/woai-art/shorts-news-sub001/internal/config"
	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

type stubItems struct {
	domain.ItemRepository
	byID   map[int64]*domain.Item
	counts map[domain.State]int
}

func (s *stubItems) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	if item, ok := s.byID[id]; ok {
		return item, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubItems) CountByState(context.Context) (map[domain.State]int, error) {
	return s.counts, nil
}

type stubSignals struct {
	domain.SignalRepository
	requests []domain.ResolveRequest
}

func (s *stubSignals) RequestResolve(_ context.Context, req domain.ResolveRequest) error {
	s.requests = append(s.requests, req)
	return nil
}

func (s *stubSignals) MarkMessageSeen(context.Context, string) (bool, error) { return true, nil }
func (s *stubSignals) NotifyItemReceived(context.Context, int64) error       { return nil }
func (s *stubSignals) WaitForItem(context.Context, time.Duration) error      { return nil }

func newTestService(items *stubItems, signals *stubSignals) *Service {
	return &Service{
		cfg:     &config.Config{Monitor: config.MonitorConfig{CommandPrefix: "!"}},
		logger:  slog.Default(),
		items:   items,
		signals: signals,
		ctx:     context.Background(),
	}
}

func TestResolveCommandQueuesRequest(t *testing.T) {
	items := &stubItems{byID: map[int64]*domain.Item{
		42: {ID: 42, URL: "https://news.test/a", State: domain.StateFailed},
	}}
	signals := &stubSignals{}
	s := newTestService(items, signals)

	reply := s.handleResolveCommand([]string{"42", "15"})
	if !strings.Contains(reply, "queued") {
		t.Errorf("reply = %q, want confirmation", reply)
	}
	if len(signals.requests) != 1 {
		t.Fatalf("requests = %v, want one", signals.requests)
	}
	req := signals.requests[0]
	if req.ItemID != 42 || req.OffsetSec != 15 || !req.ForceMedia {
		t.Errorf("request = %+v", req)
	}
}

func TestResolveCommandRejectsInFlightItem(t *testing.T) {
	items := &stubItems{byID: map[int64]*domain.Item{
		7: {ID: 7, State: domain.StateResolving},
	}}
	signals := &stubSignals{}
	s := newTestService(items, signals)

	reply := s.handleResolveCommand([]string{"7"})
	if len(signals.requests) != 0 {
		t.Errorf("in-flight item must not be requeued, got %v", signals.requests)
	}
	if !strings.Contains(reply, "right now") {
		t.Errorf("reply = %q", reply)
	}
}

func TestResolveCommandBadInput(t *testing.T) {
	s := newTestService(&stubItems{byID: map[int64]*domain.Item{}}, &stubSignals{})

	if reply := s.handleResolveCommand(nil); !strings.Contains(reply, "Usage") {
		t.Errorf("missing args reply = %q", reply)
	}
	if reply := s.handleResolveCommand([]string{"abc"}); !strings.Contains(reply, "Bad item id") {
		t.Errorf("bad id reply = %q", reply)
	}
	if reply := s.handleResolveCommand([]string{"1", "-5"}); !strings.Contains(reply, "Bad offset") {
		t.Errorf("bad offset reply = %q", reply)
	}
	if reply := s.handleResolveCommand([]string{"99"}); !strings.Contains(reply, "not found") {
		t.Errorf("unknown item reply = %q", reply)
	}
}

func TestStatusCommand(t *testing.T) {
	items := &stubItems{byID: map[int64]*domain.Item{
		3: {
			ID:             3,
			URL:            "https://news.test/b",
			State:          domain.StateFailed,
			Title:          "Headline",
			Source:         "NBC News",
			FailureReason:  "blocked by captcha",
			LocalImagePath: "/media/img.jpg",
		},
	}}
	s := newTestService(items, &stubSignals{})

	reply := s.handleStatusCommand([]string{"3"})
	for _, want := range []string{"failed", "Headline", "NBC News", "blocked by captcha", "Image: acquired"} {
		if !strings.Contains(reply, want) {
			t.Errorf("status reply missing %q:\n%s", want, reply)
		}
	}
}

func TestStatsCommand(t *testing.T) {
	items := &stubItems{counts: map[domain.State]int{
		domain.StateReceived: 4,
		domain.StateFailed:   1,
	}}
	s := newTestService(items, &stubSignals{})

	reply := s.handleStatsCommand()
	if !strings.Contains(reply, "received: 4") || !strings.Contains(reply, "failed: 1") {
		t.Errorf("stats reply = %q", reply)
	}
	if !strings.Contains(reply, "processed: 0") {
		t.Error("zero states should still be listed")
	}
}
