package service

import (
	"testing"

	"github.com/cuceimatch/matchcore/internal/model"
)

func TestHubPublishFillsIDAndTime(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	hub.Publish(model.Event{Type: model.EventCandidatesExhausted})

	evt := <-ch
	if evt.ID == "" || evt.At.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", evt)
	}
}

func TestHubDropsForFullSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	hub.Publish(model.Event{Type: model.EventMatchSurfaced})
	hub.Publish(model.Event{Type: model.EventSessionInvalidated})

	got := collect(ch)
	if len(got) != 1 || got[0].Type != model.EventMatchSurfaced {
		t.Fatalf("expected only the first event, got %+v", got)
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(1)
	cancel()
	cancel()

	hub.Publish(model.Event{Type: model.EventMatchSurfaced})
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
}

func TestNilHubPublishIsNoop(t *testing.T) {
	var hub *Hub
	hub.Publish(model.Event{Type: model.EventMatchSurfaced})
}
