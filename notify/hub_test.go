package notify

import (
	"sync"
	"testing"

	"github.com/lista-app/lista"
)

func TestHubPublishDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub(0)
	defer hub.Close()

	ch1, cancel1 := hub.Subscribe()
	defer cancel1()
	ch2, cancel2 := hub.Subscribe()
	defer cancel2()

	hub.Publish(lista.Event{Type: lista.EventCategoryChanged, CategoryID: "cat-1"})

	for i, ch := range []<-chan lista.Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != lista.EventCategoryChanged || ev.CategoryID != "cat-1" {
				t.Errorf("subscriber %d got unexpected event %+v", i, ev)
			}
			if ev.SequenceID != 1 {
				t.Errorf("subscriber %d: SequenceID = %d, want 1", i, ev.SequenceID)
			}
			if ev.Timestamp.IsZero() {
				t.Errorf("subscriber %d: event should carry a timestamp", i)
			}
		default:
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestHubSequenceNumbersIncrease(t *testing.T) {
	hub := NewHub(0)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < 3; i++ {
		hub.Publish(lista.Event{Type: lista.EventItemChanged, ItemID: "it-1"})
	}

	var last int64
	for i := 0; i < 3; i++ {
		ev := <-ch
		if ev.SequenceID <= last {
			t.Fatalf("SequenceID %d is not greater than previous %d", ev.SequenceID, last)
		}
		last = ev.SequenceID
	}
}

func TestHubDropsWhenSubscriberLags(t *testing.T) {
	hub := NewHub(1)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	// The queue holds one event; the second has nowhere to go.
	hub.Publish(lista.Event{Type: lista.EventItemChanged, ItemID: "it-1"})
	hub.Publish(lista.Event{Type: lista.EventItemChanged, ItemID: "it-2"})

	if got := hub.Metrics().GetDropped(); got != 1 {
		t.Errorf("Expected Dropped to be 1, got %d", got)
	}
	if got := hub.Metrics().GetPublished(); got != 2 {
		t.Errorf("Expected Published to be 2, got %d", got)
	}

	ev := <-ch
	if ev.ItemID != "it-1" {
		t.Errorf("Expected the first event to survive, got %+v", ev)
	}
	if len(ch) != 0 {
		t.Error("Expected the lagging subscriber's queue to be empty")
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(0)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	cancel()

	hub.Publish(lista.Event{Type: lista.EventItemChanged})

	if _, ok := <-ch; ok {
		t.Error("Expected a cancelled subscriber's channel to be closed")
	}
	if got := hub.Metrics().GetSubscribers(); got != 0 {
		t.Errorf("Expected Subscribers to be 0, got %d", got)
	}

	// Cancelling twice is safe.
	cancel()
}

func TestHubClose(t *testing.T) {
	hub := NewHub(0)

	ch, _ := hub.Subscribe()

	if err := hub.Close(); err != nil {
		t.Fatalf("Failed to close hub: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("Expected subscriber channels to close with the hub")
	}

	// Publishing after close is a no-op.
	hub.Publish(lista.Event{Type: lista.EventItemChanged})
	if got := hub.Metrics().GetPublished(); got != 0 {
		t.Errorf("Expected Published to stay 0 after close, got %d", got)
	}

	if err := hub.Close(); err != nil {
		t.Errorf("Expected closing twice to be safe, got %v", err)
	}
}

func TestHubSubscribeAfterClose(t *testing.T) {
	hub := NewHub(0)
	hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	if _, ok := <-ch; ok {
		t.Error("Expected a closed channel when subscribing to a closed hub")
	}
}

func TestHubConcurrentPublish(t *testing.T) {
	const goroutines = 10
	const eventsEach = 100

	hub := NewHub(goroutines * eventsEach)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < eventsEach; i++ {
				hub.Publish(lista.Event{Type: lista.EventItemChanged})
			}
		}()
	}
	wg.Wait()

	if got := hub.Metrics().GetPublished(); got != goroutines*eventsEach {
		t.Errorf("Expected Published to be %d, got %d", goroutines*eventsEach, got)
	}
	if got := hub.Metrics().GetDropped(); got != 0 {
		t.Errorf("Expected no drops with a large buffer, got %d", got)
	}

	seen := make(map[int64]bool)
	for i := 0; i < goroutines*eventsEach; i++ {
		ev := <-ch
		if seen[ev.SequenceID] {
			t.Fatalf("SequenceID %d assigned twice", ev.SequenceID)
		}
		seen[ev.SequenceID] = true
	}
}
