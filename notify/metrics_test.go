package notify

import (
	"sync"
	"testing"
	"time"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m == nil {
		t.Fatal("Expected NewMetrics to return non-nil")
	}

	// Verify all counters start at zero
	if m.GetPublished() != 0 {
		t.Errorf("Expected Published to be 0, got %d", m.GetPublished())
	}
	if m.GetDropped() != 0 {
		t.Errorf("Expected Dropped to be 0, got %d", m.GetDropped())
	}
	if m.GetSubscribers() != 0 {
		t.Errorf("Expected Subscribers to be 0, got %d", m.GetSubscribers())
	}

	// Verify StartTime is set to a recent time (within last second)
	if time.Since(m.StartTime) > time.Second {
		t.Errorf("Expected StartTime to be recent, got %v", m.StartTime)
	}
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncPublished()
	for i := 0; i < 10; i++ {
		m.IncPublished()
	}
	if m.GetPublished() != 11 {
		t.Errorf("Expected Published to be 11, got %d", m.GetPublished())
	}

	m.IncDropped()
	if m.GetDropped() != 1 {
		t.Errorf("Expected Dropped to be 1, got %d", m.GetDropped())
	}

	m.SetSubscribers(3)
	if m.GetSubscribers() != 3 {
		t.Errorf("Expected Subscribers to be 3, got %d", m.GetSubscribers())
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				m.IncPublished()
			}
		}()
	}
	wg.Wait()

	if m.GetPublished() != 1000 {
		t.Errorf("Expected Published to be 1000, got %d", m.GetPublished())
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.IncPublished()
	m.IncDropped()
	m.SetSubscribers(2)

	snap := m.GetSnapshot()
	if snap.Published != 1 {
		t.Errorf("Expected snapshot Published to be 1, got %d", snap.Published)
	}
	if snap.Dropped != 1 {
		t.Errorf("Expected snapshot Dropped to be 1, got %d", snap.Dropped)
	}
	if snap.Subscribers != 2 {
		t.Errorf("Expected snapshot Subscribers to be 2, got %d", snap.Subscribers)
	}
	if snap.Uptime == "" {
		t.Error("Expected snapshot Uptime to be set")
	}
}
