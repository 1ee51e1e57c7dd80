package notify

import (
	"sync/atomic"
	"time"
)

// Metrics tracks hub statistics using atomic operations for thread-safety
type Metrics struct {
	Published   atomic.Int64
	Dropped     atomic.Int64
	Subscribers atomic.Int32
	StartTime   time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// IncPublished increments the published events counter
func (m *Metrics) IncPublished() {
	m.Published.Add(1)
}

// IncDropped increments the dropped deliveries counter
func (m *Metrics) IncDropped() {
	m.Dropped.Add(1)
}

// SetSubscribers sets the current subscriber count
func (m *Metrics) SetSubscribers(count int32) {
	m.Subscribers.Store(count)
}

// GetPublished returns the total published events
func (m *Metrics) GetPublished() int64 {
	return m.Published.Load()
}

// GetDropped returns the total dropped deliveries
func (m *Metrics) GetDropped() int64 {
	return m.Dropped.Load()
}

// GetSubscribers returns the current subscriber count
func (m *Metrics) GetSubscribers() int32 {
	return m.Subscribers.Load()
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	Published   int64     `json:"published"`
	Dropped     int64     `json:"dropped"`
	Subscribers int32     `json:"subscribers"`
	StartTime   time.Time `json:"start_time"`
	Uptime      string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Published:   m.GetPublished(),
		Dropped:     m.GetDropped(),
		Subscribers: m.GetSubscribers(),
		StartTime:   m.StartTime,
		Uptime:      time.Since(m.StartTime).String(),
	}
}
