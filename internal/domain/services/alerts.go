package services

import (
	"sync"

	"signalguard/internal/domain/models"
)

// AlertFeed is a bounded in-memory alert buffer. When full, the oldest
// entry is dropped. It is explicitly not durable.
type AlertFeed struct {
	mu       sync.Mutex
	alerts   []models.Alert
	capacity int
}

// NewAlertFeed creates a feed holding at most capacity alerts
func NewAlertFeed(capacity int) *AlertFeed {
	if capacity <= 0 {
		capacity = 200
	}
	return &AlertFeed{capacity: capacity}
}

// Push appends an alert, evicting the oldest when at capacity
func (f *AlertFeed) Push(alert models.Alert) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.alerts) >= f.capacity {
		f.alerts = f.alerts[1:]
	}
	f.alerts = append(f.alerts, alert)
}

// List returns up to limit alerts, newest first. limit <= 0 returns all.
func (f *AlertFeed) List(limit int) []models.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.alerts)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]models.Alert, limit)
	for i := 0; i < limit; i++ {
		out[i] = f.alerts[n-1-i]
	}
	return out
}

// Len returns the current number of buffered alerts
func (f *AlertFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}
