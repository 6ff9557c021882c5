package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalguard/internal/domain/models"
)

func TestAlertFeedEvictsOldestAtCapacity(t *testing.T) {
	feed := NewAlertFeed(3)

	for i := 1; i <= 5; i++ {
		feed.Push(models.Alert{ID: fmt.Sprintf("alert-%d", i)})
	}

	assert.Equal(t, 3, feed.Len())

	alerts := feed.List(0)
	require.Len(t, alerts, 3)
	assert.Equal(t, "alert-5", alerts[0].ID)
	assert.Equal(t, "alert-4", alerts[1].ID)
	assert.Equal(t, "alert-3", alerts[2].ID)
}

func TestAlertFeedListNewestFirst(t *testing.T) {
	feed := NewAlertFeed(10)
	feed.Push(models.Alert{ID: "first"})
	feed.Push(models.Alert{ID: "second"})

	alerts := feed.List(0)
	require.Len(t, alerts, 2)
	assert.Equal(t, "second", alerts[0].ID)
	assert.Equal(t, "first", alerts[1].ID)
}

func TestAlertFeedListLimit(t *testing.T) {
	feed := NewAlertFeed(10)
	for i := 0; i < 5; i++ {
		feed.Push(models.Alert{ID: fmt.Sprintf("alert-%d", i)})
	}

	assert.Len(t, feed.List(2), 2)
	assert.Len(t, feed.List(100), 5)
	assert.Empty(t, NewAlertFeed(10).List(5))
}

func TestAlertFeedDefaultCapacity(t *testing.T) {
	feed := NewAlertFeed(0)
	for i := 0; i < 250; i++ {
		feed.Push(models.Alert{})
	}
	assert.Equal(t, 200, feed.Len())
}

func TestAlertFeedConcurrentPush(t *testing.T) {
	feed := NewAlertFeed(50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				feed.Push(models.Alert{})
				feed.List(10)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, feed.Len())
}
