package feed

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/homefeed/pkg/domain"
)

func TestGenerator_GenerateRSS(t *testing.T) {
	generator := NewGenerator("https://feed.example.com", "http://ha.local:8123")
	builtAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	items := []domain.FeedItem{
		{Type: domain.ItemNotification, DisplayName: "Backup Done", Timestamp: "2024-03-01T10:00:00Z",
			Notification: &domain.Notification{NotificationID: "backup", Message: "Backup finished", CreatedAt: "2024-03-01T10:00:00Z"}},
		{Type: domain.ItemEntity, EntityID: "sensor.temp", DisplayName: "Temperature", State: "21 °C", Timestamp: "2024-03-01T11:00:00Z"},
		{Type: domain.ItemMultiEntity, EntityID: "sensor.parcels", DisplayName: "Parcels", ContentTemplate: "Parcel from shop",
			DetailTemplate: "arrives today", Timestamp: "2024-03-01T09:00:00Z"},
		{Type: domain.ItemCalendarEvent, EntityID: "calendar.home", DisplayName: "Dinner", Detail: "Friday, 1 March",
			Timestamp: "2024-03-01T19:00:00Z", Event: &domain.CalendarEvent{Calendar: "calendar.home", Summary: "Dinner", StartTime: "2024-03-01T19:00:00Z"}},
		{Type: domain.ItemUnavailable, EntityID: "sensor.gone", DisplayName: "Entity not available: sensor.gone", Timestamp: "2024-03-01T12:00:00Z"},
	}

	t.Run("generate RSS", func(t *testing.T) {
		rss, err := generator.GenerateRSS(items, "Home", builtAt)
		require.NoError(t, err)

		// check basic structure
		assert.Contains(t, rss, `<?xml version="1.0" encoding="UTF-8"?>`)
		assert.Contains(t, rss, `<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
		assert.Contains(t, rss, `<title>Home</title>`)
		assert.Contains(t, rss, `<link>http://ha.local:8123/</link>`)

		// check atom self link (namespace is on the link element)
		assert.Contains(t, rss, `<link xmlns="http://www.w3.org/2005/Atom" href="https://feed.example.com/rss" rel="self" type="application/rss+xml"></link>`)
		assert.Contains(t, rss, `<category>notification</category>`)
		assert.Contains(t, rss, `<guid>notification:backup:2024-03-01T10:00:00Z</guid>`)
	})

	t.Run("parsed back", func(t *testing.T) {
		rss, err := generator.GenerateRSS(items, "Home", builtAt)
		require.NoError(t, err)

		parsed, err := gofeed.NewParser().ParseString(rss)
		require.NoError(t, err)
		assert.Equal(t, "Home", parsed.Title)
		require.Len(t, parsed.Items, 5)

		assert.Equal(t, "Backup Done", parsed.Items[0].Title)
		assert.Equal(t, "Backup finished", parsed.Items[0].Description)
		require.NotNil(t, parsed.Items[0].PublishedParsed)
		assert.True(t, parsed.Items[0].PublishedParsed.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

		assert.Equal(t, "Temperature: 21 °C", parsed.Items[1].Title)
		assert.Equal(t, "http://ha.local:8123/history?entity_id=sensor.temp", parsed.Items[1].Link)

		assert.Equal(t, "Parcel from shop", parsed.Items[2].Title)
		assert.Equal(t, "arrives today", parsed.Items[2].Description)

		assert.Equal(t, "Dinner", parsed.Items[3].Title)
		assert.Equal(t, "Friday, 1 March", parsed.Items[3].Description)
		assert.Equal(t, "calendar:calendar.home:2024-03-01T19:00:00Z:Dinner", parsed.Items[3].GUID)

		assert.Equal(t, "Entity not available: sensor.gone", parsed.Items[4].Title)
		assert.Equal(t, []string{"unavailable"}, parsed.Items[4].Categories)
	})

	t.Run("empty items", func(t *testing.T) {
		rss, err := generator.GenerateRSS([]domain.FeedItem{}, "", builtAt)
		require.NoError(t, err)

		assert.Contains(t, rss, `<channel>`)
		assert.Contains(t, rss, `<title>Home Feed</title>`)
		assert.NotContains(t, rss, `<item>`)
	})

	t.Run("generator with trailing slash in base URL", func(t *testing.T) {
		gen := NewGenerator("https://feed.example.com/", "http://ha.local:8123/")
		rss, err := gen.GenerateRSS(items[:1], "", builtAt)
		require.NoError(t, err)

		// should not have double slashes
		assert.Contains(t, rss, `href="https://feed.example.com/rss"`)
		assert.NotContains(t, rss, `https://feed.example.com//`)
		assert.NotContains(t, rss, `8123//`)
	})
}

func TestGenerator_convertToRSSItem(t *testing.T) {
	generator := NewGenerator("https://feed.example.com", "http://ha.local:8123")

	t.Run("history with content", func(t *testing.T) {
		item := domain.FeedItem{Type: domain.ItemEntityHistory, EntityID: "binary_sensor.door", DisplayName: "Door", State: "Open",
			ContentTemplate: "Door opened", DetailTemplate: "by Alice", Timestamp: "2024-03-01T11:00:00Z"}
		rssItem := generator.convertToRSSItem(&item)
		assert.Equal(t, "Door opened", rssItem.Title)
		assert.Equal(t, "by Alice", rssItem.Description)
		assert.Equal(t, "entity_history:binary_sensor.door:2024-03-01T11:00:00Z", rssItem.GUID)
		assert.Equal(t, "Fri, 01 Mar 2024 11:00:00 +0000", rssItem.PubDate)
		assert.Equal(t, []string{"entity_history"}, rssItem.Categories)
	})

	t.Run("bad timestamp has no pub date", func(t *testing.T) {
		item := domain.FeedItem{Type: domain.ItemEntity, EntityID: "sensor.a", DisplayName: "A"}
		rssItem := generator.convertToRSSItem(&item)
		assert.Empty(t, rssItem.PubDate)
		assert.Equal(t, "A", rssItem.Title)
	})
}
