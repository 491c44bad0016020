package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/umputun/homefeed/pkg/domain"
)

// Generator renders the home feed as RSS
type Generator struct {
	baseURL string // url of this service
	haURL   string // url of home assistant, items link there
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL, haURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		haURL:   strings.TrimRight(haURL, "/"),
	}
}

// GenerateRSS creates an RSS 2.0 feed from merged feed items
func (g *Generator) GenerateRSS(items []domain.FeedItem, title string, builtAt time.Time) (string, error) {
	if title == "" {
		title = "Home Feed"
	}
	if builtAt.IsZero() {
		builtAt = time.Now()
	}

	rssItems := make([]*RSSItem, 0, len(items))
	for i := range items {
		rssItems = append(rssItems, g.convertToRSSItem(&items[i]))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.haURL + "/",
			Description:   "Notifications, calendar events and entity changes of " + title,
			AtomLink:      &AtomLink{Href: g.baseURL + "/rss", Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: builtAt.Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	// add XML declaration
	return xml.Header + string(output), nil
}

// convertToRSSItem switches over all item types
func (g *Generator) convertToRSSItem(item *domain.FeedItem) *RSSItem {
	res := &RSSItem{
		PubDate:    g.pubDate(item),
		Categories: []string{string(item.Type)},
	}

	switch item.Type {
	case domain.ItemNotification:
		res.Title = item.DisplayName
		res.Link = g.haURL + "/"
		if n := item.Notification; n != nil {
			res.Description = n.Message
			res.GUID = "notification:" + n.NotificationID + ":" + n.CreatedAt
		}
	case domain.ItemCalendarEvent:
		res.Title = item.DisplayName
		res.Description = item.Detail
		res.Link = g.haURL + "/calendar"
		if ev := item.Event; ev != nil {
			res.GUID = "calendar:" + ev.Calendar + ":" + ev.StartTime + ":" + ev.Summary
		}
	case domain.ItemEntity, domain.ItemEntityHistory:
		res.Title = entityTitle(item)
		res.Description = item.DetailTemplate
		if item.Detail != "" {
			res.Description = item.Detail
		}
		res.Link = g.entityLink(item.EntityID)
		res.GUID = string(item.Type) + ":" + item.EntityID + ":" + item.Timestamp
	case domain.ItemMultiEntity:
		res.Title = entityTitle(item)
		res.Description = item.DetailTemplate
		res.Link = g.entityLink(item.EntityID)
		res.GUID = string(item.Type) + ":" + item.EntityID + ":" + item.Timestamp + ":" + item.ContentTemplate
	case domain.ItemUnavailable:
		res.Title = item.DisplayName
		res.Link = g.entityLink(item.EntityID)
		res.GUID = string(item.Type) + ":" + item.EntityID
	default:
		res.Title = item.DisplayName
		res.GUID = string(item.Type) + ":" + item.EntityID + ":" + item.Timestamp
	}
	return res
}

// entityTitle is resolved content, or "name: state"
func entityTitle(item *domain.FeedItem) string {
	if item.ContentTemplate != "" {
		return item.ContentTemplate
	}
	if item.State == "" {
		return item.DisplayName
	}
	return item.DisplayName + ": " + item.State
}

func (g *Generator) entityLink(entityID string) string {
	if entityID == "" {
		return g.haURL + "/"
	}
	return g.haURL + "/history?entity_id=" + url.QueryEscape(entityID)
}

func (g *Generator) pubDate(item *domain.FeedItem) string {
	ts, err := time.Parse(time.RFC3339Nano, item.Timestamp)
	if err != nil {
		return ""
	}
	return ts.Format(time.RFC1123Z)
}
