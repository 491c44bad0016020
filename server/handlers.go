package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/umputun/homefeed/pkg/domain"
	"github.com/umputun/homefeed/pkg/feed"
)

// feedResponse is the built feed
type feedResponse struct {
	Title   string            `json:"title"`
	CacheID string            `json:"cache_id"`
	BuiltAt *time.Time        `json:"built_at"`
	Count   int               `json:"count"`
	Items   []domain.FeedItem `json:"items"`
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	items, builtAt := s.scheduler.Feed()
	title, cacheID := s.scheduler.FeedInfo()
	status := map[string]any{
		"status":   "ok",
		"version":  s.version,
		"time":     time.Now().UTC(),
		"title":    title,
		"cache_id": cacheID,
		"items":    len(items),
		"ready":    !builtAt.IsZero(),
	}
	if !builtAt.IsZero() {
		status["built_at"] = builtAt.UTC()
	}
	renderJSON(w, r, http.StatusOK, status)
}

// feedHandler returns the built feed, optionally filtered by ?type= and limited by ?limit=
func (s *Server) feedHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.filteredItems(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	_, builtAt := s.scheduler.Feed()
	title, cacheID := s.scheduler.FeedInfo()

	resp := feedResponse{Title: title, CacheID: cacheID, Count: len(items), Items: items}
	if !builtAt.IsZero() {
		ts := builtAt.UTC()
		resp.BuiltAt = &ts
	}
	if resp.Items == nil {
		resp.Items = []domain.FeedItem{}
	}
	renderJSON(w, r, http.StatusOK, resp)
}

// rssHandler serves the built feed as RSS, supports the same filters as feedHandler
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.filteredItems(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, builtAt := s.scheduler.Feed()
	title, _ := s.scheduler.FeedInfo()

	generator := feed.NewGenerator(s.config.GetURLs())
	rss, err := generator.GenerateRSS(items, title, builtAt)
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}

// refreshHandler rebuilds the feed now
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	published, err := s.scheduler.Rebuild(r.Context())
	if err != nil {
		log.Printf("[WARN] feed rebuild failed: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"published": published})
}

// refreshNotificationsHandler refreshes notifications and rebuilds the feed.
// Responds with 409 if a refresh is already in progress.
func (s *Server) refreshNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	refreshed, err := s.scheduler.RefreshNotifications(r.Context())
	if err != nil {
		log.Printf("[WARN] notifications refresh failed: %v", err)
		renderError(w, r, err, http.StatusBadGateway)
		return
	}
	if !refreshed {
		renderError(w, r, fmt.Errorf("notifications refresh in progress"), http.StatusConflict)
		return
	}
	published, err := s.scheduler.Rebuild(r.Context())
	if err != nil {
		log.Printf("[WARN] feed rebuild failed: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"published": published})
}

// clearCacheHandler removes all cached sources of the feed
// dismissNotificationHandler dismisses notification in Home Assistant, the feed is rebuilt without it
func (s *Server) dismissNotificationHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.scheduler.DismissNotification(r.Context(), id); err != nil {
		log.Printf("[WARN] failed to dismiss notification %s: %v", id, err)
		renderError(w, r, err, http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearCacheHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.ClearCache(r.Context()); err != nil {
		log.Printf("[ERROR] failed to clear cache: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// filteredItems applies type and limit query parameters to the built feed
func (s *Server) filteredItems(r *http.Request) ([]domain.FeedItem, error) {
	items, _ := s.scheduler.Feed()

	if typ := r.URL.Query().Get("type"); typ != "" {
		res := make([]domain.FeedItem, 0, len(items))
		for _, item := range items {
			if string(item.Type) == typ {
				res = append(res, item)
			}
		}
		items = res
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("invalid limit %q", limitStr)
		}
		if limit < len(items) {
			items = items[:limit]
		}
	}
	return items, nil
}
