package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/homefeed/pkg/domain"
)

const maxConcurrentRenders = 8

// resolveTemplates renders templated fields of all items concurrently, the result keeps input order.
// In strict mode the first failure aborts, otherwise failed items are logged and dropped.
func (e *Engine) resolveTemplates(ctx context.Context, items []domain.FeedItem) ([]domain.FeedItem, error) {
	resolved := make([]domain.FeedItem, len(items))
	failed := make([]bool, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRenders)
	for i := range items {
		g.Go(func() error {
			item := items[i]
			if err := e.resolveItem(gctx, &item); err != nil {
				if e.feed.StrictTemplates {
					return fmt.Errorf("resolve templates of %s %s: %w", item.Type, item.EntityID, err)
				}
				lgr.Printf("[WARN] templates of %s %s failed, item dropped: %v", item.Type, item.EntityID, err)
				failed[i] = true
				return nil
			}
			resolved[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := make([]domain.FeedItem, 0, len(resolved))
	for i, item := range resolved {
		if !failed[i] {
			res = append(res, item)
		}
	}
	return res, nil
}

// resolveItem renders fields in order, attribute first as other fields may refer to it
func (e *Engine) resolveItem(ctx context.Context, item *domain.FeedItem) error {
	var err error
	if item.Attribute != "" {
		if item.Attribute, err = e.render(ctx, item.Attribute, map[string]string{"entity": item.EntityID}); err != nil {
			return fmt.Errorf("attribute: %w", err)
		}
	}

	vars := map[string]string{"entity": item.EntityID, "attribute": item.Attribute}
	if item.Type == domain.ItemMultiEntity && item.ItemData != nil {
		data, jerr := json.Marshal(item.ItemData)
		if jerr != nil {
			return fmt.Errorf("encode item data: %w", jerr)
		}
		vars["item"] = string(data)
	}

	fields := []struct {
		name string
		val  *string
	}{
		{"content", &item.ContentTemplate},
		{"detail", &item.DetailTemplate},
		{"icon", &item.Icon},
	}
	for _, f := range fields {
		if *f.val == "" {
			continue
		}
		if *f.val, err = e.render(ctx, *f.val, vars); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}

	item.Condition = true
	if item.HasCondition() {
		out, err := e.render(ctx, *item.ConditionTemplate, vars)
		if err != nil {
			return fmt.Errorf("condition: %w", err)
		}
		item.Condition = out == "True"
	}
	return nil
}

// render calls the renderer for text with template markup, plain text is returned as is
func (e *Engine) render(ctx context.Context, tmpl string, vars map[string]string) (string, error) {
	if !strings.Contains(tmpl, "{{") && !strings.Contains(tmpl, "{%") {
		return tmpl, nil
	}
	return e.renderer.Render(ctx, tmpl, vars)
}
