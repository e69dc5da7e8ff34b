// Package collection keeps the locally browsed recipe list.
//
// A Collection accumulates pages of one query (search term plus mode). Load
// replaces the contents with page 1 of a new query; LoadMore fetches the next
// page of the current query and appends only recipes not seen yet. Results
// that arrive for a query that has since been replaced are dropped.
package collection

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dmitrijs2005/recipebox/internal/client/models"
)

type Mode string

const (
	ModeAll  Mode = "all"
	ModeMine Mode = "mine"
)

// Query identifies one result set.
type Query struct {
	Search string
	Mode   Mode
}

// Fetcher loads one page of q.
type Fetcher func(ctx context.Context, q Query, page, limit int) (*models.RecipePage, error)

var (
	ErrNoMore = errors.New("no more recipes")
	ErrStale  = errors.New("query changed while loading")
)

type Collection struct {
	mu    sync.Mutex
	fetch Fetcher
	limit int

	query Query
	gen   uint64
	items []models.Recipe
	index map[string]int
	page  int
	total int
}

func New(fetch Fetcher, limit int) *Collection {
	return &Collection{fetch: fetch, limit: limit, index: map[string]int{}}
}

// Load resets the collection to page 1 of q. On error the previous
// contents and query are kept.
func (c *Collection) Load(ctx context.Context, q Query) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	p, err := c.fetch(ctx, q, 1, c.limit)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrStale
	}
	c.query = q
	c.items = c.items[:0]
	clear(c.index)
	c.appendNew(p.Recipes)
	c.page = 1
	c.total = p.Total
	return nil
}

// LoadMore appends the next page of the current query. It returns the
// number of recipes actually added.
func (c *Collection) LoadMore(ctx context.Context) (int, error) {
	c.mu.Lock()
	if len(c.items) >= c.total {
		c.mu.Unlock()
		return 0, ErrNoMore
	}
	gen, q, next := c.gen, c.query, c.page+1
	c.mu.Unlock()

	p, err := c.fetch(ctx, q, next, c.limit)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return 0, ErrStale
	}
	if next <= c.page {
		// Another LoadMore already merged this page.
		return 0, nil
	}
	added := c.appendNew(p.Recipes)
	c.page = next
	c.total = p.Total
	return added, nil
}

// appendNew must be called with mu held.
func (c *Collection) appendNew(recipes []models.Recipe) int {
	added := 0
	for _, r := range recipes {
		if _, ok := c.index[r.ID]; ok {
			continue
		}
		c.index[r.ID] = len(c.items)
		c.items = append(c.items, r)
		added++
	}
	return added
}

// Upsert replaces the loaded recipe with the same id. Recipes outside the
// loaded result set are ignored so the collection only ever holds pages of
// the active query.
func (c *Collection) Upsert(r models.Recipe) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[r.ID]
	if ok {
		c.items[i] = r
	}
	return ok
}

// Remove drops a deleted recipe and decrements the total. Unknown ids are
// ignored.
func (c *Collection) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return
	}
	c.items = slices.Delete(c.items, i, i+1)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].ID] = j
	}
	if c.total > 0 {
		c.total--
	}
}

// HasMore reports whether the server holds recipes not loaded yet.
func (c *Collection) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) < c.total
}

// Items returns a copy of the loaded recipes in display order.
func (c *Collection) Items() []models.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Collection) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Counts returns the loaded item count, the server total and the last page.
func (c *Collection) Counts() (loaded, total, page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items), c.total, c.page
}
