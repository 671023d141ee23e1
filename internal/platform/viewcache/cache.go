// Package viewcache caches computed filter results (task lists and counts)
// for a short time so bursts of view requests do not recompute identical
// results. Entries expire on a TTL and are evicted wholesale for a user
// whenever that user's preferences change or their day rolls over.
package viewcache

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/daylist/daylist-api/internal/domain"
)

// Cache holds recently computed view results. All methods are safe for
// concurrent use. Keys start with the owner's user ID so a single user's
// entries can be dropped without touching anyone else's.
//
// The visibility window participates in every key: the same user asking for
// the same filter with a different completed-task window is a different
// result and must never collide.
type Cache struct {
	counts *expirable.LRU[string, domain.FilterCounts]
	lists  *expirable.LRU[string, *domain.TaskPage]
	logger *slog.Logger
}

// New creates a Cache holding up to size entries per result kind, each
// expiring ttl after insertion. A ttl of zero disables time-based expiry
// and leaves only size-based eviction. If logger is nil, a default logger
// will be used.
func New(size int, ttl time.Duration, logger *slog.Logger) *Cache {
	if size <= 0 {
		panic("cache size must be positive")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		counts: expirable.NewLRU[string, domain.FilterCounts](size, nil, ttl),
		lists:  expirable.NewLRU[string, *domain.TaskPage](size, nil, ttl),
		logger: logger.With(slog.String("component", "view_cache")),
	}
}

func countsKey(tenantID, userID uuid.UUID, visibilityDays int) string {
	return fmt.Sprintf("%s|%s|counts|%d", userID, tenantID, visibilityDays)
}

func listKey(tenantID, userID uuid.UUID, filter domain.FilterName, visibilityDays int, page domain.Page) string {
	return fmt.Sprintf("%s|%s|list|%s|%d|%d|%d",
		userID, tenantID, filter, visibilityDays, page.Limit, page.Offset)
}

func userPrefix(userID uuid.UUID) string {
	return userID.String() + "|"
}

// GetCounts returns the cached counts for (tenantID, userID) at the given
// visibility window, if present and unexpired.
func (c *Cache) GetCounts(tenantID, userID uuid.UUID, visibilityDays int) (domain.FilterCounts, bool) {
	return c.counts.Get(countsKey(tenantID, userID, visibilityDays))
}

// SetCounts caches the counts for (tenantID, userID) at the given
// visibility window.
func (c *Cache) SetCounts(tenantID, userID uuid.UUID, visibilityDays int, counts domain.FilterCounts) {
	c.counts.Add(countsKey(tenantID, userID, visibilityDays), counts)
}

// GetList returns the cached page for the given view, if present and
// unexpired. Callers must not mutate the returned page.
func (c *Cache) GetList(
	tenantID, userID uuid.UUID,
	filter domain.FilterName,
	visibilityDays int,
	page domain.Page,
) (*domain.TaskPage, bool) {
	return c.lists.Get(listKey(tenantID, userID, filter, visibilityDays, page))
}

// SetList caches one page of a filtered view.
func (c *Cache) SetList(
	tenantID, userID uuid.UUID,
	filter domain.FilterName,
	visibilityDays int,
	page domain.Page,
	result *domain.TaskPage,
) {
	c.lists.Add(listKey(tenantID, userID, filter, visibilityDays, page), result)
}

// InvalidateUser removes every cached result belonging to the user, across
// all tenants and filters, and returns the number of entries dropped.
func (c *Cache) InvalidateUser(userID uuid.UUID) int {
	prefix := userPrefix(userID)
	removed := 0

	for _, key := range c.counts.Keys() {
		if strings.HasPrefix(key, prefix) && c.counts.Remove(key) {
			removed++
		}
	}
	for _, key := range c.lists.Keys() {
		if strings.HasPrefix(key, prefix) && c.lists.Remove(key) {
			removed++
		}
	}

	if removed > 0 {
		c.logger.Debug("invalidated cached view results",
			slog.String("user_id", userID.String()),
			slog.Int("entries", removed))
	}

	return removed
}

// Purge drops every cached result for every user.
func (c *Cache) Purge() {
	c.counts.Purge()
	c.lists.Purge()
	c.logger.Debug("purged view cache")
}

// Len returns the total number of live entries across both result kinds.
func (c *Cache) Len() int {
	return c.counts.Len() + c.lists.Len()
}
