package statistics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hearth-collective/hearth/internal/pkg/cache"
	"github.com/hearth-collective/hearth/internal/pkg/config"
	"github.com/hearth-collective/hearth/internal/pkg/counts"
)

const (
	CacheKeyUsers      = "statistics:users:total"
	CacheKeyMembers    = "statistics:members:total"
	CacheKeyCollective = "statistics:collective:%s" // Format with collective name
	CacheExpiration    = 5 * time.Minute
)

// CollectiveStats is the user/member pair for one collective.
type CollectiveStats struct {
	Name        string
	DisplayName string
	Users       int64
	Members     int64
}

// HomeStats contains the aggregate numbers for the landing page.
type HomeStats struct {
	TotalUsers   int64
	TotalMembers int64
	Collectives  []CollectiveStats
}

// GetHomeStats reads the landing-page numbers from the counter store with a
// short redis cache in front. The counters are an eventually-consistent fold
// over the record log, so a few minutes of cache staleness is acceptable.
func GetHomeStats(ctx context.Context, agg counts.Aggregator, collectives config.Collectives) (*HomeStats, error) {
	stats := &HomeStats{}

	var err error
	stats.TotalUsers, err = cachedCounter(ctx, agg, "user", CacheKeyUsers)
	if err != nil {
		return nil, err
	}
	stats.TotalMembers, err = cachedCounter(ctx, agg, "member", CacheKeyMembers)
	if err != nil {
		return nil, err
	}

	for _, name := range collectives.Names() {
		users, err := cachedCounter(ctx, agg, "user."+name, fmt.Sprintf(CacheKeyCollective, "user."+name))
		if err != nil {
			return nil, err
		}
		members, err := cachedCounter(ctx, agg, "member."+name, fmt.Sprintf(CacheKeyCollective, "member."+name))
		if err != nil {
			return nil, err
		}
		stats.Collectives = append(stats.Collectives, CollectiveStats{
			Name:        name,
			DisplayName: collectives[name].DisplayName,
			Users:       users,
			Members:     members,
		})
	}

	return stats, nil
}

func cachedCounter(ctx context.Context, agg counts.Aggregator, counter, cacheKey string) (int64, error) {
	if raw, err := cache.Get(cacheKey); err == nil {
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			return v, nil
		}
	}

	v, err := agg.Get(ctx, counter)
	if err != nil {
		return 0, err
	}
	if err := cache.Set(cacheKey, strconv.FormatInt(v, 10), CacheExpiration); err != nil {
		// Cache miss path still works without the cache; don't fail the page.
		return v, nil
	}
	return v, nil
}

// InvalidateCollective drops the cached numbers for one collective after a
// membership change so the next page view reads fresh counters.
func InvalidateCollective(name string) {
	_ = cache.Delete(fmt.Sprintf(CacheKeyCollective, "user."+name))
	_ = cache.Delete(fmt.Sprintf(CacheKeyCollective, "member."+name))
	_ = cache.Delete(CacheKeyUsers)
	_ = cache.Delete(CacheKeyMembers)
}
