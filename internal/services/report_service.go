package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const reportCacheTTL = 5 * time.Minute

// ReportService computes spending aggregations. Results are cached per user
// and date range; any transaction write for a user drops that user's cached
// reports.
type ReportService struct {
	storage *storage.SQLiteRepository
	cache   *cache.LRUCache[core.SpendingReport]
	now     func() time.Time
}

func NewReportService(storage *storage.SQLiteRepository) *ReportService {
	return &ReportService{
		storage: storage,
		cache:   cache.NewLRUCache[core.SpendingReport](256, reportCacheTTL),
		now:     time.Now,
	}
}

// SpendingByCategory aggregates expense totals per category over [start, end],
// largest first. A missing start defaults to the 1st of the current month, a
// missing end to today.
func (s *ReportService) SpendingByCategory(ctx context.Context, who core.Identity, start, end *core.Date) (core.SpendingReport, error) {
	now := s.now().UTC()

	from := core.NewDate(now.Year(), int(now.Month()), 1)
	if start != nil {
		from = *start
	}
	to := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if end != nil {
		to = *end
	}

	key := reportCacheKey(who.ID, from, to)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	byCategory, err := s.storage.SpendingByCategory(ctx, who.ID, from, to)
	if err != nil {
		return core.SpendingReport{}, fmt.Errorf("spending by category: %w", err)
	}

	report := core.SpendingReport{Start: from, End: to, ByCategory: byCategory}
	s.cache.Set(key, report)
	return report, nil
}

// CacheCleaner exposes the report cache for periodic expiry sweeps.
func (s *ReportService) CacheCleaner() cache.Cleaner {
	return s.cache
}

// InvalidateUser drops every cached report for one user.
func (s *ReportService) InvalidateUser(userID string) {
	s.cache.DeletePrefix(userID + "|")
}

func reportCacheKey(userID string, start, end core.Date) string {
	return userID + "|" + start.String() + "|" + end.String()
}
