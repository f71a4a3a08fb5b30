package export

import (
	"context"
	"fmt"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/constants"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/models"
)

// ListAPI fetches one page of export jobs.
type ListAPI interface {
	ListExports(ctx context.Context, params models.ListParams) (*models.ExportPage, error)
}

// Query describes one bounded list fetch.
type Query struct {
	Filters  map[string]string
	PageSize int  // hint, clamped to the server maximum
	Limit    int  // 0 means no explicit limit
	All      bool // fetch every record up to the hard ceiling
}

// Collection is the result of Collect.
type Collection struct {
	Items   []models.Export
	Fetched int // len(Items)
	Total   int // record count reported by the server
	Cap     int // effective cap computed from the query and Total
}

// Truncated reports whether the server holds more records than were fetched.
func (c *Collection) Truncated() bool {
	return c.Fetched < c.Total
}

// Pager walks list pages forward under a record cap.
type Pager struct {
	API            ListAPI
	Sort           string
	MaxPageSize    int
	DefaultRecords int
	Ceiling        int

	// OnPage is called after every page with the items fetched so far and the cap.
	OnPage func(fetched, limit, total int)
}

// NewPager returns a pager sorted newest first with the platform limits.
func NewPager(api ListAPI) *Pager {
	return &Pager{
		API:            api,
		Sort:           "-started_at",
		MaxPageSize:    constants.PageMaxSize,
		DefaultRecords: constants.DefaultListRecords,
		Ceiling:        constants.MaxListRecords,
	}
}

// EffectiveCap is the number of records a query may materialize given the server total.
func (p *Pager) EffectiveCap(q Query, total int) int {
	var n int
	switch {
	case q.All:
		n = total
	case q.Limit > 0:
		n = q.Limit
	default:
		n = p.DefaultRecords
	}
	return min(n, p.Ceiling)
}

// Collect fetches pages 1, 2, ... until the cap is reached or the server has no more.
// Items keep the server's order and the result is trimmed to the cap.
func (p *Pager) Collect(ctx context.Context, q Query) (*Collection, error) {
	size := q.PageSize
	if size <= 0 || size > p.MaxPageSize {
		size = p.MaxPageSize
	}
	if !q.All {
		// cap is already known, no point asking for more than it
		size = max(1, min(size, p.EffectiveCap(q, 0)))
	}

	var (
		items []models.Export
		total int
		limit int
	)

	for pageNumber := 1; ; pageNumber++ {
		page, err := p.API.ListExports(ctx, models.ListParams{
			PageNumber: pageNumber,
			PageSize:   size,
			Sort:       p.Sort,
			Filters:    q.Filters,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list exports (page %d): %w", pageNumber, err)
		}

		if pageNumber == 1 {
			total = page.RecordCount
			limit = p.EffectiveCap(q, total)
		}
		items = append(items, page.Items...)

		if p.OnPage != nil {
			p.OnPage(min(len(items), limit), limit, total)
		}

		if len(items) >= limit || len(page.Items) == 0 || !page.HasMore(len(items)) {
			break
		}
	}

	if len(items) > limit {
		items = items[:limit]
	}

	return &Collection{
		Items:   items,
		Fetched: len(items),
		Total:   total,
		Cap:     limit,
	}, nil
}
