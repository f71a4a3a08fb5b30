package export

import (
	"context"
	"fmt"
	"time"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/auth"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/models"
)

// recorder collects the order of calls across fakes.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// fakeJobAPI plays back a fixed sequence of statuses.
type fakeJobAPI struct {
	rec      *recorder
	created  *models.Export
	statuses []string
	records  int
	token    string
	tokens   []string // token in use at each retrieve
	err      error
	errAt    int // 1-based retrieve call that fails, 0 = never
	calls    int
}

func (f *fakeJobAPI) CreateExport(_ context.Context, spec models.ExportCreate) (*models.Export, error) {
	f.rec.add("create")
	job := f.created.Clone()
	job.ResourceType = spec.ResourceType
	return job, nil
}

func (f *fakeJobAPI) RetrieveExport(_ context.Context, id string) (*models.Export, error) {
	f.calls++
	f.rec.add("retrieve")
	f.tokens = append(f.tokens, f.token)
	if f.errAt == f.calls {
		return nil, f.err
	}
	status := f.statuses[min(f.calls, len(f.statuses))-1]
	job := &models.Export{ID: id, Type: "exports"}
	job.Status = status
	job.RecordsCount = f.records
	return job, nil
}

func (f *fakeJobAPI) SetAccessToken(token string) {
	f.rec.add("set_token")
	f.token = token
}

// fakeTokens hands out a new token on the calls listed in refreshAt.
type fakeTokens struct {
	rec       *recorder
	calls     int
	refreshAt map[int]bool
	err       error
}

func (f *fakeTokens) EnsureValid(_ context.Context, tok auth.Token) (auth.Token, error) {
	f.calls++
	f.rec.add("ensure")
	if f.err != nil {
		return tok, &auth.RefreshError{Err: f.err}
	}
	if f.refreshAt[f.calls] {
		f.rec.add("refresh")
		return auth.Token{Raw: fmt.Sprintf("token-%d", f.calls), Claims: &auth.Claims{}}, nil
	}
	return tok, nil
}

type fakeSleeper struct {
	rec   *recorder
	slept []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	s.rec.add("sleep")
	return ctx.Err()
}

// fakeListAPI serves a fixed collection in pages.
type fakeListAPI struct {
	total     int
	requested []models.ListParams
	failAt    int

	// noPageCount leaves page_count out of the meta
	noPageCount bool
}

func (f *fakeListAPI) ListExports(_ context.Context, params models.ListParams) (*models.ExportPage, error) {
	f.requested = append(f.requested, params)
	if f.failAt == params.PageNumber {
		return nil, fmt.Errorf("boom")
	}

	size := params.PageSize
	start := (params.PageNumber - 1) * size
	end := min(start+size, f.total)

	page := &models.ExportPage{
		CurrentPage: params.PageNumber,
		RecordCount: f.total,
	}
	if !f.noPageCount {
		page.PageCount = (f.total + size - 1) / size
	}
	for i := start; i < end; i++ {
		page.Items = append(page.Items, models.Export{ID: fmt.Sprintf("exp-%04d", i)})
	}
	return page, nil
}
