// Package models defines the export job resources exchanged with the Commerce Layer API.
package models

import (
	"time"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/constants"
)

// ExportResourceType is the JSON:API type of export jobs.
const ExportResourceType = "exports"

// ExportAttributes is the attribute object of an export resource.
type ExportAttributes struct {
	ResourceType  string         `json:"resource_type"`
	Format        string         `json:"format"`
	DryData       bool           `json:"dry_data"`
	Includes      []string       `json:"includes,omitempty"`
	Filters       map[string]any `json:"filters,omitempty"`
	Status        string         `json:"status"`
	RecordsCount  int            `json:"records_count"`
	StartedAt     *time.Time     `json:"started_at,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	InterruptedAt *time.Time     `json:"interrupted_at,omitempty"`
	AttachmentURL string         `json:"attachment_url,omitempty"`
	ErrorsCount   int            `json:"errors_count,omitempty"`
	ErrorsLog     map[string]any `json:"errors_log,omitempty"`
	Reference     string         `json:"reference,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Export is an export job as returned by /api/exports.
// Attributes are promoted so callers can write job.Status.
type Export struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	ExportAttributes `json:"attributes"`
}

// IsTerminal reports whether the job has stopped changing.
func (e *Export) IsTerminal() bool {
	return IsTerminalStatus(e.Status)
}

// Clone returns a copy that shares no slices or maps with e.
func (e *Export) Clone() *Export {
	c := *e
	c.Includes = append([]string(nil), e.Includes...)
	c.Filters = cloneMap(e.Filters)
	c.ErrorsLog = cloneMap(e.ErrorsLog)
	c.Metadata = cloneMap(e.Metadata)
	return &c
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// IsTerminalStatus reports whether status is completed or interrupted.
func IsTerminalStatus(status string) bool {
	return status == constants.StatusCompleted || status == constants.StatusInterrupted
}

// StatusRank orders statuses along the job lifecycle. A job never moves to a lower rank.
// Unknown statuses rank with pending.
func StatusRank(status string) int {
	switch status {
	case constants.StatusCompleted, constants.StatusInterrupted:
		return 2
	case constants.StatusInProgress:
		return 1
	default:
		return 0
	}
}

// ExportCreate is the request body attributes for POST /api/exports.
type ExportCreate struct {
	ResourceType string            `json:"resource_type"`
	Format       string            `json:"format,omitempty"`
	DryData      bool              `json:"dry_data,omitempty"`
	Includes     []string          `json:"includes,omitempty"`
	Filters      map[string]string `json:"filters,omitempty"`
}

// ListParams selects one page of GET /api/exports.
type ListParams struct {
	PageNumber int
	PageSize   int
	Sort       string            // e.g. "-started_at"
	Filters    map[string]string // Ransack keys, e.g. resource_type_eq
}

// PageMeta is the pagination metadata of a list response.
type PageMeta struct {
	RecordCount int `json:"record_count"`
	PageCount   int `json:"page_count"`
}

// ExportPage is one page of export jobs.
type ExportPage struct {
	Items       []Export
	CurrentPage int
	RecordCount int
	PageCount   int
}

// HasMore reports whether the server holds records beyond the fetched ones.
// The record count decides; page_count is only consulted when no count was sent.
func (p *ExportPage) HasMore(fetched int) bool {
	if p.RecordCount > 0 {
		return fetched < p.RecordCount
	}
	return p.CurrentPage < p.PageCount
}
