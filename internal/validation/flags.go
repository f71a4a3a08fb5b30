// Package validation checks command input before any network call is made.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/auth"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/util/sanitize"
)

// Error is a rejected command input.
type Error struct {
	Flag   string // flag name without dashes, empty for cross-flag rules
	Reason string
}

func (e *Error) Error() string {
	if e.Flag == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid --%s: %s", e.Flag, e.Reason)
}

func invalid(flag, format string, args ...any) *Error {
	return &Error{Flag: flag, Reason: fmt.Sprintf(format, args...)}
}

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// CreateOptions is everything 'create' accepts.
type CreateOptions struct {
	Type     string
	Includes []string // raw --include values, comma separated
	Where    []string // raw --where values, key=value comma separated
	DryData  bool
	Format   string
	CSV      bool
	Save     string
	SavePath string
	Pretty   bool
	Blind    bool
	Notify   bool
}

// OutputPath returns the destination file, whichever of --save and --save-path was given.
func (o CreateOptions) OutputPath() string {
	if o.Save != "" {
		return o.Save
	}
	return o.SavePath
}

// EffectiveFormat resolves --csv against --format.
func (o CreateOptions) EffectiveFormat() string {
	if o.CSV {
		return FormatCSV
	}
	if o.Format == "" {
		return FormatJSON
	}
	return o.Format
}

// ValidateCreate checks create options against the configured resource types.
func ValidateCreate(o CreateOptions, types []string) error {
	if o.Type == "" {
		return invalid("type", "resource type is required")
	}
	if !slices.Contains(types, o.Type) {
		return invalid("type", "unsupported resource type: %s", o.Type)
	}
	if o.Format != "" && o.Format != FormatJSON && o.Format != FormatCSV {
		return invalid("format", "expected csv or json, got %s", o.Format)
	}
	if o.CSV && o.Format == FormatJSON {
		return &Error{Reason: "--csv cannot be combined with --format json"}
	}
	if o.Pretty && o.EffectiveFormat() == FormatCSV {
		return &Error{Reason: "--pretty can only be used with JSON format"}
	}
	if o.Save != "" && o.SavePath != "" {
		return &Error{Reason: "--save and --save-path are mutually exclusive"}
	}
	if o.OutputPath() == "" {
		return &Error{Reason: "undefined output file path: use --save or --save-path"}
	}
	if _, err := ParseWhere(o.Where); err != nil {
		return err
	}
	return nil
}

// ListOptions is everything 'list' accepts.
type ListOptions struct {
	All    bool
	Type   string
	Status string
	Limit  int
	// LimitSet distinguishes an explicit --limit 0 from no --limit
	LimitSet bool
}

// ValidateList checks list options against the configured types and statuses.
func ValidateList(o ListOptions, types, statuses []string) error {
	if o.Type != "" && !slices.Contains(types, o.Type) {
		return invalid("type", "unsupported resource type: %s", o.Type)
	}
	if o.Status != "" && !slices.Contains(statuses, o.Status) {
		return invalid("status", "unsupported export status: %s", o.Status)
	}
	if o.All && o.LimitSet {
		return &Error{Reason: "--all and --limit are mutually exclusive"}
	}
	if o.LimitSet && o.Limit < 1 {
		return invalid("limit", "must be a positive number, got %d", o.Limit)
	}
	return nil
}

// Filters returns the Ransack filters for a list query.
func (o ListOptions) Filters() map[string]string {
	filters := map[string]string{}
	if o.Type != "" {
		filters["resource_type_eq"] = o.Type
	}
	if o.Status != "" {
		filters["status_eq"] = o.Status
	}
	return filters
}

// ransackPredicates are the filter suffixes the API understands, longest first.
var ransackPredicates = func() []string {
	p := []string{
		"_eq", "_not_eq", "_eq_any", "_not_eq_all",
		"_matches", "_does_not_match", "_matches_any", "_matches_all", "_does_not_match_any",
		"_lt", "_lteq", "_gt", "_gteq", "_lt_any", "_gt_any",
		"_in", "_not_in", "_in_or_null",
		"_cont", "_cont_any", "_cont_all", "_not_cont", "_i_cont",
		"_start", "_not_start", "_start_any", "_end", "_not_end", "_end_any",
		"_present", "_blank", "_null", "_not_null", "_true", "_false",
		"_jcont",
	}
	slices.SortFunc(p, func(a, b string) int { return len(b) - len(a) })
	return p
}()

func hasPredicate(key string) bool {
	for _, p := range ransackPredicates {
		if strings.HasSuffix(key, p) && len(key) > len(p) {
			return true
		}
	}
	return false
}

// ParseWhere parses --where values into a filter map.
//
// Each value is a comma separated list of key=value pairs. A segment without '=' continues
// the previous value, so status_in=placed,approved keeps both statuses.
func ParseWhere(values []string) (map[string]string, error) {
	filters := map[string]string{}

	for _, raw := range values {
		var last string
		for _, seg := range strings.Split(raw, ",") {
			seg = sanitize.Field(seg)
			if seg == "" {
				continue
			}
			key, value, ok := strings.Cut(seg, "=")
			if !ok {
				if last == "" {
					return nil, invalid("where", "expected key=value, got %q", seg)
				}
				filters[last] += "," + seg
				continue
			}
			key = sanitize.Identifier(key)
			if !hasPredicate(key) {
				return nil, invalid("where", "filter %q does not end in a known predicate such as _eq or _in", key)
			}
			filters[key] = strings.TrimSpace(value)
			last = key
		}
	}
	return filters, nil
}

// ParseIncludes splits --include values on commas, trimming blanks and duplicates.
func ParseIncludes(values []string) []string {
	var includes []string
	for _, raw := range values {
		for _, inc := range strings.Split(raw, ",") {
			inc = sanitize.Identifier(inc)
			if inc != "" && !slices.Contains(includes, inc) {
				includes = append(includes, inc)
			}
		}
	}
	return includes
}

// CheckApplication rejects tokens issued to application kinds that cannot use exports.
func CheckApplication(claims *auth.Claims, kinds ...string) error {
	kind := claims.Application.Kind
	if slices.Contains(kinds, kind) {
		return nil
	}
	return &Error{Reason: fmt.Sprintf("invalid application kind %q: this command requires one of %s", kind, strings.Join(kinds, ", "))}
}
