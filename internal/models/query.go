package models

import (
	"strconv"
	"strings"

	"github.com/rajasatyajit/DisasterFeed/pkg/utils"
)

// AllSources is the sources parameter value selecting every active source
const AllSources = "all"

// ParseSources turns a comma-separated sources parameter into de-duplicated,
// lower-cased ids. It returns nil (every active source) for an empty list or
// one naming "all".
func ParseSources(raw string) []string {
	ids := utils.Dedupe(utils.SplitTerms(raw))
	for _, id := range ids {
		if id == AllSources {
			return nil
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// UpdatesQuery selects and narrows official updates
type UpdatesQuery struct {
	Sources  []string // empty selects all active sources
	Category string
	Severity Severity
	Keywords string
	Limit    int
}

// SourcesParam echoes the sources selection as it appears on the wire
func (q UpdatesQuery) SourcesParam() string {
	return sourcesParam(q.Sources)
}

// Filters returns the optional filters that were supplied
func (q UpdatesQuery) Filters() map[string]string {
	f := map[string]string{}
	if q.Category != "" {
		f["category"] = q.Category
	}
	if q.Severity != "" {
		f["severity"] = string(q.Severity)
	}
	if q.Keywords != "" {
		f["keywords"] = q.Keywords
	}
	return f
}

// Params is the effective parameter set used to derive cache keys
func (q UpdatesQuery) Params() map[string]string {
	p := q.Filters()
	p["sources"] = q.SourcesParam()
	p["limit"] = strconv.Itoa(q.Limit)
	return p
}

// SearchQuery is a free-text search across official updates
type SearchQuery struct {
	Query   string
	Sources []string
	Limit   int
}

func (q SearchQuery) SourcesParam() string {
	return sourcesParam(q.Sources)
}

func (q SearchQuery) Filters() map[string]string {
	f := map[string]string{"q": q.Query}
	if len(q.Sources) > 0 {
		f["sources"] = q.SourcesParam()
	}
	return f
}

func (q SearchQuery) Params() map[string]string {
	return map[string]string{
		"q":       q.Query,
		"sources": q.SourcesParam(),
		"limit":   strconv.Itoa(q.Limit),
	}
}

// SocialQuery selects social crisis reports
type SocialQuery struct {
	Keywords     string
	DisasterType string
	Limit        int
}

func (q SocialQuery) Filters() map[string]string {
	f := map[string]string{}
	if q.Keywords != "" {
		f["keywords"] = q.Keywords
	}
	if q.DisasterType != "" {
		f["disaster_type"] = q.DisasterType
	}
	return f
}

func (q SocialQuery) Params() map[string]string {
	p := q.Filters()
	p["limit"] = strconv.Itoa(q.Limit)
	return p
}

func sourcesParam(sources []string) string {
	if len(sources) == 0 {
		return AllSources
	}
	return strings.Join(sources, ",")
}
