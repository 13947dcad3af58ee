package domain

import "strings"

// Category is one feature type looked up around a point.
type Category struct {
	Name  string // JSON key in the result set
	Limit int    // maximum number of names returned
}

// Categories is the fixed, ordered set of feature categories. The limits are
// a content policy and are part of the public response shape.
var Categories = []Category{
	{Name: "divisions", Limit: 4},
	{Name: "cities", Limit: 5},
	{Name: "lakes", Limit: 4},
	{Name: "islands", Limit: 4},
	{Name: "mountains", Limit: 3},
	{Name: "forests", Limit: 3},
	{Name: "parks", Limit: 4},
	{Name: "beaches", Limit: 3},
	{Name: "caves", Limit: 3},
	{Name: "glaciers", Limit: 3},
	{Name: "volcanoes", Limit: 3},
	{Name: "historicalSites", Limit: 6},
	{Name: "museums", Limit: 5},
	{Name: "universities", Limit: 4},
	{Name: "militaryBases", Limit: 3},
	{Name: "shipwrecks", Limit: 3},
	{Name: "bridges", Limit: 4},
	{Name: "dams", Limit: 3},
	{Name: "mines", Limit: 3},
	{Name: "tunnels", Limit: 3},
	{Name: "airports", Limit: 3},
	{Name: "waterfalls", Limit: 3},
	{Name: "buildings", Limit: 4},
	{Name: "cemeteries", Limit: 3},
}

// LookupCategory returns the category with the given name.
func LookupCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Metadata maps a category name to the names of nearby features, nearest
// first as reported by the engine.
type Metadata map[string][]string

// Compact returns a copy without blank names, unknown categories or empty
// categories. Each category is truncated to its limit. The result is never nil.
func (m Metadata) Compact() Metadata {
	out := make(Metadata, len(m))
	for name, values := range m {
		cat, ok := LookupCategory(name)
		if !ok {
			continue
		}
		var names []string
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				continue
			}
			names = append(names, v)
			if len(names) == cat.Limit {
				break
			}
		}
		if len(names) > 0 {
			out[name] = names
		}
	}
	return out
}

// EngineStatus is the result of the startup probe for the engine entry point.
// It is computed once and never changes for the lifetime of the process.
type EngineStatus struct {
	Available bool   `json:"available"`
	Path      string `json:"-"`
}

// LookupEvent describes one metadata lookup for operators.
type LookupEvent struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Outcome    string  `json:"outcome"`
	Categories int     `json:"categories"`
	DurationMS int64   `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
	RequestID  string  `json:"request_id,omitempty"`
	At         string  `json:"at"`
}
