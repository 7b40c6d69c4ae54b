// Package catalog declares the closed set of operations the gateway
// exposes, provides a fast-lookup registry over them, and self-validates
// the declarations at startup.
package catalog

import (
	"net/url"
	"regexp"

	"github.com/darkfeedlabs/leakwatch/model"
)

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
)

// staticShape returns a binder for operations with a fixed path and no
// parameters.
func staticShape(path string) model.Binder {
	return func(model.Arguments) model.RequestShape {
		return model.RequestShape{Path: path}
	}
}

// queryFrom copies the named arguments that are present into a query map.
func queryFrom(args model.Arguments, names ...string) map[string]string {
	q := make(map[string]string, len(names))
	for _, n := range names {
		if args.Has(n) {
			q[n] = args.Get(n)
		}
	}
	return q
}

// Contracts returns the full operation catalog in declaration order. The
// order is stable and determines the order of capability listings.
func Contracts() []model.OperationContract {
	return []model.OperationContract{
		{
			Name:        "list_sectors",
			Description: "Get list of all sectors/industries tracked",
			Bind:        staticShape("/listsectors"),
		},
		{
			Name:        "list_groups",
			Description: "Get list of all ransomware groups",
			Bind:        staticShape("/listgroups"),
		},
		{
			Name:        "get_group_info",
			Description: "Get detailed information about a specific ransomware group",
			Params: []model.ParameterSpec{
				{Name: "group_name", Description: "Name of the ransomware group (e.g., 'lockbit3', 'alphv')", Required: true},
			},
			Bind: func(args model.Arguments) model.RequestShape {
				return model.RequestShape{Path: "/groups/" + url.PathEscape(args.Get("group_name"))}
			},
		},
		{
			Name:        "list_victims",
			Description: "List ransomware victims with filters (at least one filter required)",
			Params: []model.ParameterSpec{
				{Name: "group", Description: "Filter by ransomware group name (e.g., lockbit)"},
				{Name: "sector", Description: "Filter by victim sector (e.g., healthcare)"},
				{Name: "country", Description: "Filter by 2-letter country code (e.g., US, FR)"},
				{Name: "year", Description: "Filter by 4-digit year (e.g., '2024')", Pattern: yearPattern},
				{Name: "month", Description: "Filter by 2-digit month (e.g., '01' for January)", Pattern: monthPattern},
			},
			RequireAny: []string{"group", "sector", "country", "year", "month"},
			Bind: func(args model.Arguments) model.RequestShape {
				return model.RequestShape{
					Path:  "/victims",
					Query: queryFrom(args, "group", "sector", "country", "year", "month"),
				}
			},
		},
		{
			Name:        "get_victim_info",
			Description: "Get detailed information about a specific victim",
			Params: []model.ParameterSpec{
				{Name: "victim_id", Description: "ID of the victim", Required: true},
			},
			Bind: func(args model.Arguments) model.RequestShape {
				return model.RequestShape{Path: "/victim/" + url.PathEscape(args.Get("victim_id"))}
			},
		},
		{
			Name:        "search_victims",
			Description: "Search for victims by name, domain, or other criteria with optional filters",
			Params: []model.ParameterSpec{
				{Name: "query", Description: "Search query for victim name, domain, etc.", Required: true},
				{Name: "group_name", Description: "Optional: Filter by ransomware group name"},
				{Name: "sector_name", Description: "Optional: Filter by sector/industry"},
				{Name: "country", Description: "Optional: Filter by country"},
			},
			Bind: func(args model.Arguments) model.RequestShape {
				q := map[string]string{"q": args.Get("query")}
				if args.Has("group_name") {
					q["group"] = args.Get("group_name")
				}
				if args.Has("sector_name") {
					q["sector"] = args.Get("sector_name")
				}
				if args.Has("country") {
					q["country"] = args.Get("country")
				}
				return model.RequestShape{Path: "/victims/search", Query: q}
			},
		},
		{
			Name:        "get_recent_victims",
			Description: "Get recently reported victims",
			Params: []model.ParameterSpec{
				{
					Name:        "order",
					Description: "Sort order: 'discovered' or 'published' (default: 'discovered')",
					Enum:        []string{"discovered", "published"},
					Default:     "discovered",
				},
			},
			Bind: func(args model.Arguments) model.RequestShape {
				return model.RequestShape{
					Path:  "/victims/recent",
					Query: queryFrom(args, "order"),
				}
			},
		},
		{
			Name:        "get_stats",
			Description: "Get general ransomware statistics",
			Bind:        staticShape("/stats"),
		},
		{
			Name:        "get_ransomnotes",
			Description: "Get list of all available ransom notes",
			Bind:        staticShape("/ransomnotes"),
		},
		{
			Name:        "get_ransomnotes_by_group",
			Description: "Get ransom notes from a specific ransomware group",
			Params: []model.ParameterSpec{
				{Name: "group_name", Description: "Name of the ransomware group", Required: true},
			},
			Bind: func(args model.Arguments) model.RequestShape {
				return model.RequestShape{Path: "/ransomnotes/" + url.PathEscape(args.Get("group_name"))}
			},
		},
		{
			Name:        "get_ransomnote_content",
			Description: "Get the content of a specific ransom note",
			Params: []model.ParameterSpec{
				{Name: "group_name", Description: "Name of the ransomware group", Required: true},
				{Name: "note_name", Description: "Name/identifier of the ransom note", Required: true},
			},
			Bind: func(args model.Arguments) model.RequestShape {
				return model.RequestShape{
					Path: "/ransomnotes/" + url.PathEscape(args.Get("group_name")) +
						"/" + url.PathEscape(args.Get("note_name")),
				}
			},
		},
	}
}
