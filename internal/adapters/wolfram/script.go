package wolfram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/formhunt/internal/core/domain"
)

// entityTypes maps category names to Wolfram entity types.
var entityTypes = map[string]string{
	"divisions":       "AdministrativeDivision",
	"cities":          "City",
	"lakes":           "Lake",
	"islands":         "Island",
	"mountains":       "Mountain",
	"forests":         "Forest",
	"parks":           "Park",
	"beaches":         "Beach",
	"caves":           "Cave",
	"glaciers":        "Glacier",
	"volcanoes":       "Volcano",
	"historicalSites": "HistoricalSite",
	"museums":         "Museum",
	"universities":    "University",
	"militaryBases":   "MilitaryBase",
	"shipwrecks":      "Shipwreck",
	"bridges":         "Bridge",
	"dams":            "Dam",
	"mines":           "Mine",
	"tunnels":         "Tunnel",
	"airports":        "Airport",
	"waterfalls":      "Waterfall",
	"buildings":       "Building",
	"cemeteries":      "Cemetery",
}

// divisionSample is how many administrative divisions are fetched before
// the county-level filter is applied.
const divisionSample = 6

const prelude = `pos = GeoPosition[{%s, %s}];
safe[expr_] := Quiet[Check[expr, {}]];
names[list_] := safe[If[ListQ[list], Select[Map[CommonName, list], StringQ[#] && StringLength[#] > 0 &], {}]];
nearest[type_, n_] := safe[names[GeoNearest[type, pos, n]]];
counties = safe[Select[GeoNearest["AdministrativeDivision", pos, %d], StringCount[CommonName[#], ","] >= 2 &]];
`

// FormatCoordinate renders v in the shortest decimal form that round-trips,
// independent of locale and without exponent notation.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildScript returns the Wolfram Language program that looks up every
// category around p and prints the result as a JSON object. Each category is
// evaluated independently: a failing lookup yields {} for that key only.
func BuildScript(p domain.GeoPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, prelude, FormatCoordinate(p.Lat), FormatCoordinate(p.Lon), divisionSample)

	entries := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		var expr string
		if c.Name == "divisions" {
			expr = fmt.Sprintf("safe[Take[names[counties], UpTo[%d]]]", c.Limit)
		} else {
			expr = fmt.Sprintf("nearest[%q, %d]", entityTypes[c.Name], c.Limit)
		}
		entries = append(entries, fmt.Sprintf("  %q -> %s", c.Name, expr))
	}

	b.WriteString("ExportString[<|\n")
	b.WriteString(strings.Join(entries, ",\n"))
	b.WriteString("\n|>, \"JSON\", \"Compact\" -> True]\n")
	return b.String()
}
