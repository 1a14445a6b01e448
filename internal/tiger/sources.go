// Package tiger locates, downloads, and unpacks Census TIGER/Line
// shapefile archives.
package tiger

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Year is the TIGER/Line vintage the importers target.
const Year = 2024

// Target counties for the full import.
var (
	MonroeIN = Filter{Desc: "Monroe County, IN", StateFP: "18", CountyFP: "105"}
	LACA     = Filter{Desc: "Los Angeles County, CA", StateFP: "06", CountyFP: "037"}
)

// Filter restricts a dataset's rows to one state (and optionally one
// county) by FIPS code before loading.
type Filter struct {
	Desc     string `yaml:"desc"`
	StateFP  string `yaml:"state"`
	CountyFP string `yaml:"county,omitempty"`
}

// Dataset is one TIGER archive to import, with the attribute filters to
// apply. A dataset with multiple filters is imported once per filter
// (the national county file serves both target counties).
type Dataset struct {
	Key     string   `yaml:"key"`
	URL     string   `yaml:"url"`
	Desc    string   `yaml:"desc,omitempty"`
	Filters []Filter `yaml:"filters"`
}

// SourceTag is the provenance string stamped on rows imported from a
// given TIGER vintage.
func SourceTag(year int) string {
	return fmt.Sprintf("census_tiger_%d", year)
}

// URL builds a TIGER/Line archive URL from its layer directory, area
// (state FIPS or "us"), and file suffix, e.g.
// URL(2024, "SLDL", "18", "sldl") ->
// https://www2.census.gov/geo/tiger/TIGER2024/SLDL/tl_2024_18_sldl.zip
func URL(year int, layer, area, suffix string) string {
	return fmt.Sprintf("https://www2.census.gov/geo/tiger/TIGER%d/%s/tl_%d_%s_%s.zip",
		year, layer, year, area, suffix)
}

// DefaultDatasets is the built-in dataset list for the full import:
// county boundaries plus county subdivisions, unified school districts,
// state legislative districts (both chambers) for Indiana and
// California, and incorporated places for California.
// Congressional districts are deliberately absent: the upstream
// provider carries more current CD data than the Census vintage.
func DefaultDatasets(year int) []Dataset {
	in, ca := MonroeIN.StateFP, LACA.StateFP
	return []Dataset{
		{Key: "county", URL: URL(year, "COUNTY", "us", "county"), Desc: "County boundaries",
			Filters: []Filter{MonroeIN, LACA}},
		{Key: "cousub_in", URL: URL(year, "COUSUB", in, "cousub"), Desc: "Indiana county subdivisions",
			Filters: []Filter{{StateFP: in}}},
		{Key: "cousub_ca", URL: URL(year, "COUSUB", ca, "cousub"), Desc: "California county subdivisions",
			Filters: []Filter{{StateFP: ca}}},
		{Key: "unsd_in", URL: URL(year, "UNSD", in, "unsd"), Desc: "Indiana unified school districts",
			Filters: []Filter{{StateFP: in}}},
		{Key: "unsd_ca", URL: URL(year, "UNSD", ca, "unsd"), Desc: "California unified school districts",
			Filters: []Filter{{StateFP: ca}}},
		{Key: "sldu_in", URL: URL(year, "SLDU", in, "sldu"), Desc: "Indiana State Senate districts",
			Filters: []Filter{{StateFP: in}}},
		{Key: "sldu_ca", URL: URL(year, "SLDU", ca, "sldu"), Desc: "California State Senate districts",
			Filters: []Filter{{StateFP: ca}}},
		{Key: "sldl_in", URL: URL(year, "SLDL", in, "sldl"), Desc: "Indiana State House districts",
			Filters: []Filter{{StateFP: in}}},
		{Key: "sldl_ca", URL: URL(year, "SLDL", ca, "sldl"), Desc: "California State Assembly districts",
			Filters: []Filter{{StateFP: ca}}},
		{Key: "place_ca", URL: URL(year, "PLACE", ca, "place"), Desc: "California incorporated places",
			Filters: []Filter{{StateFP: ca}}},
	}
}

// MissingDatasets is the backfill list: Indiana State House and 119th
// Congress congressional districts, needed for address-based politician
// lookups.
func MissingDatasets(year int) []Dataset {
	in := MonroeIN.StateFP
	return []Dataset{
		{Key: "sldl_in", URL: URL(year, "SLDL", in, "sldl"),
			Desc:    "Indiana State House Districts (SLDL)",
			Filters: []Filter{{StateFP: in}}},
		{Key: "cd_in", URL: URL(year, "CD", in, "cd119"),
			Desc:    "Indiana Congressional Districts (119th Congress)",
			Filters: []Filter{{StateFP: in}}},
	}
}

// LoadDatasets reads a YAML dataset list, letting an operator import
// extra states or layers without recompiling.
func LoadDatasets(path string) ([]Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	var datasets []Dataset
	if err := yaml.Unmarshal(data, &datasets); err != nil {
		return nil, fmt.Errorf("parse dataset file %s: %w", path, err)
	}
	for i, d := range datasets {
		if d.Key == "" || d.URL == "" {
			return nil, fmt.Errorf("dataset %d in %s: key and url are required", i, path)
		}
	}
	return datasets, nil
}
