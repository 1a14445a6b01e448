package transform

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/EmpoweredVote/EV-Geofence-Import/internal/shapefile"
)

func square(x, y float64) orb.Polygon {
	return orb.Polygon{{
		{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y},
	}}
}

func countyTable() *shapefile.Table {
	return &shapefile.Table{
		SRID:    4269,
		Columns: []string{"GEOID", "NAME", "MTFCC", "STATEFP", "COUNTYFP", "ALAND"},
		Rows: []shapefile.Row{
			{Geometry: square(-87, 39), Attrs: map[string]string{
				"GEOID": "18105", "NAME": "Monroe", "MTFCC": "G4020",
				"STATEFP": "18", "COUNTYFP": "105", "ALAND": "1021059000",
			}},
			{Geometry: square(-86, 40), Attrs: map[string]string{
				"GEOID": "18057", "NAME": "Hamilton", "MTFCC": "G4020",
				"STATEFP": "18", "COUNTYFP": "057", "ALAND": "1021059001",
			}},
			{Geometry: square(-119, 34), Attrs: map[string]string{
				"GEOID": "06037", "NAME": "Los Angeles", "MTFCC": "G4020",
				"STATEFP": "06", "COUNTYFP": "037", "ALAND": "1021059002",
			}},
		},
	}
}

func TestFilterRetainsMatchingRows(t *testing.T) {
	tbl := Filter(countyTable(), "STATEFP", "18")
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	for _, r := range tbl.Rows {
		if r.Attrs["STATEFP"] != "18" {
			t.Errorf("retained row with STATEFP %q", r.Attrs["STATEFP"])
		}
	}

	tbl = Filter(tbl, "COUNTYFP", "105")
	if len(tbl.Rows) != 1 || tbl.Rows[0].Attrs["GEOID"] != "18105" {
		t.Fatalf("county filter wrong: %d rows", len(tbl.Rows))
	}
}

func TestFilterMissingColumnRetainsAll(t *testing.T) {
	tbl := countyTable()
	tbl.Columns = []string{"GEOID", "NAME", "MTFCC"} // filter columns renamed upstream

	out := Filter(tbl, "STATEFP", "18")
	if len(out.Rows) != len(tbl.Rows) {
		t.Errorf("missing column must pass all rows through, got %d of %d",
			len(out.Rows), len(tbl.Rows))
	}
}

func TestFilterEmptyValueIsNoop(t *testing.T) {
	tbl := countyTable()
	if out := Filter(tbl, "COUNTYFP", ""); len(out.Rows) != len(tbl.Rows) {
		t.Errorf("empty filter value must not filter")
	}
}

func TestRunMapsAndStamps(t *testing.T) {
	now := time.Date(2024, 11, 12, 10, 30, 0, 0, time.UTC)
	rows, err := Run(countyTable(), Options{
		StateFP:  "18",
		CountyFP: "105",
		Source:   "census_tiger_2024",
		Now:      now,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.GeoID != "18105" || row.Name != "Monroe" || row.MTFCC != "G4020" || row.State != "18" {
		t.Errorf("column mapping wrong: %+v", row)
	}
	if row.Source != "census_tiger_2024" {
		t.Errorf("source = %q", row.Source)
	}
	if !row.ImportedAt.Equal(now) {
		t.Errorf("imported_at = %v", row.ImportedAt)
	}

	// Hex EWKB, little endian, with the 4326 SRID embedded.
	if !strings.HasPrefix(row.Geometry, "01") {
		t.Errorf("geometry not hex EWKB: %.20s", row.Geometry)
	}
	if !strings.Contains(strings.ToLower(row.Geometry), "e6100000") {
		t.Errorf("geometry missing SRID 4326: %.40s", row.Geometry)
	}
}

func TestRunZeroRowsIsNotAnError(t *testing.T) {
	rows, err := Run(countyTable(), Options{StateFP: "99", Source: "census_tiger_2024"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rows != nil {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestToWGS84(t *testing.T) {
	lonLat := orb.Point{-86.5342, 39.1699}

	// Geographic inputs pass through untouched.
	for _, srid := range []int{4326, 4269} {
		got, err := ToWGS84(lonLat, srid)
		if err != nil {
			t.Fatalf("EPSG:%d: %v", srid, err)
		}
		if !got.(orb.Point).Equal(lonLat) {
			t.Errorf("EPSG:%d should be identity, got %v", srid, got)
		}
	}

	// Web Mercator round-trips back to the original coordinate.
	merc := project.Geometry(orb.Clone(lonLat), project.WGS84.ToMercator)
	got, err := ToWGS84(merc, 3857)
	if err != nil {
		t.Fatal(err)
	}
	p := got.(orb.Point)
	if math.Abs(p[0]-lonLat[0]) > 1e-6 || math.Abs(p[1]-lonLat[1]) > 1e-6 {
		t.Errorf("mercator inverse: got %v, want %v", p, lonLat)
	}

	if _, err := ToWGS84(lonLat, 2193); err == nil {
		t.Error("expected error for unsupported source reference")
	}
}
