// Package transform turns a loaded attribute table into
// geofence_boundaries rows: attribute filtering, reprojection to
// EPSG:4326, fixed column mapping, and provenance stamping.
package transform

import (
	"fmt"
	"log"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/EmpoweredVote/EV-Geofence-Import/internal/geofence"
	"github.com/EmpoweredVote/EV-Geofence-Import/internal/shapefile"
)

// columnMap is the fixed source-attribute → destination-column mapping.
// Attributes outside this set are discarded.
var columnMap = map[string]string{
	"GEOID":   "geo_id",
	"NAME":    "name",
	"MTFCC":   "mtfcc",
	"STATEFP": "state",
}

// Options configures one transform pass.
type Options struct {
	// StateFP / CountyFP restrict rows by FIPS code. Empty means no
	// filtering on that dimension.
	StateFP  string
	CountyFP string

	// Source is the provenance tag stamped on every row.
	Source string

	// Now is the import timestamp; zero means time.Now().
	Now time.Time
}

// Run filters, reprojects, maps, and stamps a table. Zero rows out is a
// valid outcome (logged, not an error): the caller simply has nothing to
// insert for this dataset.
func Run(tbl *shapefile.Table, opts Options) ([]geofence.GeofenceBoundary, error) {
	tbl = Filter(tbl, "STATEFP", opts.StateFP)
	tbl = Filter(tbl, "COUNTYFP", opts.CountyFP)

	if len(tbl.Rows) == 0 {
		log.Printf("  No records match filters")
		return nil, nil
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	if tbl.SRID != geofence.SRID {
		log.Printf("  Reprojecting from EPSG:%d to EPSG:%d...", tbl.SRID, geofence.SRID)
	}

	rows := make([]geofence.GeofenceBoundary, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		geom, err := ToWGS84(r.Geometry, tbl.SRID)
		if err != nil {
			return nil, err
		}

		encoded, err := geofence.EncodeGeometry(geom)
		if err != nil {
			return nil, err
		}

		row := geofence.GeofenceBoundary{
			Geometry:   encoded,
			Source:     opts.Source,
			ImportedAt: now,
		}
		for src, dst := range columnMap {
			val, ok := r.Attrs[src]
			if !ok {
				continue
			}
			switch dst {
			case "geo_id":
				row.GeoID = val
			case "name":
				row.Name = val
			case "mtfcc":
				row.MTFCC = val
			case "state":
				row.State = val
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Filter retains rows whose column attribute equals value. A table
// without the column is passed through unfiltered — but loudly, since a
// renamed filter column upstream would otherwise turn a county import
// into a nationwide one.
func Filter(tbl *shapefile.Table, column, value string) *shapefile.Table {
	if value == "" {
		return tbl
	}
	if !tbl.HasColumn(column) {
		log.Printf("  WARNING: filter column %s not present; retaining all %d rows unfiltered",
			column, len(tbl.Rows))
		return tbl
	}

	out := &shapefile.Table{SRID: tbl.SRID, Columns: tbl.Columns}
	for _, r := range tbl.Rows {
		if r.Attrs[column] == value {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// ToWGS84 reprojects a geometry from the given source reference into
// WGS84 longitude/latitude. NAD83 coordinates are already geographic
// lon/lat and carry no datum-grid shift here, so they pass through
// unchanged, as does WGS84 itself. Web Mercator gets the closed-form
// inverse projection.
func ToWGS84(g orb.Geometry, srid int) (orb.Geometry, error) {
	switch srid {
	case 4326, 4269:
		return g, nil
	case 3857, 900913:
		return project.Geometry(orb.Clone(g), project.Mercator.ToWGS84), nil
	}
	return nil, fmt.Errorf("cannot reproject from EPSG:%d to EPSG:4326", srid)
}
