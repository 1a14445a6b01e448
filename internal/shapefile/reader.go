// Package shapefile loads a TIGER/Line shapefile triplet (.shp geometry,
// .dbf attributes, .prj coordinate system) into an in-memory table.
package shapefile

import (
	"fmt"
	"log"
	"os"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"golang.org/x/text/encoding/charmap"
)

// Row pairs one geometry with its attribute record.
type Row struct {
	Geometry orb.Geometry
	Attrs    map[string]string
}

// Table is the parsed contents of one shapefile.
type Table struct {
	// SRID of the source coordinate system, from the .prj sidecar.
	SRID    int
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the attribute schema contains name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Load reads the shapefile at path (the .shp member; the .dbf and .prj
// sidecars are found next to it). Attribute text is decoded from
// Latin-1, the encoding TIGER/Line DBF files ship with.
func Load(path string) (*Table, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	srid, err := detectSRID(path)
	if err != nil {
		return nil, err
	}

	fields := r.Fields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.String()
	}

	table := &Table{SRID: srid, Columns: columns}
	decoder := charmap.ISO8859_1.NewDecoder()

	for r.Next() {
		n, shape := r.Shape()

		geom, err := toGeometry(shape)
		if err != nil {
			return nil, fmt.Errorf("record %d of %s: %w", n, path, err)
		}
		if geom == nil {
			continue // null shape
		}

		attrs := make(map[string]string, len(fields))
		for i := range fields {
			raw := strings.TrimSpace(r.ReadAttribute(n, i))
			decoded, err := decoder.String(raw)
			if err != nil {
				decoded = raw
			}
			attrs[columns[i]] = decoded
		}

		table.Rows = append(table.Rows, Row{Geometry: geom, Attrs: attrs})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile %s: %w", path, err)
	}

	return table, nil
}

// toGeometry converts a boundary shape into an orb geometry. TIGER
// boundary layers only contain polygons; ring orientation follows the
// shapefile convention (clockwise outer, counterclockwise holes).
func toGeometry(shape shp.Shape) (orb.Geometry, error) {
	switch s := shape.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Polygon:
		return polygonToMulti(s.Parts, s.Points), nil
	default:
		return nil, fmt.Errorf("unsupported shape type %T", shape)
	}
}

func polygonToMulti(parts []int32, points []shp.Point) orb.Geometry {
	var mp orb.MultiPolygon

	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}

		ring := make(orb.Ring, 0, end-int(start))
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}

		if ring.Orientation() == orb.CW || len(mp) == 0 {
			// Outer ring starts a new polygon. A hole arriving before
			// any outer ring still gets its own polygon rather than
			// being dropped.
			mp = append(mp, orb.Polygon{ring})
		} else {
			mp[len(mp)-1] = append(mp[len(mp)-1], ring)
		}
	}

	if len(mp) == 1 {
		return mp[0]
	}
	return mp
}

// detectSRID classifies the .prj sidecar next to the .shp file. Only the
// coordinate systems that actually occur in our sources are recognized;
// anything else is an error so the dataset gets skipped rather than
// imported in the wrong reference.
func detectSRID(shpPath string) (int, error) {
	prjPath := strings.TrimSuffix(shpPath, ".shp") + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("  No .prj sidecar for %s, assuming EPSG:4326", shpPath)
			return 4326, nil
		}
		return 0, fmt.Errorf("read %s: %w", prjPath, err)
	}
	return ClassifyCRS(string(data))
}

// ClassifyCRS maps a .prj well-known-text body to an EPSG code.
func ClassifyCRS(wkt string) (int, error) {
	trimmed := strings.TrimSpace(wkt)

	switch {
	case strings.Contains(trimmed, "Web_Mercator"),
		strings.Contains(trimmed, "Pseudo-Mercator"),
		strings.Contains(trimmed, "3857"),
		strings.Contains(trimmed, "900913"):
		return 3857, nil
	}

	// Any other projected system is unsupported. The datum name alone
	// must not decide: a NAD83 State Plane export carries "NAD83" in
	// its WKT but its coordinates are feet, not lon/lat.
	if strings.HasPrefix(trimmed, "PROJCS") {
		return 0, fmt.Errorf("unsupported projected coordinate system: %.80s", trimmed)
	}

	switch {
	case strings.Contains(trimmed, "NAD83"),
		strings.Contains(trimmed, "North_American_1983"),
		strings.Contains(trimmed, "4269"):
		return 4269, nil
	case strings.Contains(trimmed, "WGS_1984"),
		strings.Contains(trimmed, "WGS 84"),
		strings.Contains(trimmed, "WGS84"),
		strings.Contains(trimmed, "4326"):
		return 4326, nil
	}
	return 0, fmt.Errorf("unrecognized coordinate system: %.80s", trimmed)
}
