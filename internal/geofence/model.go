package geofence

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
)

// SRID is the coordinate reference every stored geometry must be in
// (WGS84 longitude/latitude). The address lookup's ST_Contains queries
// assume it.
const SRID = 4326

// GeofenceBoundary is one row of essentials.geofence_boundaries, the
// polygon table behind the backend's point-in-polygon district lookup.
// geo_id + mtfcc is the practical dedup key (unique constraint managed
// manually on the table).
type GeofenceBoundary struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GeoID string    `gorm:"size:50" json:"geo_id"` // Census GEOID, or a manually assigned ID for non-Census sources
	Name  string    `json:"name"`
	MTFCC string    `gorm:"index;size:10" json:"mtfcc"` // MAF/TIGER Feature Class Code
	State string    `gorm:"index;size:2" json:"state"`  // two-digit state FIPS

	// Geometry is a POLYGON or MULTIPOLYGON in WGS84 (SRID 4326),
	// stored as hex EWKB — the canonical text input for a PostGIS
	// geometry column.
	Geometry string `gorm:"type:geometry(Geometry,4326)" json:"-"`

	Source     string    `json:"source"` // e.g. "census_tiger_2024"
	ImportedAt time.Time `json:"imported_at"`
}

func (GeofenceBoundary) TableName() string {
	return "essentials.geofence_boundaries"
}

// EncodeGeometry serializes a geometry to hex EWKB with the table SRID.
func EncodeGeometry(g orb.Geometry) (string, error) {
	data, err := ewkb.Marshal(g, SRID)
	if err != nil {
		return "", fmt.Errorf("encode geometry: %w", err)
	}
	return hex.EncodeToString(data), nil
}
