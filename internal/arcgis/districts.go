package arcgis

import (
	"fmt"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	// SubDistrictMTFCC is the feature-type code the sub-district rows
	// share with the parent unified school district.
	SubDistrictMTFCC = "G5420"

	// SourceTag is the provenance string for rows from this service.
	SourceTag = "moco_gis_arcgis_2024"

	// StateFIPS is Indiana.
	StateFIPS = "18"
)

// DistrictGeoIDs maps the feature service's district numbers to the
// geo_ids the backend's essentials.districts rows carry. District 0 is
// RBBCSC (Richland-Bean Blossom), whose seats all share one geo_id.
var DistrictGeoIDs = map[int]string{
	1: "180063000001", // MCCSC District 1
	2: "180063000002", // MCCSC District 2
	3: "180063000003", // MCCSC District 3
	4: "180063000004", // MCCSC District 4
	5: "180063000005", // MCCSC District 5
	6: "180063000006", // MCCSC District 6
	7: "180063000007", // MCCSC District 7
	0: "1809480",      // RBBCSC
}

// District is one mapped school-board sub-district polygon.
type District struct {
	Number   int
	GeoID    string
	Name     string
	Geometry orb.Geometry
}

// ParseDistricts decodes the feature-service GeoJSON and maps each
// feature's District number to its geo_id. Features with no mapping are
// dropped with a warning rather than failing the run — a deliberate
// choice so a new unmapped district doesn't block re-importing the rest.
// The dropped district numbers are returned for the caller's accounting.
func ParseDistricts(data []byte) ([]District, []int, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse feature-service GeoJSON: %w", err)
	}

	fmt.Printf("  Found %d features in GeoJSON\n", len(fc.Features))

	var districts []District
	var dropped []int
	for _, feat := range fc.Features {
		num := feat.Properties.MustInt("District", -1)
		geoID, ok := DistrictGeoIDs[num]
		if !ok {
			log.Printf("  WARNING: No geo_id mapping for district %d, skipping", num)
			dropped = append(dropped, num)
			continue
		}

		name := feat.Properties.MustString("DistrictName", "")

		districts = append(districts, District{
			Number:   num,
			GeoID:    geoID,
			Name:     name,
			Geometry: feat.Geometry,
		})
		fmt.Printf("  District %d (%s) -> geo_id %s\n", num, name, geoID)
	}

	return districts, dropped, nil
}
