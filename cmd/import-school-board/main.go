// Command import-school-board loads MCCSC school-board sub-district
// polygons from the Monroe County GIS ArcGIS feature service into
// essentials.geofence_boundaries.
//
// These polygons enable precise point-in-polygon matching for school
// board members, replacing the prefix-matching workaround that returned
// every board member for any address. Re-running replaces the existing
// sub-district rows (delete + insert in one transaction).
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/EmpoweredVote/EV-Geofence-Import/internal/arcgis"
	"github.com/EmpoweredVote/EV-Geofence-Import/internal/config"
	"github.com/EmpoweredVote/EV-Geofence-Import/internal/db"
	"github.com/EmpoweredVote/EV-Geofence-Import/internal/geofence"
)

const geojsonCache = "mccsc_school_board_districts.geojson"

// Downtown Bloomington, used to sanity-check the imported polygons.
const (
	verifyLat = 39.1699
	verifyLng = -86.5342
)

func main() {
	fmt.Println("============================================================")
	fmt.Println("Import School Board Sub-District Boundaries")
	fmt.Println("Source: Monroe County GIS (MCCSC_School_Board_2024)")
	fmt.Println("============================================================")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		log.Fatalf("create work directory: %v", err)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 2 * time.Minute}

	data, err := arcgis.FetchGeoJSON(ctx, client, filepath.Join(cfg.WorkDir, geojsonCache))
	if err != nil {
		log.Printf("%v", err)
		return
	}

	districts, _, err := arcgis.ParseDistricts(data)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	now := time.Now()
	rows := make([]geofence.GeofenceBoundary, 0, len(districts))
	for _, d := range districts {
		encoded, err := geofence.EncodeGeometry(d.Geometry)
		if err != nil {
			log.Printf("district %d: %v", d.Number, err)
			return
		}
		rows = append(rows, geofence.GeofenceBoundary{
			GeoID:      d.GeoID,
			Name:       d.Name,
			MTFCC:      arcgis.SubDistrictMTFCC,
			State:      arcgis.StateFIPS,
			Geometry:   encoded,
			Source:     arcgis.SourceTag,
			ImportedAt: now,
		})
	}

	count, err := geofence.ReplaceByKeySet(conn, rows, arcgis.SubDistrictMTFCC)
	if err != nil {
		log.Printf("import failed: %v", err)
		return
	}
	fmt.Printf("  Imported %d school board district boundaries\n", count)

	geofence.VerifySubDistrictPoint(ctx, conn, verifyLat, verifyLng, arcgis.SubDistrictMTFCC)

	fmt.Printf("\nDone! Imported %d school board district boundaries.\n", count)
}
