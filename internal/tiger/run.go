package tiger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/EmpoweredVote/EV-Geofence-Import/internal/geofence"
	"github.com/EmpoweredVote/EV-Geofence-Import/internal/shapefile"
	"github.com/EmpoweredVote/EV-Geofence-Import/internal/transform"
)

// ErrDownload marks a network failure fetching an archive. The callers
// treat it as fatal to the rest of the run (no retry), unlike parse or
// insert failures which only skip the current dataset.
var ErrDownload = errors.New("download failed")

// ImportDataset runs the whole pipeline for one TIGER dataset: download,
// extract, load, then filter/transform/insert once per configured
// filter. Returns the number of rows written.
func ImportDataset(ctx context.Context, db *gorm.DB, client *http.Client, workDir, source string, ds Dataset) (int, error) {
	dest := filepath.Join(workDir, path.Base(ds.URL))
	if err := Download(ctx, client, ds.URL, dest); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownload, err)
	}

	extractDir := strings.TrimSuffix(dest, ".zip")
	if err := ExtractZip(dest, extractDir); err != nil {
		return 0, err
	}

	shpPath, err := FindShapefile(extractDir)
	if err != nil {
		return 0, err
	}

	fmt.Printf("  Loading shapefile: %s...\n", filepath.Base(shpPath))
	tbl, err := shapefile.Load(shpPath)
	if err != nil {
		return 0, err
	}

	filters := ds.Filters
	if len(filters) == 0 {
		// No filters configured means import the whole layer.
		filters = []Filter{{}}
	}

	total := 0
	for _, f := range filters {
		if f.Desc != "" {
			fmt.Printf("\n  Importing %s...\n", f.Desc)
		}

		rows, err := transform.Run(tbl, transform.Options{
			StateFP:  f.StateFP,
			CountyFP: f.CountyFP,
			Source:   source,
		})
		if err != nil {
			log.Printf("  Transform failed: %v", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		fmt.Printf("  Importing %d records to geofence_boundaries...\n", len(rows))
		res, err := geofence.InsertBatch(db, rows)
		// Rows written before a failure still count toward the total.
		total += res.Imported
		if err != nil {
			// Batch abandoned; keep going with the next filter/dataset.
			log.Printf("  Import failed: %v", err)
			continue
		}
		fmt.Printf("  Imported %d records\n", res.Imported)
	}

	return total, nil
}
