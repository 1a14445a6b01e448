// Command import-tiger downloads the 2024 Census TIGER/Line boundary
// layers for Monroe County, IN and Los Angeles County, CA and loads them
// into essentials.geofence_boundaries.
//
// An optional datasets.yaml in the working directory replaces the
// built-in dataset list. Downloads and extracted archives are cached
// under the work directory and reused on re-runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/EmpoweredVote/EV-Geofence-Import/internal/config"
	"github.com/EmpoweredVote/EV-Geofence-Import/internal/db"
	"github.com/EmpoweredVote/EV-Geofence-Import/internal/geofence"
	"github.com/EmpoweredVote/EV-Geofence-Import/internal/tiger"
)

const datasetsFile = "datasets.yaml"

func main() {
	fmt.Println("============================================================")
	fmt.Println("Census TIGER/Line Shapefile Importer")
	fmt.Printf("Year: %d\n", tiger.Year)
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

	datasets := tiger.DefaultDatasets(tiger.Year)
	if _, err := os.Stat(datasetsFile); err == nil {
		datasets, err = tiger.LoadDatasets(datasetsFile)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Using dataset list from %s (%d datasets)\n", datasetsFile, len(datasets))
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 5 * time.Minute}
	source := tiger.SourceTag(tiger.Year)

	totalImported := 0
	for _, ds := range datasets {
		fmt.Println("\n============================================================")
		fmt.Printf("Processing: %s\n", ds.Key)
		fmt.Println("============================================================")

		count, err := tiger.ImportDataset(ctx, conn, client, cfg.WorkDir, source, ds)
		totalImported += count
		if err != nil {
			if errors.Is(err, tiger.ErrDownload) {
				log.Printf("  %v", err)
				log.Printf("  Aborting remaining datasets")
				break
			}
			log.Printf("  Skipping dataset %s: %v", ds.Key, err)
			continue
		}
		geofence.PrintSummary(ctx, conn, source)
	}

	fmt.Println("\n============================================================")
	fmt.Println("Import complete!")
	fmt.Printf("Total records imported: %d\n", totalImported)
	fmt.Println("============================================================")

	fmt.Println("\nDatabase summary:")
	geofence.PrintSummary(ctx, conn, source)
}
