// Command import-missing backfills the geofence boundaries the full
// TIGER import deliberately left out: Indiana State House districts
// (SLDL) and 119th-Congress congressional districts, both needed for
// address-based politician lookups.
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

func main() {
	fmt.Println("============================================================")
	fmt.Println("Import Missing Geofence Boundaries")
	fmt.Println("SLDL (State House) + CD (Congressional) for Indiana")
	fmt.Println("============================================================")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// Verify the connection before touching the network.
	count, err := geofence.TotalCount(ctx, conn)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\n  Current geofence_boundaries count: %d\n", count)

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		log.Fatalf("create work directory: %v", err)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	source := tiger.SourceTag(tiger.Year)

	totalImported := 0
	for _, ds := range tiger.MissingDatasets(tiger.Year) {
		fmt.Println("\n============================================================")
		fmt.Printf("Processing: %s\n", ds.Desc)
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
	fmt.Printf("Import complete! Total new records: %d\n", totalImported)
	fmt.Println("============================================================")

	geofence.PrintSummary(ctx, conn, "")
}
