package geofence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// MTFCCCount is one line of the post-import summary.
type MTFCCCount struct {
	MTFCC string
	Count int64
}

// CountByMTFCC groups the destination table by feature-type code,
// optionally restricted to one provenance source tag.
func CountByMTFCC(ctx context.Context, db *gorm.DB, source string) ([]MTFCCCount, error) {
	query := `
		SELECT COALESCE(mtfcc, '') as mtfcc, COUNT(*) as count
		FROM essentials.geofence_boundaries
	`
	var args []interface{}
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	query += ` GROUP BY mtfcc ORDER BY mtfcc`

	rows, err := db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("mtfcc summary query failed: %w", err)
	}
	defer rows.Close()

	var counts []MTFCCCount
	for rows.Next() {
		var c MTFCCCount
		if err := rows.Scan(&c.MTFCC, &c.Count); err != nil {
			return nil, fmt.Errorf("scan mtfcc count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, nil
}

// PrintSummary writes the by-MTFCC breakdown to stdout. A summary that
// cannot be fetched is reported but never fails the run.
func PrintSummary(ctx context.Context, db *gorm.DB, source string) {
	counts, err := CountByMTFCC(ctx, db, source)
	if err != nil {
		fmt.Printf("Could not fetch summary: %v\n", err)
		return
	}

	fmt.Println("\nGeofence boundaries by MTFCC:")
	for _, c := range counts {
		label := c.MTFCC
		if label == "" {
			label = "NULL"
		}
		fmt.Printf("  %s: %d features\n", label, c.Count)
	}
}

// TotalCount returns the current row count of the destination table.
func TotalCount(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM essentials.geofence_boundaries
	`).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count geofence_boundaries: %w", err)
	}
	return count, nil
}

// PointMatch is a boundary containing the probe point.
type PointMatch struct {
	GeoID string
	Name  string
	MTFCC string
}

// FindBoundariesByPoint runs the same ST_Contains point-in-polygon query
// the address lookup uses, restricted to one feature-type code.
func FindBoundariesByPoint(ctx context.Context, db *gorm.DB, lat, lng float64, mtfcc string) ([]PointMatch, error) {
	rows, err := db.WithContext(ctx).Raw(`
		SELECT geo_id, name, COALESCE(mtfcc, '') as mtfcc
		FROM essentials.geofence_boundaries
		WHERE mtfcc = ?
		  AND ST_Contains(
		      geometry,
		      ST_SetSRID(ST_MakePoint(?, ?), 4326)
		  )
		ORDER BY geo_id
	`, mtfcc, lng, lat).Rows()
	if err != nil {
		return nil, fmt.Errorf("point-in-polygon query failed: %w", err)
	}
	defer rows.Close()

	var matches []PointMatch
	for rows.Next() {
		var m PointMatch
		if err := rows.Scan(&m.GeoID, &m.Name, &m.MTFCC); err != nil {
			return nil, fmt.Errorf("scan point match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// VerifySubDistrictPoint probes a fixed coordinate against the imported
// sub-district boundaries (geo_ids longer than seven characters) and
// prints a pass/warn line. Diagnostic only; the outcome never changes
// control flow or exit status.
func VerifySubDistrictPoint(ctx context.Context, db *gorm.DB, lat, lng float64, mtfcc string) {
	matches, err := FindBoundariesByPoint(ctx, db, lat, lng, mtfcc)
	if err != nil {
		fmt.Printf("  Verification query failed: %v\n", err)
		return
	}

	fmt.Printf("\n  Point-in-polygon test (%.4f, %.4f):\n", lat, lng)
	fmt.Printf("  Found %d %s boundaries:\n", len(matches), mtfcc)
	for _, m := range matches {
		fmt.Printf("    geo_id=%s  name=%s  mtfcc=%s\n", m.GeoID, m.Name, m.MTFCC)
	}

	// The parent Census district shares the MTFCC; sub-districts are
	// distinguishable by their longer manually-assigned geo_ids.
	var subDistricts []PointMatch
	for _, m := range matches {
		if len(m.GeoID) > 7 {
			subDistricts = append(subDistricts, m)
		}
	}

	switch len(subDistricts) {
	case 1:
		fmt.Printf("  SUCCESS: Point falls in exactly 1 sub-district: %s\n", subDistricts[0].GeoID)
	case 0:
		fmt.Printf("  WARNING: Point doesn't fall in any sub-district\n")
	default:
		fmt.Printf("  WARNING: Point falls in %d sub-districts (expected 1)\n", len(subDistricts))
	}
}
