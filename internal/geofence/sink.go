package geofence

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// uniqueViolation is the Postgres condition code for a unique-constraint
// violation.
const uniqueViolation = "23505"

// IsDuplicate reports whether err is a unique-constraint violation.
// Prefers the driver's typed error code; the message-text match remains
// as a fallback for errors that arrive without a *pgconn.PgError in
// their chain.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// InsertResult accounts for one batch append.
type InsertResult struct {
	Imported int
	Skipped  int // duplicates absorbed by the per-row fallback
}

// InsertBatch appends rows in a single bulk insert. If the bulk insert
// hits a unique-constraint violation it falls back to row-by-row
// insertion, where every failing row is counted as skipped instead of
// failing the batch. A bulk failure for any other reason abandons the
// batch: zero rows reported, error returned for the caller to log
// before moving to the next dataset.
func InsertBatch(db *gorm.DB, rows []GeofenceBoundary) (InsertResult, error) {
	if len(rows) == 0 {
		return InsertResult{}, nil
	}

	err := db.Create(&rows).Error
	if err == nil {
		return InsertResult{Imported: len(rows)}, nil
	}
	if !IsDuplicate(err) {
		return InsertResult{}, fmt.Errorf("bulk insert: %w", err)
	}

	log.Printf("  Some records already exist, importing individually...")
	return insertIndividually(db, rows)
}

// insertIndividually inserts rows one at a time. Every failing row is
// counted as skipped rather than propagated, so a partially-overlapping
// re-import always makes forward progress through the whole batch.
// Non-duplicate failures are logged per row since they indicate more
// than an overlap.
func insertIndividually(db *gorm.DB, rows []GeofenceBoundary) (InsertResult, error) {
	var res InsertResult
	for i := range rows {
		row := rows[i]
		if err := db.Create(&row).Error; err != nil {
			if !IsDuplicate(err) {
				log.Printf("  Skipping geo_id %s: %v", row.GeoID, err)
			}
			res.Skipped++
			continue
		}
		res.Imported++
	}
	log.Printf("  Imported %d, skipped %d", res.Imported, res.Skipped)
	return res, nil
}

// ReplaceByKeySet deletes every existing row whose geo_id appears in the
// batch and whose mtfcc matches, then inserts the batch, all in one
// transaction. Re-running an import with replace semantics therefore
// never accumulates rows for the same key set.
func ReplaceByKeySet(db *gorm.DB, rows []GeofenceBoundary, mtfcc string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	geoIDs := KeySet(rows)

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			DELETE FROM essentials.geofence_boundaries
			WHERE geo_id = ANY(?) AND mtfcc = ?
		`, pq.Array(geoIDs), mtfcc)
		if res.Error != nil {
			return fmt.Errorf("delete existing: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			log.Printf("  Deleted %d existing records (re-import)", res.RowsAffected)
		}

		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert replacement rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// KeySet returns the distinct geo_ids of a batch, in first-seen order.
func KeySet(rows []GeofenceBoundary) []string {
	seen := make(map[string]bool, len(rows))
	var ids []string
	for _, r := range rows {
		if !seen[r.GeoID] {
			seen[r.GeoID] = true
			ids = append(ids, r.GeoID)
		}
	}
	return ids
}
