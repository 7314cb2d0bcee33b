package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/expcalc/internal/analysis"
)

// ErrSnapshotNotFound is returned when a snapshot lookup yields no results.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrSnapshotExists is returned when saving a snapshot whose ID is already stored.
var ErrSnapshotExists = errors.New("snapshot already exists")

// SnapshotRow is the stored outcome of one method at one location.
type SnapshotRow struct {
	LocationID    string
	LocationName  string
	Version       string
	Method        string
	ExpectedExp   float64
	EncounterRate int
	Efficiency    float64
}

// Snapshot is one persisted analysis run.
type Snapshot struct {
	ID           uuid.UUID
	Dataset      string
	Multiplier   bool
	ReferenceMax int
	CreatedAt    time.Time
	Rows         []SnapshotRow
}

// NewSnapshot flattens analysis results into a Snapshot with a fresh ID.
//
// Precondition: results must come from one Analyze call made with multiplier
// and referenceMax.
// Postcondition: Rows holds one entry per evaluated method, in results order.
func NewSnapshot(dataset string, multiplier bool, referenceMax int, results []analysis.LocationResult) *Snapshot {
	s := &Snapshot{
		ID:           uuid.New(),
		Dataset:      dataset,
		Multiplier:   multiplier,
		ReferenceMax: referenceMax,
	}
	for _, lr := range results {
		for _, mr := range lr.Methods {
			s.Rows = append(s.Rows, SnapshotRow{
				LocationID:    lr.Location.ID,
				LocationName:  lr.Location.Name,
				Version:       string(lr.Location.Version),
				Method:        mr.Method.String(),
				ExpectedExp:   mr.Expectation.ExpectedExp,
				EncounterRate: mr.EncounterRate,
				Efficiency:    mr.Efficiency,
			})
		}
	}
	return s
}

// SnapshotRepository provides snapshot persistence operations.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save inserts s and all of its rows in one transaction and sets s.CreatedAt.
//
// Precondition: s must be non-nil with a non-nil ID.
// Postcondition: Either every row is stored or none is; returns ErrSnapshotExists
// when s.ID is already present.
func (r *SnapshotRepository) Save(ctx context.Context, s *Snapshot) error {
	if s == nil || s.ID == uuid.Nil {
		return fmt.Errorf("saving snapshot: id must be set")
	}
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO snapshots (id, dataset, multiplier, reference_max)
			 VALUES ($1, $2, $3, $4)
			 RETURNING created_at`,
			s.ID, s.Dataset, s.Multiplier, s.ReferenceMax,
		).Scan(&s.CreatedAt)
		if err != nil {
			if isDuplicateKeyError(err) {
				return ErrSnapshotExists
			}
			return fmt.Errorf("inserting snapshot: %w", err)
		}

		batch := &pgx.Batch{}
		for _, row := range s.Rows {
			batch.Queue(
				`INSERT INTO snapshot_methods
					(snapshot_id, location_id, location_name, version, method,
					 expected_exp, encounter_rate, efficiency)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				s.ID, row.LocationID, row.LocationName, row.Version, row.Method,
				row.ExpectedExp, row.EncounterRate, row.Efficiency,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting snapshot rows: %w", err)
		}
		return nil
	})
}

// Get retrieves a snapshot and its rows by ID.
//
// Postcondition: Returns the Snapshot with Rows ordered by location then method,
// or ErrSnapshotNotFound.
func (r *SnapshotRepository) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var s Snapshot
	err := r.db.QueryRow(ctx,
		`SELECT id, dataset, multiplier, reference_max, created_at
		 FROM snapshots WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Dataset, &s.Multiplier, &s.ReferenceMax, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	rows, err := r.loadRows(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Rows = rows
	return &s, nil
}

// Latest returns the most recently saved snapshot of dataset.
//
// Postcondition: Returns the Snapshot or ErrSnapshotNotFound.
func (r *SnapshotRepository) Latest(ctx context.Context, dataset string) (*Snapshot, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`SELECT id FROM snapshots WHERE dataset = $1
		 ORDER BY created_at DESC LIMIT 1`,
		dataset,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete removes a snapshot and, by cascade, its rows.
//
// Postcondition: Returns ErrSnapshotNotFound if no snapshot had that ID.
func (r *SnapshotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (r *SnapshotRepository) loadRows(ctx context.Context, id uuid.UUID) ([]SnapshotRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT location_id, location_name, version, method,
		        expected_exp, encounter_rate, efficiency
		 FROM snapshot_methods WHERE snapshot_id = $1
		 ORDER BY location_id, method`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot rows: %w", err)
	}
	defer rows.Close()

	out := make([]SnapshotRow, 0)
	for rows.Next() {
		var row SnapshotRow
		if err := rows.Scan(
			&row.LocationID, &row.LocationName, &row.Version, &row.Method,
			&row.ExpectedExp, &row.EncounterRate, &row.Efficiency,
		); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
