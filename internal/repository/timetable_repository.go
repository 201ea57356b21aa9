package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusforge/timetable-engine/internal/models"
)

func encodeMetadata(meta models.GenerationMetadata) ([]byte, error) {
	return json.Marshal(meta)
}

// TimetableRepository manages Timetable container rows.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository builds the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new timetable row.
func (r *TimetableRepository) Create(ctx context.Context, t *models.Timetable) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.AcademicHalf == "" {
		t.AcademicHalf = models.AcademicHalfFirst
	}
	const query = `INSERT INTO timetables (id, name, semester, year, academic_half, is_active, generation_metadata, created_at)
		VALUES (:id, :name, :semester, :year, :academic_half, :is_active, :generation_metadata, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, t); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// Get returns a timetable by id.
func (r *TimetableRepository) Get(ctx context.Context, id string) (models.Timetable, error) {
	const query = `SELECT id, name, semester, year, academic_half, is_active, generation_metadata, created_at
		FROM timetables WHERE id = $1`
	var t models.Timetable
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return models.Timetable{}, fmt.Errorf("get timetable: %w", err)
	}
	return t, nil
}

// List returns every timetable, newest first.
func (r *TimetableRepository) List(ctx context.Context) ([]models.Timetable, error) {
	const query = `SELECT id, name, semester, year, academic_half, is_active, generation_metadata, created_at
		FROM timetables ORDER BY created_at DESC`
	var out []models.Timetable
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return out, nil
}

// Delete removes a timetable row; its slots cascade via FK.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetables WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	return nil
}

// Activate makes id the sole active timetable: every other timetable's
// is_active is cleared first, then id's is set, all in one transaction.
// Mirrors routers/timetables.py's activate_timetable, which bulk-clears
// before setting the target — never a single conditional UPDATE.
func (r *TimetableRepository) Activate(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("activate timetable: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE timetables SET is_active = false WHERE is_active = true`); err != nil {
		return fmt.Errorf("activate timetable: clear: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE timetables SET is_active = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("activate timetable: set: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("activate timetable: %s not found", id)
	}
	return tx.Commit()
}

// SetGenerationMetadata stamps the generation_metadata JSON column.
func (r *TimetableRepository) SetGenerationMetadata(ctx context.Context, timetableID string, metadata models.GenerationMetadata) error {
	return r.setGenerationMetadata(ctx, nil, timetableID, metadata)
}

// setGenerationMetadata stamps generation_metadata against exec, which may
// be a *sqlx.Tx so the stamp composes into a caller's transaction — see
// SlotRepository.ReplaceSlotsAndStamp.
func (r *TimetableRepository) setGenerationMetadata(ctx context.Context, exec sqlx.ExtContext, timetableID string, metadata models.GenerationMetadata) error {
	raw, err := encodeMetadata(metadata)
	if err != nil {
		return fmt.Errorf("set generation metadata: encode: %w", err)
	}
	const query = `UPDATE timetables SET generation_metadata = $2 WHERE id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, timetableID, raw); err != nil {
		return fmt.Errorf("set generation metadata: %w", err)
	}
	return nil
}
