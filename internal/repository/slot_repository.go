package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusforge/timetable-engine/internal/models"
)

// SlotRepository is the Persistence Sink's bulk-write surface for
// PlacedSlots: it replaces an entire timetable's slot set in one
// transaction rather than upserting row by row, since a generation run
// always produces the complete set for every level it processed.
type SlotRepository struct {
	db        *sqlx.DB
	timetable *TimetableRepository
}

// NewSlotRepository builds the repository.
func NewSlotRepository(db *sqlx.DB, timetable *TimetableRepository) *SlotRepository {
	return &SlotRepository{db: db, timetable: timetable}
}

// ReplaceSlotsAndStamp replaces a timetable's slot set and stamps its
// generation_metadata in a single transaction, so a failure on either
// half rolls back both and no partial timetable is ever left behind —
// this is what makes Materialize() in internal/materialize atomic end
// to end.
func (r *SlotRepository) ReplaceSlotsAndStamp(ctx context.Context, timetableID string, slots []models.PlacedSlot, metadata models.GenerationMetadata) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace slots and stamp: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceSlotsTx(ctx, tx, timetableID, slots); err != nil {
		return err
	}
	if err := r.timetable.setGenerationMetadata(ctx, tx, timetableID, metadata); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceSlotsTx(ctx context.Context, tx *sqlx.Tx, timetableID string, slots []models.PlacedSlot) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM placed_slots WHERE timetable_id = $1`, timetableID); err != nil {
		return fmt.Errorf("replace slots: clear: %w", err)
	}

	const query = `INSERT INTO placed_slots
		(id, timetable_id, course_id, group_id, lecturer_id, room_id, day_of_week, start_slot, end_slot, session_type, level, created_at)
		VALUES (:id, :timetable_id, :course_id, :group_id, :lecturer_id, :room_id, :day_of_week, :start_slot, :end_slot, :session_type, :level, now())`

	for i := range slots {
		if _, err := sqlx.NamedExecContext(ctx, tx, query, &slots[i]); err != nil {
			return fmt.Errorf("replace slots: insert: %w", err)
		}
	}
	return nil
}

// ListByTimetable returns every persisted slot for a timetable, ordered
// for display (day, then start slot).
func (r *SlotRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.PlacedSlot, error) {
	const query = `SELECT id, timetable_id, course_id, group_id, lecturer_id, room_id, day_of_week,
		start_slot, end_slot, session_type, level, created_at
		FROM placed_slots WHERE timetable_id = $1 ORDER BY day_of_week ASC, start_slot ASC`
	var out []models.PlacedSlot
	if err := r.db.SelectContext(ctx, &out, query, timetableID); err != nil {
		return nil, fmt.Errorf("list slots by timetable: %w", err)
	}
	return out, nil
}
