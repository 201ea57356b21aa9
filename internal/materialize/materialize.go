// Package materialize implements the Slot Materialiser: the final,
// transactional step that writes every PlacedSlot an orchestration run
// produced for one timetableId, and stamps the timetable row's
// generation_metadata. Activation (making a timetable the one active
// timetable) is kept a separate operation, exactly as
// routers/timetables.py keeps `generate_timetable_ws` and
// `activate_timetable` as two distinct endpoints.
package materialize

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/campusforge/timetable-engine/internal/models"
	apierrors "github.com/campusforge/timetable-engine/pkg/errors"
)

// SlotSink is the Persistence Sink's write surface: replacing a
// timetable's placed slots and stamping its generation metadata happen
// as one atomic operation, so a failure on either half leaves no
// partial timetable behind.
type SlotSink interface {
	ReplaceSlotsAndStamp(ctx context.Context, timetableID string, slots []models.PlacedSlot, metadata models.GenerationMetadata) error
}

// Materialize assigns ids to every slot and persists them together with
// generation_metadata = {generated: true, levels_processed: [...]} in a
// single transaction — the same metadata shape `save_timetable`/
// `generate_timetable_ws` leave behind on success, but written
// atomically with the slots themselves.
func Materialize(ctx context.Context, sink SlotSink, timetableID string, slots []models.PlacedSlot, levelsProcessed []int) error {
	stamped := make([]models.PlacedSlot, len(slots))
	for i, s := range slots {
		s.ID = uuid.NewString()
		s.TimetableID = timetableID
		stamped[i] = s
	}

	meta := models.GenerationMetadata{Generated: true, LevelsProcessed: levelsProcessed}
	if err := sink.ReplaceSlotsAndStamp(ctx, timetableID, stamped, meta); err != nil {
		return apierrors.Wrap(err, apierrors.ErrPersistence.Code, apierrors.ErrPersistence.Status, apierrors.ErrPersistence.Message)
	}
	return nil
}

// EncodeMetadata renders GenerationMetadata to the raw JSON form stored
// in Timetable.GenerationMetadata (types.JSONText).
func EncodeMetadata(meta models.GenerationMetadata) ([]byte, error) {
	return json.Marshal(meta)
}
