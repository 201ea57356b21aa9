package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/campusforge/timetable-engine/internal/dto"
	"github.com/campusforge/timetable-engine/internal/models"
	"github.com/campusforge/timetable-engine/internal/repository"
	apierrors "github.com/campusforge/timetable-engine/pkg/errors"
	"github.com/campusforge/timetable-engine/pkg/grid"
	"github.com/campusforge/timetable-engine/pkg/response"
)

// TimetableHandler exposes the narrow container-row CRUD surface the
// original's routers/timetables.py also carries alongside generation:
// create, list, get, delete and activate. Full catalogue CRUD
// (courses/rooms/lecturers/groups upload) remains out of scope per
// spec.md §1.
type TimetableHandler struct {
	timetables *repository.TimetableRepository
	slots      *repository.SlotRepository
	validate   *validator.Validate
}

// NewTimetableHandler builds a TimetableHandler.
func NewTimetableHandler(timetables *repository.TimetableRepository, slots *repository.SlotRepository) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, slots: slots, validate: validator.New()}
}

// Create handles POST /timetables.
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apierrors.Clone(apierrors.ErrValidation, err.Error()))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, apierrors.Clone(apierrors.ErrValidation, err.Error()))
		return
	}

	half := models.AcademicHalf(req.AcademicHalf)
	if half == "" {
		half = models.AcademicHalfFirst
	}
	t := &models.Timetable{Name: req.Name, Semester: req.Semester, Year: req.Year, AcademicHalf: half}
	if err := h.timetables.Create(c.Request.Context(), t); err != nil {
		response.Error(c, apierrors.FromError(err))
		return
	}
	response.Created(c, toTimetableResponse(*t))
}

// List handles GET /timetables.
func (h *TimetableHandler) List(c *gin.Context) {
	items, err := h.timetables.List(c.Request.Context())
	if err != nil {
		response.Error(c, apierrors.FromError(err))
		return
	}
	out := make([]dto.TimetableResponse, 0, len(items))
	for _, t := range items {
		out = append(out, toTimetableResponse(t))
	}
	response.JSON(c, http.StatusOK, out, &models.Pagination{Page: 1, PageSize: len(out), Total: len(out)})
}

// Get handles GET /timetables/:id.
func (h *TimetableHandler) Get(c *gin.Context) {
	t, err := h.timetables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, apierrors.ErrNotFound)
		return
	}
	response.JSON(c, http.StatusOK, toTimetableResponse(t), nil)
}

// Slots handles GET /timetables/:id/slots.
func (h *TimetableHandler) Slots(c *gin.Context) {
	slots, err := h.slots.ListByTimetable(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, apierrors.FromError(err))
		return
	}
	out := make([]dto.SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, dto.SlotResponse{
			ID: s.ID, CourseID: s.CourseID, GroupID: s.GroupID, LecturerID: s.LecturerID,
			RoomID: s.RoomID, DayOfWeek: s.DayOfWeek, DayName: grid.DayName(s.DayOfWeek),
			StartSlot: s.StartSlot, EndSlot: s.EndSlot,
			StartTime: grid.SlotStart(s.StartSlot).Format("15:04"),
			EndTime:   grid.SlotEnd(s.EndSlot - 1).Format("15:04"),
			SessionType: s.SessionType, Level: s.Level,
		})
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Delete handles DELETE /timetables/:id.
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.timetables.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, apierrors.FromError(err))
		return
	}
	response.NoContent(c)
}

// Activate handles POST /timetables/:id/activate.
func (h *TimetableHandler) Activate(c *gin.Context) {
	if err := h.timetables.Activate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, apierrors.FromError(err))
		return
	}
	response.NoContent(c)
}

func toTimetableResponse(t models.Timetable) dto.TimetableResponse {
	out := dto.TimetableResponse{
		ID: t.ID, Name: t.Name, Semester: t.Semester, Year: t.Year,
		AcademicHalf: string(t.AcademicHalf), IsActive: t.IsActive, CreatedAt: t.CreatedAt,
	}
	if len(t.GenerationMetadata) > 0 {
		var meta map[string]any
		if err := json.Unmarshal(t.GenerationMetadata, &meta); err == nil {
			out.GenerationMetadata = meta
		}
	}
	return out
}
