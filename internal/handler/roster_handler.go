package handler

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/helper-roster/internal/models"
	"github.com/noah-isme/helper-roster/internal/service"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
	"github.com/noah-isme/helper-roster/pkg/response"
)

type rosterQueries interface {
	Current() (*models.Roster, error)
	ListStudents(filter service.StudentFilter) ([]models.Student, error)
	GetStudent(id string) (*models.Student, error)
	ListTeachers(filter service.TeacherFilter) ([]models.Teacher, error)
	GetTeacher(key string) (*models.Teacher, error)
	NewAssignmentBoard() (*models.AssignmentBoard, error)
}

type rosterExporter interface {
	Export(ctx context.Context, kind service.ExportKind, format string) (*service.ExportResult, error)
}

// RosterHandler serves the loaded roster read-only.
type RosterHandler struct {
	roster  rosterQueries
	exports rosterExporter
}

// NewRosterHandler constructs a RosterHandler.
func NewRosterHandler(roster rosterQueries, exports rosterExporter) *RosterHandler {
	return &RosterHandler{roster: roster, exports: exports}
}

// Summary godoc
// @Summary Current roster summary
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /roster [get]
func (h *RosterHandler) Summary(c *gin.Context) {
	current, err := h.roster.Current()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"summary":            service.Summarize(current),
		"duplicate_students": current.Stats.DuplicateStudents,
		"duplicate_teachers": current.Stats.DuplicateTeachers,
	}, rosterMeta(c, current))
}

// ListStudents godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param driver query bool false "Only drivers"
// @Param school query string false "School preference"
// @Param available_at query int false "Time-slot id (0-239)"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) {
	drivers, err := boolQuery(c, "driver")
	if err != nil {
		response.Error(c, err)
		return
	}
	slot, err := slotQuery(c, "available_at")
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.roster.ListStudents(service.StudentFilter{
		DriversOnly: drivers,
		School:      strings.TrimSpace(c.Query("school")),
		AvailableAt: slot,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	current, _ := h.roster.Current()
	meta := rosterMeta(c, current)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["count"] = len(students)
	response.JSON(c, http.StatusOK, students, meta)
}

// GetStudent godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *RosterHandler) GetStudent(c *gin.Context) {
	student, err := h.roster.GetStudent(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// ListTeachers godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Param school query string false "School id"
// @Param available_at query int false "Time-slot id (0-239)"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *RosterHandler) ListTeachers(c *gin.Context) {
	slot, err := slotQuery(c, "available_at")
	if err != nil {
		response.Error(c, err)
		return
	}
	teachers, err := h.roster.ListTeachers(service.TeacherFilter{
		School:      strings.TrimSpace(c.Query("school")),
		AvailableAt: slot,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	current, _ := h.roster.Current()
	meta := rosterMeta(c, current)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["count"] = len(teachers)
	response.JSON(c, http.StatusOK, teachers, meta)
}

// GetTeacher godoc
// @Summary Get teacher
// @Tags Teachers
// @Produce json
// @Param key path string true "Teacher identity key"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{key} [get]
func (h *RosterHandler) GetTeacher(c *gin.Context) {
	teacher, err := h.roster.GetTeacher(c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher)
}

// Assignments godoc
// @Summary Empty assignment state for the current roster
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /roster/assignments [get]
func (h *RosterHandler) Assignments(c *gin.Context) {
	board, err := h.roster.NewAssignmentBoard()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board)
}

// Export godoc
// @Summary Download the roster as CSV or PDF
// @Tags Roster
// @Produce text/csv
// @Produce application/pdf
// @Param kind query string false "students or teachers" default(students)
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /roster/export [get]
func (h *RosterHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	kind := service.ExportKind(c.DefaultQuery("kind", string(service.ExportStudents)))
	result, err := h.exports.Export(c.Request.Context(), kind, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", path.Base(result.Filename)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
