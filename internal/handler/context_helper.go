package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/helper-roster/internal/middleware"
	"github.com/noah-isme/helper-roster/internal/models"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

// slotQuery reads an optional time-slot id query parameter.
func slotQuery(c *gin.Context, name string) (*models.TimeSlotID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !models.TimeSlotID(n).Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a slot id between 0 and %d", name, models.SlotsPerWeek-1))
	}
	slot := models.TimeSlotID(n)
	return &slot, nil
}

// boolQuery reads an optional boolean query parameter.
func boolQuery(c *gin.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be true or false", name))
	}
	return v, nil
}

func rosterMeta(c *gin.Context, r *models.Roster) map[string]interface{} {
	if r != nil {
		middleware.SetMeta(c, "run_id", r.RunID)
		middleware.SetMeta(c, "schema_version", r.SchemaVersion)
	}
	return middleware.ExtractMeta(c)
}
