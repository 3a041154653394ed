package roster

import (
	"strings"

	"github.com/noah-isme/helper-roster/internal/models"
)

// StudentKey normalizes a raw student id the way version derives student
// identities, so lookups match stored records.
func StudentKey(version models.SchemaVersion, raw string) string {
	id := strings.TrimSpace(raw)
	if version == models.SchemaLegacy {
		return id
	}
	return strings.ReplaceAll(id, "_", "")
}

// TeacherKey normalizes a raw teacher key. Current keys are e-mail
// addresses and compare case-insensitively.
func TeacherKey(version models.SchemaVersion, raw string) string {
	key := strings.TrimSpace(raw)
	if version == models.SchemaLegacy {
		return key
	}
	return strings.ToLower(key)
}
