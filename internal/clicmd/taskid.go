package clicmd

import (
	"time"

	"github.com/google/uuid"
)

// GenerateTaskID returns a sortable task_id: a UTC timestamp prefix
// followed by a short random suffix, per §6 ("timestamp + short random
// suffix"). Lexicographic ordering of task_ids this package generates
// matches chronological order to one-second resolution; ids generated
// within the same second are ordered by their random suffix.
func GenerateTaskID() string {
	return time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
}
