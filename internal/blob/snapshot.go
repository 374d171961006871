package blob

import (
	"time"

	"github.com/zxcat/rustic/internal/ids"
)

// Snapshot is a named root referring to a top-level tree blob (glossary:
// "Snapshot").
type Snapshot struct {
	ID       ids.ID
	Time     time.Time
	Tree     ids.ID
	Hostname string
	Paths    []string
}
