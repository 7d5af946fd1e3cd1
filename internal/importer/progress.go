package importer

import (
	"github.com/matheus3301/chatvault/internal/status"
)

// Progress is the payload of "import.progress" and "delete.progress"
// events. Percent is an integer 0-100 computed per stage.
type Progress struct {
	Stage     status.Stage
	Processed int
	Total     int
	Percent   int
}

func progressOf(stage status.Stage, processed, total int) Progress {
	p := Progress{Stage: stage, Processed: processed, Total: total}
	if total <= 0 {
		p.Percent = 100
		return p
	}
	p.Percent = processed * 100 / total
	if p.Percent > 100 {
		p.Percent = 100
	}
	return p
}
