package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sadopc/fokus/internal/store"
	"github.com/sadopc/fokus/internal/tasks"
)

func ToJSON(list []tasks.Task, sessions []store.PhaseEntry, path string) error {
	data, err := json.MarshalIndent(buildDocument(list, sessions), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
