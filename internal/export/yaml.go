package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/fokus/internal/store"
	"github.com/sadopc/fokus/internal/tasks"
)

func ToYAML(list []tasks.Task, sessions []store.PhaseEntry, path string) error {
	data, err := yaml.Marshal(buildDocument(list, sessions))
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yaml file: %w", err)
	}
	return nil
}
