package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/fokus/internal/tasks"
)

func ToCSV(list []tasks.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Title", "Days", "Focus (s)", "Focus", "Completed"}); err != nil {
		return err
	}

	for _, t := range list {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Days,
			strconv.Itoa(t.FocusDurationSeconds),
			t.FocusClock(),
			strconv.FormatBool(t.Completed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
