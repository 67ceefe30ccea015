package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/fokus/internal/tasks"
)

func newTasksCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage the task list",
	}
	cmd.AddCommand(newTasksListCmd(opts))
	cmd.AddCommand(newTasksAddCmd(opts))
	cmd.AddCommand(newTasksDoneCmd(opts))
	cmd.AddCommand(newTasksRmCmd(opts))
	cmd.AddCommand(newTasksEditCmd(opts))
	return cmd
}

func newTasksListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ts, err := opts.openTasks(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			list := ts.List()
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTasks(list))
			return nil
		},
	}
}

func renderTasks(list []tasks.Task) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Done", "Task", "Days", "Focus")
	for _, task := range list {
		done := ""
		if task.Completed {
			done = "x"
		}
		t.Row(strconv.FormatInt(task.ID, 10), done, task.Title, task.Days, task.FocusClock())
	}
	return t.String()
}

func newTasksAddCmd(opts *options) *cobra.Command {
	var days, focus string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ts, err := opts.openTasks(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			task, ok := ts.Add(cmd.Context(), strings.Join(args, " "), days, focus)
			if !ok {
				return errors.New("title is required")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s (%s)\n", task.ID, task.Title, task.FocusClock())
			return nil
		},
	}
	cmd.Flags().StringVar(&days, "days", "", "days to work on it, e.g. \"Mon, Wed\"")
	cmd.Flags().StringVar(&focus, "focus", "", "focus duration in minutes or MM:SS (default 25)")
	return cmd
}

func newTasksDoneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, ts, err := opts.openTasks(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if !ts.ToggleCompletion(cmd.Context(), id) {
				return fmt.Errorf("task %d not found", id)
			}
			task, _ := ts.Get(id)
			state := "open"
			if task.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d: %s (%s)\n", task.ID, task.Title, state)
			return nil
		},
	}
}

func newTasksRmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, ts, err := opts.openTasks(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if !ts.Remove(cmd.Context(), id) {
				return fmt.Errorf("task %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed task %d\n", id)
			return nil
		},
	}
}

func newTasksEditCmd(opts *options) *cobra.Command {
	var title, days, focus string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task; omitted flags keep their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, ts, err := opts.openTasks(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			task, ok := ts.Get(id)
			if !ok {
				return fmt.Errorf("task %d not found", id)
			}
			if !cmd.Flags().Changed("title") {
				title = task.Title
			}
			if !cmd.Flags().Changed("days") {
				days = task.Days
			}
			if !cmd.Flags().Changed("focus") {
				focus = task.FocusClock()
			}
			if !ts.Update(cmd.Context(), id, title, days, focus) {
				return fmt.Errorf("update task %d: title is required", id)
			}
			task, _ = ts.Get(id)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s (%s)\n", task.ID, task.Title, task.FocusClock())
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&days, "days", "", "new days")
	cmd.Flags().StringVar(&focus, "focus", "", "new focus duration in minutes or MM:SS")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
