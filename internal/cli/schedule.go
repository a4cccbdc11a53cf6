package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewScheduleCmd создаёт группу команд для работы со schedules.
func NewScheduleCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Управление периодическими запусками pathways",
	}

	cmd.AddCommand(
		newScheduleListCmd(clientFn, outputFn),
		newScheduleCreateCmd(clientFn, outputFn),
		newScheduleShowCmd(clientFn, outputFn),
		newScheduleDeleteCmd(clientFn, outputFn),
		newScheduleEnableCmd(clientFn, outputFn, true),
		newScheduleEnableCmd(clientFn, outputFn, false),
	)

	return cmd
}

func newScheduleListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Список schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			schedules, err := clientFn().ListSchedules()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "TRIGGER", "ENABLED", "NEXT DUE"}
			rows := make([][]string, 0, len(schedules))
			for _, s := range schedules {
				trigger := s.CronExpr
				if trigger == "" {
					trigger = fmt.Sprintf("every %ds", s.IntervalSec)
				}
				rows = append(rows, []string{
					s.ID,
					s.Name,
					trigger,
					fmt.Sprintf("%t", s.Enabled),
					s.NextDueAt,
				})
			}

			outputFn().Print(headers, rows, schedules)
			return nil
		},
	}
}

func newScheduleCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "create <definition.json>",
		Short: "Создать schedule из JSON-файла определения",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			definition, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read definition file: %w", err)
			}
			if !json.Valid(definition) {
				return fmt.Errorf("definition file %s is not valid JSON", args[0])
			}

			schedule, err := clientFn().CreateSchedule(definition)
			if err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Schedule %s created", schedule.ID))
			outputFn().JSON(schedule)
			return nil
		},
	}
}

func newScheduleShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show <schedule-id>",
		Short: "Сведения о schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := clientFn().GetSchedule(args[0])
			if err != nil {
				return err
			}

			outputFn().JSON(schedule)
			return nil
		},
	}
}

func newScheduleDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <schedule-id>",
		Short: "Удалить schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteSchedule(args[0]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Schedule %s deleted", args[0]))
			return nil
		},
	}
}

func newScheduleEnableCmd(clientFn func() *Client, outputFn func() *Output, enable bool) *cobra.Command {
	use, short, done := "enable <schedule-id>", "Включить schedule", "enabled"
	if !enable {
		use, short, done = "disable <schedule-id>", "Выключить schedule", "disabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().SetScheduleEnabled(args[0], enable); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Schedule %s %s", args[0], done))
			return nil
		},
	}
}
