package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewPathwayCmd создаёт группу команд для работы с pathways.
func NewPathwayCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pathway",
		Short: "Запуск и мониторинг pathways",
	}

	cmd.AddCommand(
		newPathwayRunCmd(clientFn, outputFn),
		newPathwayStatusCmd(clientFn, outputFn),
	)

	return cmd
}

func newPathwayRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var payloadStr string

	cmd := &cobra.Command{
		Use:   "run <definition.json>",
		Short: "Запустить pathway из JSON-файла определения",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			definition, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read definition file: %w", err)
			}
			if !json.Valid(definition) {
				return fmt.Errorf("definition file %s is not valid JSON", args[0])
			}

			var payload map[string]any
			if err := json.Unmarshal([]byte(payloadStr), &payload); err != nil {
				return fmt.Errorf("invalid payload JSON: %w", err)
			}

			resp, err := clientFn().ExecutePathway(ExecutePathwayRequest{
				Pathway: definition,
				Payload: payload,
			})
			if err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Pathway %s started", resp.PathwayID))
			outputFn().JSON(resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadStr, "payload", "{}", "Начальный JSON payload")
	return cmd
}

func newPathwayStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status <pathway-id>",
		Short: "Состояние запуска pathway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := clientFn().PathwayStatus(args[0])
			if err != nil {
				return err
			}

			headers := []string{"STEP", "CAPABILITY", "ACTION", "STATUS", "ATTEMPTS", "ERROR"}
			rows := make([][]string, 0, len(run.Steps))
			for _, s := range run.Steps {
				detail := s.Error
				if detail == "" {
					detail = s.Reason
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", s.StepIndex),
					s.CapabilityType,
					s.Action,
					s.Status,
					fmt.Sprintf("%d", s.Attempts),
					detail,
				})
			}

			if !outputFn().jsonMode {
				outputFn().Success(fmt.Sprintf("Pathway %s: %s", run.PathwayID, run.Status))
			}
			outputFn().Print(headers, rows, run)
			return nil
		},
	}
}
