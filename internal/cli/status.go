package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCmd создаёт команду сводки состояния ядра.
func NewStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Сводка состояния оркестратора",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := clientFn().MetricsSummary()
			if err != nil {
				return err
			}

			headers := []string{"METRIC", "VALUE"}
			rows := [][]string{
				{"registered nodes", fmt.Sprintf("%d", summary.RegisteredNodes)},
				{"pending tasks", fmt.Sprintf("%d", summary.PendingTasks)},
				{"active tasks", fmt.Sprintf("%d", summary.ActiveTasks)},
				{"completed tasks", fmt.Sprintf("%d", summary.CompletedTasks)},
				{"active pathways", fmt.Sprintf("%d", summary.ActivePathways)},
				{"schedules", fmt.Sprintf("%d", summary.Schedules)},
			}

			outputFn().Print(headers, rows, summary)
			return nil
		},
	}
}
