package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewTaskCmd создаёт группу команд для работы с tasks.
func NewTaskCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Постановка и выполнение tasks",
	}

	cmd.AddCommand(
		newTaskSubmitCmd(clientFn, outputFn),
		newTaskExecCmd(clientFn, outputFn),
		newTaskShowCmd(clientFn, outputFn),
	)

	return cmd
}

// taskFlags — общие флаги submit и exec.
type taskFlags struct {
	capability string
	action     string
	payload    string
	priority   int
	timeout    int
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.capability, "capability", "", "Тип capability (business, job, developer)")
	cmd.Flags().StringVar(&f.action, "action", "", "Имя действия")
	cmd.Flags().StringVar(&f.payload, "payload", "{}", "JSON payload действия")
	cmd.Flags().IntVar(&f.priority, "priority", 0, "Приоритет 1-10")
	cmd.Flags().IntVar(&f.timeout, "timeout", 0, "Дедлайн в секундах")
	cmd.MarkFlagRequired("capability")
	cmd.MarkFlagRequired("action")
}

func (f *taskFlags) toRequest() (SubmitTaskRequest, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(f.payload), &payload); err != nil {
		return SubmitTaskRequest{}, fmt.Errorf("invalid payload JSON: %w", err)
	}

	return SubmitTaskRequest{
		CapabilityType: f.capability,
		Action:         f.action,
		Payload:        payload,
		Priority:       f.priority,
		TimeoutSec:     f.timeout,
	}, nil
}

func newTaskSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Поставить task в очередь",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.toRequest()
			if err != nil {
				return err
			}

			result, err := clientFn().SubmitTask(req)
			if err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Task %s queued", result.TaskID))
			outputFn().JSON(result)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newTaskExecCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Выполнить task синхронно и дождаться результата",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.toRequest()
			if err != nil {
				return err
			}

			result, err := clientFn().ExecuteTask(req)
			if err != nil {
				return err
			}

			outputFn().JSON(result)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newTaskShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Результат или состояние task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := clientFn().GetTask(args[0])
			if err != nil {
				return err
			}

			outputFn().JSON(result)
			return nil
		},
	}
}
