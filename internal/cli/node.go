package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewNodeCmd создаёт группу команд для работы с nodes.
func NewNodeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Управление worker nodes",
	}

	cmd.AddCommand(
		newNodeListCmd(clientFn, outputFn),
		newNodeShowCmd(clientFn, outputFn),
		newNodeRemoveCmd(clientFn, outputFn),
		newNodeHealthCmd(clientFn, outputFn),
	)

	return cmd
}

func newNodeListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Список зарегистрированных nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := clientFn().ListNodes()
			if err != nil {
				return err
			}

			headers := []string{"NODE ID", "CAPABILITY", "STATUS", "TARGET", "LAST HEARTBEAT"}
			rows := make([][]string, 0, len(nodes))
			for _, n := range nodes {
				rows = append(rows, []string{
					n.NodeID,
					n.CapabilityType,
					n.Status,
					n.InvocationTarget,
					n.LastHeartbeat,
				})
			}

			outputFn().Print(headers, rows, nodes)
			return nil
		},
	}
}

func newNodeShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show <node-id>",
		Short: "Сведения о node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := clientFn().GetNode(args[0])
			if err != nil {
				return err
			}

			outputFn().JSON(node)
			return nil
		},
	}
}

func newNodeRemoveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <node-id>",
		Short: "Удалить node из реестра",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().UnregisterNode(args[0]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Node %s removed", args[0]))
			return nil
		},
	}
}

func newNodeHealthCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Отчёт о живости nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := clientFn().NodesHealth()
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(reports))
			for id := range reports {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			headers := []string{"NODE ID", "HEALTH", "UPTIME (S)", "LAST HEARTBEAT"}
			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				r := reports[id]
				rows = append(rows, []string{
					r.NodeID,
					r.Status,
					fmt.Sprintf("%.0f", r.UptimeSeconds),
					r.LastHeartbeat,
				})
			}

			outputFn().Print(headers, rows, reports)
			return nil
		},
	}
}
