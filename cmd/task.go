package cmd

import (
	"github.com/spf13/cobra"

	"section3/internal/bootstrap"
	"section3/internal/usecase/compliance"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Compliance task operations",
}

var taskStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Move a task to pending, in_progress or completed",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		taskID, _ := cmd.Flags().GetString("task")
		status, _ := cmd.Flags().GetString("status")

		out, err := svc.UpdateTaskStatus(cmd.Context(), compliance.UpdateTaskStatusInput{
			TaskID:  taskID,
			Status:  status,
			ActorID: actorFromFlags(cmd),
		})
		return printResult(cmd, out, err)
	}),
}

var taskAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a task to a user",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		taskID, _ := cmd.Flags().GetString("task")
		assignee, _ := cmd.Flags().GetString("assignee")

		out, err := svc.AssignTask(cmd.Context(), compliance.AssignTaskInput{
			TaskID:     taskID,
			AssigneeID: assignee,
			ActorID:    actorFromFlags(cmd),
		})
		return printResult(cmd, out, err)
	}),
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskStatusCmd, taskAssignCmd)

	taskStatusCmd.Flags().String("task", "", "Task ID")
	taskStatusCmd.Flags().String("status", "", "New status")
	taskStatusCmd.Flags().String("actor", "", "User ID recorded in the audit log")
	_ = taskStatusCmd.MarkFlagRequired("task")
	_ = taskStatusCmd.MarkFlagRequired("status")

	taskAssignCmd.Flags().String("task", "", "Task ID")
	taskAssignCmd.Flags().String("assignee", "", "User ID the task is assigned to")
	taskAssignCmd.Flags().String("actor", "", "User ID recorded in the audit log")
	_ = taskAssignCmd.MarkFlagRequired("task")
	_ = taskAssignCmd.MarkFlagRequired("assignee")
}
