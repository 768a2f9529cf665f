package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/models"
	"github.com/jawahar-singamsetty/retrivis.ai-client/internal/retry"
)

// newProjectsCmd creates the projects subcommand tree.
func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}

	var query string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			var projects []models.Project
			err = retry.Do(cmd.Context(), retry.DefaultConfig(), func(ctx context.Context) error {
				var err error
				projects, err = client.ListProjects(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(models.FilterProjects(projects, query))
		},
	}
	listCmd.Flags().StringVarP(&query, "query", "q", "", "Filter projects by name or description")

	var description string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			project, err := client.CreateProject(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			return printJSON(project)
		},
	}
	createCmd.Flags().StringVarP(&description, "description", "d", "", "Project description")

	deleteCmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := client.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}

	cmd.AddCommand(listCmd, createCmd, deleteCmd)
	return cmd
}
