package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProjectCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var authID string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			id := authID
			if id == "" {
				id = args[0]
			}
			project, err := rt.access.CreateProject(cmd.Context(), args[0], id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created project %s (auth id: %s)\n", project.Name, project.AuthID)
			return nil
		},
	}
	create.Flags().StringVar(&authID, "auth-id", "", "authorization identifier (defaults to the name)")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			projects, err := rt.access.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "AUTH_ID\tNAME")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\n", p.AuthID, p.Name)
			}
			return w.Flush()
		},
	})

	return cmd
}
