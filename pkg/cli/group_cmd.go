package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGroupCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			group, err := rt.access.CreateGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created group %s\n", group.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a group and withdraw the access it granted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.access.DeleteGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted group %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "members <name>",
		Short: "List a group's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			members, err := rt.access.AllMembers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(members, "\n"))
			return nil
		},
	})

	var privilege string
	addProject := &cobra.Command{
		Use:   "add-project <group> <project-auth-id>",
		Short: "Make a project grantable through a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.access.AddProjectToGroup(cmd.Context(), args[0], args[1], privilege); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "group %s now grants %s on %s\n", args[0], privilege, args[1])
			return nil
		},
	}
	addProject.Flags().StringVar(&privilege, "privilege", "read", "privilege level (read, upload, admin)")
	cmd.AddCommand(addProject)

	return cmd
}
