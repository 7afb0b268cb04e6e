package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gatecheck/internal/domain"
)

func newUserCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd(dbPath))
	cmd.AddCommand(newUserDeleteCmd(dbPath))
	cmd.AddCommand(newUserListCmd(dbPath))
	cmd.AddCommand(newUserInfoCmd(dbPath))
	cmd.AddCommand(newUserGrantCmd(dbPath))
	cmd.AddCommand(newUserGroupsCmd(dbPath))
	return cmd
}

func newUserCreateCmd(dbPath *string) *cobra.Command {
	var (
		email string
		role  string
	)
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			user, err := rt.access.CreateUser(cmd.Context(), &domain.CreateUserRequest{
				Username: args[0],
				Email:    email,
				Role:     role,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (role: %s)\n", user.Username, user.Role())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", "user", "role (user or admin)")
	return cmd
}

func newUserDeleteCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user account and all of its access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.access.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
			return nil
		},
	}
}

func newUserListCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			users, err := rt.access.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tROLE\tEMAIL")
			for _, u := range users {
				email := ""
				if u.Email != nil {
					email = *u.Email
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Role(), email)
			}
			return w.Flush()
		},
	}
}

func newUserInfoCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "info <username>",
		Short: "Show a user's groups and effective project access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			info, err := rt.access.GetUserInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "username: %s\n", info.Username)
			fmt.Fprintf(out, "role:     %s\n", info.Role)
			if info.Email != nil {
				fmt.Fprintf(out, "email:    %s\n", *info.Email)
			}
			fmt.Fprintf(out, "groups:   %s\n", strings.Join(info.Groups, ", "))

			authIDs := make([]string, 0, len(info.ProjectAccess))
			for authID := range info.ProjectAccess {
				authIDs = append(authIDs, authID)
			}
			sort.Strings(authIDs)
			fmt.Fprintln(out, "projects:")
			for _, authID := range authIDs {
				fmt.Fprintf(out, "  %s: %s\n", authID, strings.Join(info.ProjectAccess[authID], ", "))
			}
			return nil
		},
	}
}

func newUserGrantCmd(dbPath *string) *cobra.Command {
	var privilege string
	cmd := &cobra.Command{
		Use:   "grant <username> <project-auth-id>",
		Short: "Grant a user direct access to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.access.GrantProjectAccess(cmd.Context(), args[0], args[1], privilege); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %s %s on %s\n", args[0], privilege, args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&privilege, "privilege", "read", "privilege level (read, upload, admin)")
	return cmd
}

func newUserGroupsCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage a user's group memberships",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <username> <group>...",
		Short: "Add a user to groups",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.access.AddUserToGroups(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s\n", args[0], strings.Join(args[1:], ", "))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <username> <group>...",
		Short: "Remove a user from groups",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.access.RemoveUserFromGroups(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s from %s\n", args[0], strings.Join(args[1:], ", "))
			return nil
		},
	})
	return cmd
}
