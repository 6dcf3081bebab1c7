package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/service"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "List users and manage roles",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(i do.Injector) error {
			users, err := do.MustInvoke[*service.AdminService](i).ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(users)
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, u.Username, u.Email, string(u.Role), u.CreatedAt.Format("2006-01-02")})
			}
			return printTable(os.Stdout, []string{"ID", "USERNAME", "EMAIL", "ROLE", "JOINED"}, rows)
		})
	},
}

var userSetRoleCmd = &cobra.Command{
	Use:   "set-role <email|id> <admin|moderator|member>",
	Short: "Change a user's role",
	Long: `Change a user's role. The last remaining admin cannot be demoted.

Examples:
  readinglogctl user set-role ada@example.com moderator
  readinglogctl user set-role user-V1StGXR8_Z5jdHi6 admin`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := domain.Role(strings.ToLower(args[1]))
		if !role.Valid() {
			return fmt.Errorf("unknown role %q", args[1])
		}
		return withServices(func(i do.Injector) error {
			admin := do.MustInvoke[*service.AdminService](i)
			userID, err := resolveUser(cmd.Context(), admin, args[0])
			if err != nil {
				return err
			}
			user, err := admin.SetUserRole(cmd.Context(), userID, role)
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", user.Email, user.Role)
			return nil
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <email|id>",
	Short: "Delete a user with their lists, reviews and collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(i do.Injector) error {
			admin := do.MustInvoke[*service.AdminService](i)
			userID, err := resolveUser(cmd.Context(), admin, args[0])
			if err != nil {
				return err
			}
			if err := admin.DeleteUser(cmd.Context(), userID); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userListCmd, userSetRoleCmd, userDeleteCmd)
}

// resolveUser accepts either an email address or a user ID.
func resolveUser(ctx context.Context, admin *service.AdminService, ref string) (string, error) {
	if !strings.Contains(ref, "@") {
		return ref, nil
	}
	user, err := admin.GetUserByEmail(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("look up %s: %w", ref, err)
	}
	return user.ID, nil
}
