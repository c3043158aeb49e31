package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"team-journal/internal/models"
)

func addMemberCommands(rootCmd *cobra.Command, app *App) {
	membersCmd := &cobra.Command{
		Use:     "members",
		Aliases: []string{"member", "profiles"},
		Short:   "Manage team profiles",
	}

	membersCmd.AddCommand(newMembersListCmd(app))
	membersCmd.AddCommand(newMembersAddCmd(app))
	membersCmd.AddCommand(newMemberStatusCmd(app, "deactivate", false))
	membersCmd.AddCommand(newMemberStatusCmd(app, "reactivate", true))

	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(newTokenCmd(app))
}

func newMembersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			svc, err := app.Service()
			if err != nil {
				return err
			}
			actor, err := app.actor(ctx, cmd)
			if err != nil {
				return err
			}
			profiles, err := svc.ListProfiles(ctx, actor)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(profiles)
			}
			if len(profiles) == 0 {
				output.Info("No profiles yet. Add one with 'journal members add <name>'.")
				return nil
			}

			table := NewTable(output, "ID", "Name", "Role", "Status", "Joined")
			for _, p := range profiles {
				status := output.Green("active")
				if !p.IsActive {
					status = output.Red("inactive")
				}
				table.AddRow(p.ID, TruncateString(p.DisplayName, 24), string(p.Role), status,
					FormatDateTime(p.CreatedAt, app.location()))
			}
			table.Render()
			return nil
		},
	}
}

func newMembersAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <display-name>",
		Short: "Provision a new profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			roleFlag, _ := cmd.Flags().GetString("role")
			role := models.Role(roleFlag)
			if !role.Valid() {
				return fmt.Errorf("invalid role %q (use member or mentor)", roleFlag)
			}

			svc, err := app.Service()
			if err != nil {
				return err
			}
			profile, err := svc.ProvisionProfile(ctx, args[0], role)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(profile)
			}
			output.Success("Added %s %s", profile.Role, profile.DisplayName)
			output.Printf("  ID: %s\n", profile.ID)
			output.Dim("Issue an API token with 'journal token %s'", profile.ID)
			return nil
		},
	}
	cmd.Flags().String("role", string(models.RoleMember), "profile role (member or mentor)")
	return cmd
}

func newMemberStatusCmd(app *App, use string, active bool) *cobra.Command {
	short := "Deactivate a member (blocks new submissions)"
	if active {
		short = "Reactivate a member"
	}
	return &cobra.Command{
		Use:   use + " <profile-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			svc, err := app.Service()
			if err != nil {
				return err
			}
			actor, err := app.actor(ctx, cmd)
			if err != nil {
				return err
			}
			profile, err := svc.SetMemberActive(ctx, actor, args[0], active)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(profile)
			}
			if profile.IsActive {
				output.Success("%s is active", profile.DisplayName)
			} else {
				output.Warning("%s is inactive", profile.DisplayName)
			}
			return nil
		},
	}
}

func newTokenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "token <profile-id>",
		Short: "Issue an API bearer token for a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			svc, err := app.Service()
			if err != nil {
				return err
			}
			// Refuse to mint for unknown or deactivated profiles.
			actor, err := svc.ResolveActor(ctx, args[0])
			if err != nil {
				return err
			}
			if !actor.Active {
				return fmt.Errorf("profile %s is inactive", actor.UserID)
			}

			token, expires, err := app.tokens.Mint(actor.UserID)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"token":      token,
					"profile_id": actor.UserID,
					"role":       actor.Role,
					"expires_at": expires,
				})
			}
			output.Println(token)
			output.Dim("Expires %s", FormatDateTime(expires, app.location()))
			return nil
		},
	}
}
