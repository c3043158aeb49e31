package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"team-journal/internal/models"
	"team-journal/internal/review"
)

func addReviewCommands(rootCmd *cobra.Command, app *App) {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Mentor review workflow",
		Long: `Review submitted trades.

Review decisions are recorded against a mentor profile, so these commands
need --as <mentor-profile-id>.`,
	}

	reviewCmd.AddCommand(newReviewQueueCmd(app))
	reviewCmd.AddCommand(newApproveCmd(app))
	reviewCmd.AddCommand(newReviseCmd(app))

	rootCmd.AddCommand(reviewCmd)
}

// mentorActor resolves --as and insists on a real profile.
func (app *App) mentorActor(ctx context.Context, cmd *cobra.Command) (models.Actor, error) {
	if id, _ := cmd.Flags().GetString("as"); id == "" {
		return models.Actor{}, fmt.Errorf("review commands need --as <mentor-profile-id>")
	}
	return app.actor(ctx, cmd)
}

func newReviewQueueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List trades waiting for review, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			svc, err := app.Service()
			if err != nil {
				return err
			}
			actor, err := app.mentorActor(ctx, cmd)
			if err != nil {
				return err
			}
			queue, err := svc.ReviewQueue(ctx, actor)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(queue)
			}
			if len(queue) == 0 {
				output.Success("Review queue is empty")
				return nil
			}
			output.Bold("%d trade(s) waiting", len(queue))
			table := NewTable(output, "ID", "Member", "Date", "Pair", "Outcome", "R", "Status", "Submitted")
			for _, t := range queue {
				table.AddRow(t.ID, t.UserID, t.TradeDate.String(), t.Pair, string(t.Outcome),
					output.FormatR(t.Result), FormatStatus(t), FormatDateTime(t.CreatedAt, app.location()))
			}
			table.Render()
			return nil
		},
	}
}

func newApproveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <trade-id>",
		Short: "Approve a trade with a 1-5 score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			in := review.Input{}
			if cmd.Flags().Changed("score") {
				score, _ := cmd.Flags().GetInt("score")
				in.Score = &score
			}
			in.Notes, _ = cmd.Flags().GetString("notes")

			svc, err := app.Service()
			if err != nil {
				return err
			}
			actor, err := app.mentorActor(ctx, cmd)
			if err != nil {
				return err
			}
			trade, err := svc.ReviewTrade(ctx, actor, args[0], in)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("Approved %s %s", trade.ID, FormatMentorScore(trade.MentorScore))
			return nil
		},
	}
	cmd.Flags().Int("score", 0, "mentor score from 1 to 5 (required)")
	cmd.Flags().String("notes", "", "review notes")
	return cmd
}

func newReviseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revise <trade-id>",
		Short: "Send a trade back to its owner for changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			notes, _ := cmd.Flags().GetString("notes")

			svc, err := app.Service()
			if err != nil {
				return err
			}
			actor, err := app.mentorActor(ctx, cmd)
			if err != nil {
				return err
			}
			trade, err := svc.RequestRevision(ctx, actor, args[0], notes)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Warning("Revision requested on %s", trade.ID)
			output.Dim("Notes: %s", trade.MentorNotes)
			return nil
		},
	}
	cmd.Flags().String("notes", "", "what needs to change (a default note is used when empty)")
	return cmd
}
