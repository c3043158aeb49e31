package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"team-journal/internal/journal"
	"team-journal/internal/models"
	"team-journal/internal/risk"
	"team-journal/pkg/utils"
)

func addInsightCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRiskCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newLeaderboardCmd(app))
	rootCmd.AddCommand(newTeamCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))
}

func newRiskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "risk <profile-id>",
		Short: "Show today's risk state for a member",
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
			daily, err := svc.DailyRiskFor(ctx, actor, args[0])
			if err != nil {
				return err
			}
			resetsAt := svc.NextReset()

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"risk":      daily,
					"limit_r":   risk.LockThresholdR,
					"resets_at": resetsAt,
				})
			}
			output.Bold("Daily risk for %s (%s)", args[0], daily.Date)
			output.RiskBanner(daily, FormatDuration(resetsAt.Sub(app.Clock.Now())))
			return nil
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Performance statistics",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "user <profile-id>",
		Short: "Approved-trade stats with session and profiling breakdowns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			overview, err := app.userOverview(cmd, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(overview)
			}
			showUserOverview(output, overview, FormatDuration(overview.NextReset.Sub(app.Clock.Now())))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "monthly <profile-id>",
		Short: "Month-by-month results across all trades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			overview, err := app.userOverview(cmd, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(overview.Monthly)
			}
			if len(overview.Monthly) == 0 {
				output.Info("No trades logged")
				return nil
			}
			table := NewTable(output, "Month", "Trades", "Win Rate", "Total R")
			for _, m := range overview.Monthly {
				table.AddRow(m.Month, strconv.Itoa(m.TradeCount),
					FormatWinRate(m.WinRate, m.TradeCount), output.FormatR(m.TotalR))
			}
			table.Render()
			return nil
		},
	})

	return cmd
}

func (app *App) userOverview(cmd *cobra.Command, userID string) (*journal.UserOverview, error) {
	ctx, cancel := commandContext()
	defer cancel()

	svc, err := app.Service()
	if err != nil {
		return nil, err
	}
	actor, err := app.actor(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return svc.UserOverview(ctx, actor, userID)
}

func showUserOverview(output *Output, o *journal.UserOverview, resetsIn string) {
	s := o.Stats
	output.Bold("%s (%s)", o.Profile.DisplayName, o.Profile.Role)
	output.Printf("  Approved trades: %d  (%d pending review)\n", s.TotalTrades, s.PendingCount)
	output.Printf("  Win rate:        %s\n", FormatWinRate(s.WinRate, s.TotalTrades))
	output.Printf("  W / L / BE:      %d / %d / %d\n", s.Wins, s.Losses, s.BreakEvens)
	output.Printf("  Total R:         %s\n", output.FormatR(s.TotalR))
	if s.ScoredTrades > 0 {
		output.Printf("  Mentor score:    %s over %d trade(s)\n", utils.FormatScore(s.AvgScore), s.ScoredTrades)
	}
	output.Println()

	output.Bold("By session")
	sessions := NewTable(output, "Session", "Trades", "Win Rate", "Total R")
	for _, row := range o.Sessions {
		sessions.AddRow(string(row.Session), strconv.Itoa(row.TradeCount),
			FormatWinRate(row.WinRate, row.TradeCount), output.FormatR(row.TotalR))
	}
	sessions.Render()
	output.Println()

	output.Bold("By profiling")
	profilings := NewTable(output, "Profiling", "Trades", "Win Rate", "Total R")
	for _, row := range o.Profilings {
		profilings.AddRow(string(row.Profiling), strconv.Itoa(row.Count),
			FormatWinRate(row.WinRate, row.Count), output.FormatR(row.TotalR))
	}
	profilings.Render()
	output.Println()

	output.RiskBanner(o.Risk, resetsIn)
}

func newLeaderboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank members by approved total R",
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
			entries, err := svc.Leaderboard(ctx, actor)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(entries)
			}
			table := NewTable(output, "#", "Member", "Trades", "Win Rate", "Total R")
			for _, e := range entries {
				table.AddRow(strconv.Itoa(e.Rank), TruncateString(e.DisplayName, 24),
					strconv.Itoa(e.TotalTrades), FormatWinRate(e.WinRate, e.TotalTrades), output.FormatR(e.TotalR))
			}
			table.Render()
			return nil
		},
	}
}

func newTeamCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "team",
		Short: "Mentor overview of today's team activity",
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
			overview, err := svc.TeamOverview(ctx, actor)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(overview)
			}
			team := overview.Team
			output.Bold("Team on %s", team.Date)
			output.Printf("  Members:         %d\n", team.TotalMembers)
			output.Printf("  Today's trades:  %d\n", team.TodayTrades)
			output.Printf("  Team R today:    %s\n", output.FormatR(team.TeamTotalR))
			output.Printf("  Team win rate:   %s\n", utils.FormatPercent(team.TeamWinRate))
			output.Printf("  Pending reviews: %d\n", team.PendingReviews)
			if team.LockedMembers > 0 {
				output.Warning("  Locked members:  %d", team.LockedMembers)
			}
			output.Println()

			table := NewTable(output, "Member", "Status", "Trades", "Win Rate", "Total R", "Today")
			for _, m := range overview.Members {
				status := "active"
				switch {
				case !m.IsActive:
					status = output.DimText("inactive")
				case m.IsLocked:
					status = output.Red("LOCKED")
				}
				table.AddRow(TruncateString(m.DisplayName, 24), status, strconv.Itoa(m.Stats.TotalTrades),
					FormatWinRate(m.Stats.WinRate, m.Stats.TotalTrades), output.FormatR(m.Stats.TotalR), output.FormatR(m.TodayR))
			}
			table.Render()
			return nil
		},
	}
}

func newTradesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Browse journal entries",
	}

	listCmd := &cobra.Command{
		Use:   "list <profile-id>",
		Short: "List a member's trades, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext()
			defer cancel()

			opts := journal.ListOptions{UserID: args[0]}
			opts.Limit, _ = cmd.Flags().GetInt("limit")
			if cmd.Flags().Changed("reviewed") {
				reviewed, _ := cmd.Flags().GetBool("reviewed")
				opts.Reviewed = &reviewed
			}
			if session, _ := cmd.Flags().GetString("session"); session != "" {
				opts.Session = models.Session(session)
				if !opts.Session.Valid() {
					return fmt.Errorf("invalid session %q", session)
				}
			}

			svc, err := app.Service()
			if err != nil {
				return err
			}
			actor, err := app.actor(ctx, cmd)
			if err != nil {
				return err
			}
			trades, err := svc.ListTrades(ctx, actor, opts)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found")
				return nil
			}
			showTrades(output, trades)
			return nil
		},
	}
	listCmd.Flags().Bool("reviewed", false, "only reviewed (true) or unreviewed (false) trades")
	listCmd.Flags().String("session", "", "filter by session")
	listCmd.Flags().Int("limit", 50, "maximum number of trades")

	cmd.AddCommand(listCmd)
	return cmd
}

func showTrades(output *Output, trades []models.Trade) {
	table := NewTable(output, "ID", "Date", "Session", "Pair", "Outcome", "R", "Status", "Score", "Tags")
	for _, t := range trades {
		table.AddRow(t.ID, t.TradeDate.String(), string(t.Session), t.Pair, string(t.Outcome),
			output.FormatR(t.Result), FormatStatus(t), FormatMentorScore(t.MentorScore),
			TruncateString(FormatTags(t.Tags), 20))
	}
	table.Render()
}
