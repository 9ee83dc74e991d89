package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/agentboard/internal/badge"
	"github.com/roach88/agentboard/internal/checklist"
	"github.com/roach88/agentboard/internal/leaderboard"
	"github.com/roach88/agentboard/internal/model"
)

// AlertsOptions holds flags for the alerts command.
type AlertsOptions struct {
	*RootOptions
	All bool
}

// LeaderboardOptions holds flags for the leaderboard command.
type LeaderboardOptions struct {
	*RootOptions
	Top int
}

// ChecklistView is the checklist command's JSON payload.
type ChecklistView struct {
	AgentID  string                `json:"agent_id"`
	Progress checklist.Progress    `json:"progress"`
	Items    []model.ChecklistItem `json:"items"`
}

// BadgesView is the badges command's JSON payload.
type BadgesView struct {
	AgentID string        `json:"agent_id"`
	Points  int           `json:"points"`
	Badges  []model.Badge `json:"badges"`
}

// NewChecklistCommand creates the checklist command.
func NewChecklistCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checklist <agent-id>",
		Short: "Show an agent's checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				items, err := a.engine.Checklist(ctx, args[0])
				if err != nil {
					return a.out.Fail("checklist failed", err)
				}
				view := ChecklistView{AgentID: args[0], Progress: checklist.ComputeProgress(items), Items: items}
				return a.out.Render(view, func(w io.Writer) {
					fmt.Fprintf(w, "%s %d/%d complete\n", highlight(args[0]), view.Progress.Completed, view.Progress.Total)
					var current model.Category
					for _, item := range items {
						if item.Category != current {
							current = item.Category
							fmt.Fprintf(w, "%s\n", categoryLabel(current))
						}
						writeItem(w, item)
					}
				})
			})
		},
	}
}

// NewProgressCommand creates the progress command.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <agent-id>",
		Short: "Show overall and per-category progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				report, err := a.engine.Progress(ctx, args[0])
				if err != nil {
					return a.out.Fail("progress failed", err)
				}
				return a.out.Render(report, func(w io.Writer) {
					fmt.Fprintf(w, "%s %s %3d%% (%d/%d)\n", highlight(args[0]),
						progressBar(report.Overall.Percent), report.Overall.Percent,
						report.Overall.Completed, report.Overall.Total)
					for _, c := range report.Categories {
						fmt.Fprintf(w, "  %-16s %s %3d%% (%d/%d)\n", categoryLabel(c.Category),
							progressBar(c.Percent), c.Percent, c.Completed, c.Total)
					}
				})
			})
		},
	}
}

// NewBadgesCommand creates the badges command.
func NewBadgesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "badges <agent-id>",
		Short: "List earned badges and total points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				badges, err := a.engine.Badges(ctx, args[0])
				if err != nil {
					return a.out.Fail("badges failed", err)
				}
				view := BadgesView{AgentID: args[0], Points: badge.TotalPoints(badges), Badges: badges}
				return a.out.Render(view, func(w io.Writer) {
					fmt.Fprintf(w, "%s %d points\n", highlight(args[0]), view.Points)
					if len(badges) == 0 {
						fmt.Fprintln(w, muted("  no badges yet"))
					}
					for _, b := range badges {
						name := b.BadgeName
						if name == "" {
							name = badgeLabel(b.BadgeType)
						}
						fmt.Fprintf(w, "  %s %-22s %4d  %s\n", success("★"), name, b.Points,
							muted(b.EarnedDate.Format("2006-01-02")))
					}
				})
			})
		},
	}
}

// NewAlertsCommand creates the alerts command.
func NewAlertsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AlertsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "alerts <agent-id>",
		Short: "List an agent's alerts",
		Long: `List an agent's alerts, newest first. Only open alerts are shown unless
--all is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				alerts, err := a.engine.Alerts(ctx, args[0], !opts.All)
				if err != nil {
					return a.out.Fail("alerts failed", err)
				}
				return a.out.Render(alerts, func(w io.Writer) {
					if len(alerts) == 0 {
						fmt.Fprintf(w, "%s no alerts\n", highlight(args[0]))
						return
					}
					for _, al := range alerts {
						state := warning("open")
						if al.IsResolved {
							state = success("resolved")
						}
						fmt.Fprintf(w, "%-8s %-8s %-32s %s %s\n", severityLabel(al.Severity), state,
							al.AlertType, al.Title, muted(dueLabel(al)))
					}
				})
			})
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "include resolved alerts")

	return cmd
}

// NewStallCommand creates the stall command.
func NewStallCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stall <agent-id>",
		Short: "Check whether an agent's onboarding has stalled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				res, err := a.engine.CheckStall(ctx, args[0])
				if err != nil {
					return a.out.Fail("stall check failed", err)
				}
				return a.out.Render(res, func(w io.Writer) {
					r := res.Report
					if r.Stalled {
						fmt.Fprintf(w, "%s %s stalled: no progress for %d days (threshold %d)\n",
							failure(markFail), highlight(r.AgentID), r.DaysSinceProgress, r.ThresholdDays)
					} else {
						fmt.Fprintf(w, "%s %s on track: last progress %d days ago\n",
							success(markDone), highlight(r.AgentID), r.DaysSinceProgress)
					}
					fmt.Fprintf(w, "  %d%% complete, %d days since start\n", r.ProgressPercent, r.DaysSinceStart)
					writeWarnings(w, res.Warnings)
				})
			})
		},
	}
}

// NewLeaderboardCommand creates the leaderboard command.
func NewLeaderboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LeaderboardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank agents by badge points and progress",
		Long: `Rank agents by total score: badge points plus five points per progress
percent. Ties are broken by agent ID.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				entries, err := a.engine.Leaderboard(ctx)
				if err != nil {
					return a.out.Fail("leaderboard failed", err)
				}
				top := a.cfg.LeaderboardTop
				if cmd.Flags().Changed("top") {
					top = opts.Top
				}
				entries = leaderboard.Top(entries, top)

				return a.out.Render(entries, func(w io.Writer) {
					if len(entries) == 0 {
						fmt.Fprintln(w, "No agents.")
						return
					}
					fmt.Fprintf(w, "%-4s %-24s %6s %7s %8s %6s\n", "#", "AGENT", "BADGES", "POINTS", "PROGRESS", "SCORE")
					for i, e := range entries {
						name := e.AgentName
						if name == "" {
							name = e.AgentID
						}
						fmt.Fprintf(w, "%-4d %-24s %6d %7d %7d%% %6s\n", i+1, name, e.BadgeCount, e.Points,
							e.ProgressPercent, highlight(fmt.Sprint(e.TotalScore)))
					}
				})
			})
		},
	}

	cmd.Flags().IntVar(&opts.Top, "top", 0, "show only the first N agents (0 for all; default from config)")

	return cmd
}
