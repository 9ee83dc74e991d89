package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/agentboard/internal/engine"
	"github.com/roach88/agentboard/internal/fixture"
	"github.com/roach88/agentboard/internal/model"
)

// ToggleOptions holds flags for the toggle command.
type ToggleOptions struct {
	*RootOptions
	Actor string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <fixture.yaml>",
		Short: "Import agents and reference records",
		Long: `Import agents, documents, licenses, appointments, contracts and external
alerts from a YAML fixture file. Records are upserted by ID, so importing the
same file twice is safe.

Example:
  agentboard import ./agents.yaml --db ./agentboard.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fixture.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load fixture", err)
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				counts, err := fixture.Apply(ctx, a.store, f)
				if err != nil {
					return a.out.Fail("import failed", err)
				}
				return a.out.Render(counts, func(w io.Writer) {
					fmt.Fprintf(w, "%s Imported %d agents, %d documents, %d licenses, %d appointments, %d contracts, %d alerts\n",
						success(markDone), counts.Agents, counts.Documents, counts.Licenses,
						counts.Appointments, counts.Contracts, counts.Alerts)
				})
			})
		},
	}
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init <agent-id>",
		Short: "Create an agent's onboarding checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				items, err := a.engine.InitializeAgent(ctx, args[0])
				if err != nil {
					return a.out.Fail("init failed", err)
				}
				return a.out.Render(items, func(w io.Writer) {
					fmt.Fprintf(w, "%s Initialized %d checklist items for %s\n", success(markDone), len(items), highlight(args[0]))
					for _, item := range items {
						writeItem(w, item)
					}
				})
			})
		},
	}
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToggleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "toggle (<item-id> | <agent-id> <item-key>)",
		Short: "Flip a checklist item and award badges",
		Long: `Flip one checklist item between complete and incomplete, then resolve or
raise the matching alerts and award any badges the agent now qualifies for.

The item is addressed either by its record ID or by agent ID and item key.

Examples:
  agentboard toggle agent-1 w9_form --actor coordinator@example.com
  agentboard toggle 0190f3c2-8d7e-7b44-9c1a-3f0e2d8a1b55`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				var (
					res engine.ToggleResult
					err error
				)
				if len(args) == 1 {
					res, err = a.engine.ToggleItem(ctx, args[0], opts.Actor)
				} else {
					res, err = a.engine.ToggleItemByKey(ctx, args[0], args[1], opts.Actor)
				}
				if err != nil {
					return a.out.Fail("toggle failed", err)
				}
				return a.out.Render(res, func(w io.Writer) {
					state := "marked incomplete"
					if res.Completed {
						state = "completed"
					}
					fmt.Fprintf(w, "%s %s %s\n", highlight(res.Item.AgentID), res.Item.ItemName, state)
					writeDerived(w, res.Derived)
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Actor, "actor", defaultActor(), "who completed the item")

	return cmd
}

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <agent-id>",
		Short: "Re-run alert correlation and badge evaluation",
		Long: `Re-run alert correlation and badge evaluation for one agent without
changing the checklist. Use after importing new documents, licenses or
appointments, or periodically to raise overdue alerts. Refresh never resolves
alerts; only completing the matching item does.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				d, err := a.engine.Refresh(ctx, args[0])
				if err != nil {
					return a.out.Fail("refresh failed", err)
				}
				return a.out.Render(d, func(w io.Writer) {
					fmt.Fprintf(w, "%s refreshed\n", highlight(args[0]))
					writeDerived(w, d)
				})
			})
		},
	}
}

func writeDerived(w io.Writer, d engine.Derived) {
	for _, b := range d.BadgesAwarded {
		fmt.Fprintf(w, "  %s badge %s (+%d)\n", success("+"), b.BadgeName, b.Points)
	}
	for _, al := range d.AlertsResolved {
		fmt.Fprintf(w, "  %s resolved %s\n", success(markDone), al.AlertType)
	}
	for _, al := range d.AlertsRaised {
		fmt.Fprintf(w, "  %s raised %s %s\n", warning("!"), al.AlertType, muted(dueLabel(al)))
	}
	writeWarnings(w, d.Warnings)
}

func dueLabel(a model.Alert) string {
	if a.DueDate == nil {
		return ""
	}
	return "(due " + a.DueDate.Format("2006-01-02") + ")"
}

// defaultActor is the login name, falling back to "cli".
func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}
