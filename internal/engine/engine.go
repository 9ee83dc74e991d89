package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/agentboard/internal/alert"
	"github.com/roach88/agentboard/internal/badge"
	"github.com/roach88/agentboard/internal/checklist"
	"github.com/roach88/agentboard/internal/leaderboard"
	"github.com/roach88/agentboard/internal/model"
	"github.com/roach88/agentboard/internal/stall"
	"github.com/roach88/agentboard/internal/store"
)

// Store is the record-store contract the engine runs against.
// Implemented by *store.Store.
type Store interface {
	checklist.Store
	alert.Store
	badge.Creator

	GetAgent(ctx context.Context, id string) (model.Agent, error)
	ListAgents(ctx context.Context, f store.Filter) ([]model.Agent, error)
	ListDocuments(ctx context.Context, f store.Filter) ([]model.Document, error)
	ListLicenses(ctx context.Context, f store.Filter) ([]model.License, error)
	ListAppointments(ctx context.Context, f store.Filter) ([]model.Appointment, error)
	ListContracts(ctx context.Context, f store.Filter) ([]model.Contract, error)

	ListChecklistItems(ctx context.Context, f store.Filter) ([]model.ChecklistItem, error)
	GetChecklistItem(ctx context.Context, id string) (model.ChecklistItem, error)
	GetChecklistItemByKey(ctx context.Context, agentID, itemKey string) (model.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, item model.ChecklistItem, wasCompleted bool) (model.ChecklistItem, error)

	ListBadges(ctx context.Context, f store.Filter) ([]model.Badge, error)
}

// Engine executes onboarding commands.
//
// Thread-safety: all methods are safe for concurrent use provided the Store,
// Clock and IDGenerator are.
type Engine struct {
	store    Store
	template *checklist.Template
	rules    []badge.Rule
	clock    Clock
	ids      IDGenerator
	analyzer stall.Analyzer

	stallThreshold int

	tracker    *checklist.Tracker
	correlator *alert.Correlator
	badges     *badge.Engine
	detector   *stall.Detector
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithClock sets the wall clock. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator sets the record ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithTemplate sets the checklist template. Default: checklist.DefaultTemplate().
func WithTemplate(t *checklist.Template) Option {
	return func(e *Engine) {
		e.template = t
	}
}

// WithRules replaces the badge table. Default: badge.Rules().
func WithRules(rules []badge.Rule) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithStallThreshold sets the idle days after which an agent is stalled.
//
// Default: stall.DefaultThresholdDays (7). Non-positive values keep the default.
func WithStallThreshold(days int) Option {
	return func(e *Engine) {
		e.stallThreshold = days
	}
}

// WithAnalyzer attaches an Analyzer that CheckStall consults for stalled agents.
func WithAnalyzer(a stall.Analyzer) Option {
	return func(e *Engine) {
		e.analyzer = a
	}
}

// New creates an Engine over s.
func New(s Store, opts ...Option) *Engine {
	e := &Engine{
		store:          s,
		clock:          SystemClock{},
		ids:            UUIDv7Generator{},
		stallThreshold: stall.DefaultThresholdDays,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.template == nil {
		e.template = checklist.DefaultTemplate()
	}
	if e.rules == nil {
		e.rules = badge.Rules()
	}

	e.tracker = checklist.NewTracker(s, e.template, e.ids.Generate)
	e.correlator = alert.NewCorrelator(s, e.template, e.clock.Now, e.ids.Generate)
	e.badges = badge.NewEngine(s, e.rules, e.clock.Now, e.ids.Generate)
	e.detector = stall.NewDetector(e.stallThreshold)
	return e
}

// Template returns the checklist template in use.
func (e *Engine) Template() *checklist.Template {
	return e.template
}

// Derived is the outcome of the correlation and badge passes that follow a
// mutation.
type Derived struct {
	BadgesAwarded  []model.Badge `json:"badges_awarded"`
	AlertsResolved []model.Alert `json:"alerts_resolved"`
	AlertsRaised   []model.Alert `json:"alerts_raised"`

	// Warnings describe derived writes that failed. They never undo the
	// mutation that triggered the pass.
	Warnings []string `json:"warnings"`
}

// ToggleResult is the outcome of ToggleItem.
type ToggleResult struct {
	Item      model.ChecklistItem `json:"item"`
	Completed bool                `json:"completed"`
	Derived
}

// StallResult is the outcome of CheckStall.
type StallResult struct {
	Report   stall.Report    `json:"report"`
	Analysis *stall.Analysis `json:"analysis,omitempty"`
	Warnings []string        `json:"warnings"`
}

// agent loads an agent, mapping a missing row to a CommandError.
func (e *Engine) agent(ctx context.Context, agentID string) (model.Agent, error) {
	a, err := e.store.GetAgent(ctx, agentID)
	if store.IsNotFound(err) {
		return model.Agent{}, agentNotFound(agentID, err)
	}
	if err != nil {
		return model.Agent{}, fmt.Errorf("load agent %s: %w", agentID, err)
	}
	return a, nil
}

// Snapshot assembles the read model for agentID.
func (e *Engine) Snapshot(ctx context.Context, agentID string) (model.Snapshot, error) {
	a, err := e.agent(ctx, agentID)
	if err != nil {
		return model.Snapshot{}, err
	}

	f := store.Filter{AgentID: agentID}
	snap := model.Snapshot{Agent: &a}

	if snap.ChecklistItems, err = e.store.ListChecklistItems(ctx, f); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot %s: %w", agentID, err)
	}
	if snap.Documents, err = e.store.ListDocuments(ctx, f); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot %s: %w", agentID, err)
	}
	if snap.Licenses, err = e.store.ListLicenses(ctx, f); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot %s: %w", agentID, err)
	}
	if snap.Appointments, err = e.store.ListAppointments(ctx, f); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot %s: %w", agentID, err)
	}
	if snap.Contracts, err = e.store.ListContracts(ctx, f); err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot %s: %w", agentID, err)
	}
	return snap, nil
}

// InitializeAgent creates the template checklist for agentID.
func (e *Engine) InitializeAgent(ctx context.Context, agentID string) ([]model.ChecklistItem, error) {
	if _, err := e.agent(ctx, agentID); err != nil {
		return nil, err
	}

	items, err := e.tracker.Initialize(ctx, agentID)
	if errors.Is(err, checklist.ErrAlreadyInitialized) {
		return nil, &CommandError{
			Code:    ErrCodeAlreadyInitialized,
			Message: "checklist already initialized",
			AgentID: agentID,
			Err:     err,
		}
	}
	if err != nil {
		return nil, err
	}

	slog.Info("checklist initialized",
		"agent_id", agentID,
		"items", len(items),
	)
	return items, nil
}

// ToggleItem flips one checklist item and runs the derived passes.
//
// A failure to read or write the item is returned as an error and nothing
// else runs. Once the item is stored, the result is always returned; derived
// failures appear in ToggleResult.Warnings.
func (e *Engine) ToggleItem(ctx context.Context, itemID, actor string) (ToggleResult, error) {
	item, err := e.store.GetChecklistItem(ctx, itemID)
	if store.IsNotFound(err) {
		return ToggleResult{}, itemNotFound("", itemID, err)
	}
	if err != nil {
		return ToggleResult{}, fmt.Errorf("toggle item: %w", err)
	}
	return e.toggle(ctx, item, actor)
}

// ToggleItemByKey is ToggleItem addressed by (agentID, itemKey).
func (e *Engine) ToggleItemByKey(ctx context.Context, agentID, itemKey, actor string) (ToggleResult, error) {
	item, err := e.store.GetChecklistItemByKey(ctx, agentID, itemKey)
	if store.IsNotFound(err) {
		return ToggleResult{}, itemNotFound(agentID, itemKey, err)
	}
	if err != nil {
		return ToggleResult{}, fmt.Errorf("toggle item: %w", err)
	}
	return e.toggle(ctx, item, actor)
}

func (e *Engine) toggle(ctx context.Context, item model.ChecklistItem, actor string) (ToggleResult, error) {
	next, completed := checklist.Toggle(item, actor, e.clock.Now())
	stored, err := e.store.UpdateChecklistItem(ctx, next, item.IsCompleted)
	if store.IsConflict(err) {
		return ToggleResult{}, &CommandError{
			Code:    ErrCodeConflict,
			Message: fmt.Sprintf("checklist item %q changed concurrently", item.ItemKey),
			AgentID: item.AgentID,
			Err:     err,
		}
	}
	if err != nil {
		return ToggleResult{}, fmt.Errorf("toggle item %s: %w", item.ItemKey, err)
	}

	slog.Info("checklist item toggled",
		"agent_id", stored.AgentID,
		"item_key", stored.ItemKey,
		"completed", completed,
		"actor", actor,
	)

	// Only a transition to completed may resolve alerts.
	completedKey := ""
	if completed {
		completedKey = stored.ItemKey
	}

	return ToggleResult{
		Item:      stored,
		Completed: completed,
		Derived:   e.react(ctx, stored.AgentID, completedKey),
	}, nil
}

// Refresh runs the derived passes for agentID without mutating the
// checklist. Callers use it after external changes such as a verified
// document or a completed license sync. No item transitioned, so Refresh
// raises overdue alerts but never resolves any.
func (e *Engine) Refresh(ctx context.Context, agentID string) (Derived, error) {
	if _, err := e.agent(ctx, agentID); err != nil {
		return Derived{}, err
	}
	return e.react(ctx, agentID, ""), nil
}

// react correlates alerts and then awards badges, each on a freshly read
// snapshot. completedKey names the item that just became completed, if any.
// Every failure becomes a warning.
func (e *Engine) react(ctx context.Context, agentID, completedKey string) Derived {
	d := Derived{
		BadgesAwarded:  []model.Badge{},
		AlertsResolved: []model.Alert{},
		AlertsRaised:   []model.Alert{},
		Warnings:       []string{},
	}
	warn := func(err error) {
		d.Warnings = append(d.Warnings, err.Error())
	}

	snap, err := e.Snapshot(ctx, agentID)
	if err != nil {
		slog.Warn("derived passes skipped", "agent_id", agentID, "error", err)
		warn(err)
		return d
	}

	res, err := e.correlator.Correlate(ctx, *snap.Agent, snap.ChecklistItems, completedKey)
	if err != nil {
		slog.Warn("alert correlation failed", "agent_id", agentID, "error", err)
		warn(err)
	} else {
		d.AlertsResolved = res.Resolved
		d.AlertsRaised = res.Raised
		for _, w := range res.Warnings {
			warn(w)
		}
	}

	// Badge rules see whatever landed since the correlation read.
	snap, err = e.Snapshot(ctx, agentID)
	if err != nil {
		slog.Warn("badge evaluation skipped", "agent_id", agentID, "error", err)
		warn(err)
		return d
	}

	existing, err := e.store.ListBadges(ctx, store.Filter{AgentID: agentID})
	if err != nil {
		slog.Warn("badge evaluation skipped", "agent_id", agentID, "error", err)
		warn(fmt.Errorf("list badges: %w", err))
		return d
	}
	out := e.badges.EvaluateAndAward(ctx, agentID, snap, existing)
	d.BadgesAwarded = out.Awarded
	for _, w := range out.Warnings {
		warn(w)
	}
	return d
}

// Progress returns overall and per-category progress for agentID.
func (e *Engine) Progress(ctx context.Context, agentID string) (checklist.Report, error) {
	if _, err := e.agent(ctx, agentID); err != nil {
		return checklist.Report{}, err
	}
	items, err := e.store.ListChecklistItems(ctx, store.Filter{AgentID: agentID})
	if err != nil {
		return checklist.Report{}, fmt.Errorf("progress: %w", err)
	}
	return checklist.Summarize(items), nil
}

// Checklist returns agentID's checklist items in template order.
func (e *Engine) Checklist(ctx context.Context, agentID string) ([]model.ChecklistItem, error) {
	if _, err := e.agent(ctx, agentID); err != nil {
		return nil, err
	}
	items, err := e.store.ListChecklistItems(ctx, store.Filter{AgentID: agentID})
	if err != nil {
		return nil, fmt.Errorf("checklist: %w", err)
	}
	return items, nil
}

// Badges returns agentID's badges, newest first.
func (e *Engine) Badges(ctx context.Context, agentID string) ([]model.Badge, error) {
	if _, err := e.agent(ctx, agentID); err != nil {
		return nil, err
	}
	badges, err := e.store.ListBadges(ctx, store.Filter{AgentID: agentID, Sort: "-earned_date"})
	if err != nil {
		return nil, fmt.Errorf("badges: %w", err)
	}
	return badges, nil
}

// Points returns the sum of agentID's badge points.
func (e *Engine) Points(ctx context.Context, agentID string) (int, error) {
	badges, err := e.Badges(ctx, agentID)
	if err != nil {
		return 0, err
	}
	return badge.TotalPoints(badges), nil
}

// Alerts returns agentID's alerts, newest first. openOnly limits the list to
// unresolved alerts.
func (e *Engine) Alerts(ctx context.Context, agentID string, openOnly bool) ([]model.Alert, error) {
	if _, err := e.agent(ctx, agentID); err != nil {
		return nil, err
	}
	alerts, err := e.store.ListAlerts(ctx, store.Filter{AgentID: agentID, Sort: "-created_date", Unresolved: openOnly})
	if err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}
	return alerts, nil
}

// CheckStall computes agentID's stall report. When an Analyzer is configured
// and the agent is stalled, its analysis is attached; an analyzer failure is a
// warning.
func (e *Engine) CheckStall(ctx context.Context, agentID string) (StallResult, error) {
	snap, err := e.Snapshot(ctx, agentID)
	if err != nil {
		return StallResult{}, err
	}

	res := StallResult{
		Report:   e.detector.Detect(*snap.Agent, snap.ChecklistItems, e.clock.Now()),
		Warnings: []string{},
	}
	if !res.Report.Stalled || e.analyzer == nil {
		return res, nil
	}

	analysis, err := e.analyzer.Analyze(ctx, snap, res.Report)
	if err != nil {
		slog.Warn("stall analysis failed", "agent_id", agentID, "error", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("stall analysis: %v", err))
		return res, nil
	}
	res.Analysis = &analysis
	return res, nil
}

// Leaderboard scores and ranks every agent.
//
// The agent, badge and checklist collections are loaded concurrently; the
// first failure cancels the others and is returned.
func (e *Engine) Leaderboard(ctx context.Context) ([]leaderboard.Entry, error) {
	var (
		agents []model.Agent
		badges []model.Badge
		items  []model.ChecklistItem
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agents, err = e.store.ListAgents(gctx, store.Filter{})
		return err
	})
	g.Go(func() error {
		var err error
		badges, err = e.store.ListBadges(gctx, store.Filter{})
		return err
	})
	g.Go(func() error {
		var err error
		items, err = e.store.ListChecklistItems(gctx, store.Filter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	badgesByAgent := make(map[string][]model.Badge)
	for _, b := range badges {
		badgesByAgent[b.AgentID] = append(badgesByAgent[b.AgentID], b)
	}
	itemsByAgent := make(map[string][]model.ChecklistItem)
	for _, item := range items {
		itemsByAgent[item.AgentID] = append(itemsByAgent[item.AgentID], item)
	}

	members := make([]leaderboard.Member, len(agents))
	for i, a := range agents {
		members[i] = leaderboard.Member{
			Agent:  a,
			Badges: badgesByAgent[a.ID],
			Items:  itemsByAgent[a.ID],
		}
	}

	entries := leaderboard.Build(members)
	slog.Debug("leaderboard built",
		"agents", len(entries),
		"elapsed", time.Since(start),
	)
	return entries, nil
}

// RankOf returns agentID's 1-based leaderboard position.
func (e *Engine) RankOf(ctx context.Context, agentID string) (int, error) {
	if _, err := e.agent(ctx, agentID); err != nil {
		return 0, err
	}
	entries, err := e.Leaderboard(ctx)
	if err != nil {
		return 0, err
	}
	return leaderboard.RankOf(agentID, entries), nil
}
