package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/services"
)

func parseUser(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, WrapExitError(ExitCommandError, "invalid --user", fmt.Errorf("%q is not a user uuid", raw))
	}
	return id, nil
}

// engineError reports an aggregate failure through the formatter and fails the command.
func engineError(f *OutputFormatter, err error) error {
	code := string(domainagg.CodeOf(err))
	if code == "" {
		code = string(domainagg.CodeInternal)
	}
	_ = f.Error(code, err.Error())
	return WrapExitError(ExitFailure, "goal engine", err)
}

type migrateResult struct {
	Status string `json:"status"`
}

func (r migrateResult) renderText(w io.Writer) { fmt.Fprintf(w, "schema %s\n", r.Status) }

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the goal tables",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the engine runs the migration.
			return withSession(cmd, opts, func(context.Context, *Session) error {
				return formatter(opts, cmd).Success(migrateResult{Status: "up to date"})
			})
		},
	}
}

type fireResult struct {
	Trigger          string         `json:"trigger"`
	ActionsCompleted []string       `json:"actions_completed"`
	AllComplete      bool           `json:"all_complete"`
	GoalsUpdated     []string       `json:"goals_updated"`
	WeekStart        string         `json:"week_start,omitempty"`
	Counts           map[string]int `json:"counts,omitempty"`
}

func (r fireResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "trigger %s\n", r.Trigger)
	fmt.Fprintf(w, "  baseline: %d completed %v (all complete: %t)\n", len(r.ActionsCompleted), r.ActionsCompleted, r.AllComplete)
	fmt.Fprintf(w, "  weekly:   %d updated in week %s\n", len(r.GoalsUpdated), r.WeekStart)
	for _, id := range r.GoalsUpdated {
		fmt.Fprintf(w, "    %s = %d\n", id, r.Counts[id])
	}
}

func newFireCommand(opts *RootOptions) *cobra.Command {
	var user, trigger string
	var by int
	cmd := &cobra.Command{
		Use:   "fire",
		Short: "Run a trigger through both trackers and wait for the result",
		Example: `  goalsctl fire --user 5b0d... --trigger profile_completed
  goalsctl fire --user 5b0d... --trigger job_application_logged --by 2`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			if by < 0 {
				return WrapExitError(ExitCommandError, "invalid --by", fmt.Errorf("must not be negative, got %d", by))
			}
			return withSession(cmd, opts, func(ctx context.Context, s *Session) error {
				f := formatter(opts, cmd)
				res, err := s.Goals.Dispatcher.FireSync(ctx, services.TriggerEvent{
					UserID:      userID,
					Trigger:     trigger,
					IncrementBy: by,
				})
				if err != nil {
					return engineError(f, err)
				}
				return f.Success(fireResult{
					Trigger:          strings.ToLower(strings.TrimSpace(trigger)),
					ActionsCompleted: nonNil(res.Baseline.ActionIDs),
					AllComplete:      res.Baseline.AllComplete,
					GoalsUpdated:     nonNil(res.Weekly.GoalIDs),
					WeekStart:        res.Weekly.WeekStart,
					Counts:           res.Weekly.Counts,
				})
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (uuid)")
	cmd.Flags().StringVar(&trigger, "trigger", "", "trigger name")
	cmd.Flags().IntVar(&by, "by", 0, "weekly increment (0 means 1)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("trigger")
	return cmd
}

type statusResult struct{ domainagg.BaselineStatus }

func (r statusResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "baseline %d/%d complete (all complete: %t)\n", r.CompletedActions, r.TotalActions, r.AllComplete)
	if r.Plan != nil {
		fmt.Fprintf(w, "plan: %s, %s\n", r.Plan.TargetRole, r.Plan.Timeline)
	}
	section := ""
	for _, a := range r.Actions {
		if a.SectionTitle != section {
			section = a.SectionTitle
			fmt.Fprintf(w, "  %s\n", section)
		}
		mark := " "
		if a.IsCompleted {
			mark = "x"
		}
		fmt.Fprintf(w, "    [%s] %s  %s\n", mark, a.ActionID, a.Label)
	}
}

func newStatusCommand(opts *RootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a user's baseline checklist",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *Session) error {
				f := formatter(opts, cmd)
				status, err := s.Goals.Baseline.GetStatus(ctx, userID)
				if err != nil {
					return engineError(f, err)
				}
				return f.Success(statusResult{status})
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (uuid)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

type progressResult struct{ domainagg.WeeklyProgress }

func (r progressResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "week of %s\n", r.WeekStart)
	for _, g := range r.Goals {
		done := ""
		if g.IsComplete {
			done = " done"
		}
		fmt.Fprintf(w, "  %-28s %d/%d%s\n", g.GoalID, g.CurrentCount, g.TargetCount, done)
	}
}

func newProgressCommand(opts *RootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show a user's weekly goals for the current week",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *Session) error {
				f := formatter(opts, cmd)
				progress, err := s.Goals.Weekly.GetProgress(ctx, userID)
				if err != nil {
					return engineError(f, err)
				}
				return f.Success(progressResult{progress})
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (uuid)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// planFile has the same shape as the onboarding completion request.
type planFile struct {
	Plan           goals.GeneratedPlan   `json:"plan"`
	ConfirmedGoals []goals.ConfirmedGoal `json:"confirmed_goals"`
	TargetRole     string                `json:"target_role"`
	Timeline       string                `json:"timeline"`
}

type materializeResult struct {
	BaselineActionCount int        `json:"baseline_action_count"`
	WeeklyGoalCount     int        `json:"weekly_goal_count"`
	WeekStart           string     `json:"week_start"`
	TargetDate          *time.Time `json:"target_date,omitempty"`
}

func (r materializeResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "materialized %d baseline actions and %d weekly goals (week of %s)\n",
		r.BaselineActionCount, r.WeeklyGoalCount, r.WeekStart)
	if r.TargetDate != nil {
		fmt.Fprintf(w, "target date %s\n", r.TargetDate.Format("2006-01-02"))
	}
}

func readPlanFile(path string) (planFile, error) {
	var pf planFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return pf, WrapExitError(ExitCommandError, "read --plan", err)
	}
	if err := json.Unmarshal(raw, &pf); err != nil {
		return pf, WrapExitError(ExitCommandError, "parse --plan", err)
	}
	return pf, nil
}

func newMaterializeCommand(opts *RootOptions) *cobra.Command {
	var user, planPath string
	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "Replace a user's tracking state with a generated plan",
		Long: `Replace a user's baseline checklist and weekly goals with the plan in --plan.

The file is JSON with the fields plan, confirmed_goals, target_role and timeline.
Existing completions are discarded; the audit trail is kept.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			pf, err := readPlanFile(planPath)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *Session) error {
				f := formatter(opts, cmd)
				res, err := s.Goals.Onboarding.Materialize(ctx, domainagg.MaterializeInput{
					UserID:         userID,
					Plan:           pf.Plan,
					ConfirmedGoals: pf.ConfirmedGoals,
					TargetRole:     pf.TargetRole,
					Timeline:       pf.Timeline,
				})
				if err != nil {
					return engineError(f, err)
				}
				return f.Success(materializeResult{
					BaselineActionCount: res.BaselineActionCount,
					WeeklyGoalCount:     res.WeeklyGoalCount,
					WeekStart:           res.WeekStart,
					TargetDate:          res.TargetDate,
				})
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (uuid)")
	cmd.Flags().StringVar(&planPath, "plan", "", "path to the plan JSON file")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

type eventsResult struct {
	Events []*goals.GoalEventLog `json:"events"`
}

func (r eventsResult) renderText(w io.Writer) {
	for _, ev := range r.Events {
		fmt.Fprintf(w, "%s  %-32s %-28s %s\n", ev.CreatedAt.UTC().Format(time.RFC3339), ev.EventType, ev.GoalID, string(ev.Metadata))
	}
}

func newEventsCommand(opts *RootOptions) *cobra.Command {
	var user string
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show a user's goal audit trail, newest first",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *Session) error {
				f := formatter(opts, cmd)
				rows, err := s.Goals.Events.ListEvents(ctx, userID, limit)
				if err != nil {
					return engineError(f, err)
				}
				return f.Success(eventsResult{Events: rows})
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (uuid)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of events")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

type triggerEntry struct {
	Trigger         string   `json:"trigger"`
	BaselineActions []string `json:"baseline_actions,omitempty"`
	WeeklyGoals     []string `json:"weekly_goals,omitempty"`
}

type triggersResult struct {
	Triggers []triggerEntry `json:"triggers"`
}

func (r triggersResult) renderText(w io.Writer) {
	for _, t := range r.Triggers {
		var parts []string
		if len(t.BaselineActions) > 0 {
			parts = append(parts, "baseline: "+strings.Join(t.BaselineActions, ", "))
		}
		if len(t.WeeklyGoals) > 0 {
			parts = append(parts, "weekly: "+strings.Join(t.WeeklyGoals, ", "))
		}
		fmt.Fprintf(w, "%-36s %s\n", t.Trigger, strings.Join(parts, "; "))
	}
}

func newTriggersCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "triggers",
		Short: "List the trigger registry",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.Registry()
			if err != nil {
				return WrapExitError(ExitCommandError, "load trigger registry", err)
			}
			out := triggersResult{Triggers: []triggerEntry{}}
			for _, name := range reg.Triggers() {
				out.Triggers = append(out.Triggers, triggerEntry{
					Trigger:         name,
					BaselineActions: reg.BaselineActions(name),
					WeeklyGoals:     reg.WeeklyGoals(name),
				})
			}
			return formatter(opts, cmd).Success(out)
		},
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
