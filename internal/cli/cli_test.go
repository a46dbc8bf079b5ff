package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/careercoach-backend/internal/app"
	repotest "github.com/yungbote/careercoach-backend/internal/data/repos/testutil"
	"github.com/yungbote/careercoach-backend/internal/domain/goals/triggers"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

// sqliteOpener opens a fresh engine over one shared database per test.
func sqliteOpener(t *testing.T) Opener {
	t.Helper()
	db := repotest.DB(t)
	return openerFor(db)
}

func openerFor(db *gorm.DB) Opener {
	return func(ctx context.Context) (*Session, error) {
		goals := app.NewGoals(app.GoalsDeps{
			DB:       db,
			Log:      logger.Nop(),
			Registry: triggers.Default(),
			Location: time.UTC,
		})
		return &Session{Goals: goals, Close: goals.Dispatcher.Close}, nil
	}
}

func run(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand(&RootOptions{Open: open})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writePlan(t *testing.T) string {
	t.Helper()
	body := map[string]any{
		"plan": map[string]any{
			"summary": "Move into backend engineering",
			"baselineActions": []map[string]any{
				{"title": "Profile", "actions": []map[string]any{
					{"id": "complete-profile", "label": "Complete your profile"},
					{"id": "upload-headshot", "label": "Upload a headshot"},
				}},
				{"title": "Resume", "actions": []map[string]any{
					{"id": "upload-resume", "label": "Upload your resume"},
				}},
				{"title": "Applications", "actions": []map[string]any{
					{"id": "log-first-application", "label": "Log your first application"},
				}},
			},
			"weeklyGoals": map[string]any{"description": "Apply and network every week"},
		},
		"confirmed_goals": []map[string]any{
			{"goalId": "weekly-applications", "label": "Apply to jobs", "target": 5},
			{"goalId": "weekly-networking", "label": "Reach out", "target": 2},
		},
		"target_role": "Backend Engineer",
		"timeline":    "3_months",
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func decode(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(&RootOptions{})
	assert.Equal(t, "goalsctl", cmd.Use)
	for _, name := range []string{"migrate", "fire", "status", "progress", "materialize", "events", "triggers"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, nil, "triggers", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidUser(t *testing.T) {
	opened := false
	open := func(context.Context) (*Session, error) {
		opened = true
		return nil, errors.New("unexpected open")
	}
	_, err := run(t, open, "status", "--user", "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.False(t, opened, "flag validation should happen before the engine opens")
}

func TestOpenFailure(t *testing.T) {
	open := func(context.Context) (*Session, error) { return nil, errors.New("db down") }
	_, err := run(t, open, "migrate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "db down")
}

func TestTriggersListsRegistryWithoutDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand(&RootOptions{Registry: func() (*triggers.Registry, error) { return triggers.Default(), nil }})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"triggers", "--format", "json"})
	require.NoError(t, cmd.Execute())

	resp := decode(t, buf.String())
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	list := data["triggers"].([]any)
	assert.Len(t, list, len(triggers.Default().Triggers()))

	found := false
	for _, raw := range list {
		entry := raw.(map[string]any)
		if entry["trigger"] == "job_application_logged" {
			found = true
			assert.Equal(t, []any{"log-first-application"}, entry["baseline_actions"])
			assert.Equal(t, []any{"weekly-applications"}, entry["weekly_goals"])
		}
	}
	assert.True(t, found)
}

func TestEngineRoundTrip(t *testing.T) {
	open := sqliteOpener(t)
	user := uuid.New().String()
	plan := writePlan(t)

	out, err := run(t, open, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	out, err = run(t, open, "materialize", "--user", user, "--plan", plan, "--format", "json")
	require.NoError(t, err)
	resp := decode(t, out)
	data := resp.Data.(map[string]any)
	assert.EqualValues(t, 4, data["baseline_action_count"])
	assert.EqualValues(t, 2, data["weekly_goal_count"])
	assert.NotEmpty(t, data["target_date"])

	out, err = run(t, open, "fire", "--user", user, "--trigger", " Profile_Completed ", "--format", "json")
	require.NoError(t, err)
	data = decode(t, out).Data.(map[string]any)
	assert.Equal(t, "profile_completed", data["trigger"])
	assert.ElementsMatch(t, []any{"complete-profile", "upload-headshot"}, data["actions_completed"])
	assert.Equal(t, false, data["all_complete"])

	out, err = run(t, open, "fire", "--user", user, "--trigger", "job_application_logged", "--by", "7", "--format", "json")
	require.NoError(t, err)
	data = decode(t, out).Data.(map[string]any)
	assert.Equal(t, []any{"log-first-application"}, data["actions_completed"])

	out, err = run(t, open, "progress", "--user", user)
	require.NoError(t, err)
	assert.Contains(t, out, "weekly-applications")
	assert.Contains(t, out, "5/5 done", "increment is clamped at the target")
	assert.Contains(t, out, "0/2")

	out, err = run(t, open, "status", "--user", user)
	require.NoError(t, err)
	assert.Contains(t, out, "baseline 3/4 complete")
	assert.Contains(t, out, "[x] complete-profile")
	assert.Contains(t, out, "[x] log-first-application")
	assert.Contains(t, out, "[ ] upload-resume")

	out, err = run(t, open, "events", "--user", user, "--format", "json")
	require.NoError(t, err)
	events := decode(t, out).Data.(map[string]any)["events"].([]any)
	types := map[string]int{}
	for _, raw := range events {
		types[raw.(map[string]any)["event_type"].(string)]++
	}
	assert.Equal(t, 1, types["plan_created"])
	assert.Equal(t, 2, types["baseline_action_completed"], "one entry per fire that completed actions")
}

func TestFireUnknownTriggerIsNoop(t *testing.T) {
	open := sqliteOpener(t)
	user := uuid.New().String()
	out, err := run(t, open, "fire", "--user", user, "--trigger", "not_a_trigger")
	require.NoError(t, err)
	assert.Contains(t, out, "baseline: 0 completed")
	assert.Contains(t, out, "weekly:   0 updated")
}

func TestUsageErrorsExitWithCommandError(t *testing.T) {
	for _, args := range [][]string{
		{"status"},
		{"status", "--user", uuid.New().String(), "--bogus"},
		{"triggers", "extra"},
	} {
		_, err := run(t, nil, args...)
		require.Error(t, err, "%v", args)
		assert.Equal(t, ExitCommandError, GetExitCode(err), "%v", args)
	}
}

func TestFireNegativeIncrement(t *testing.T) {
	_, err := run(t, nil, "fire", "--user", uuid.New().String(), "--trigger", "job_application_logged", "--by", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMaterializeBadPlanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := run(t, nil, "materialize", "--user", uuid.New().String(), "--plan", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, strings.Contains(err.Error(), "parse --plan"))
}

func TestEngineFailureReportsCode(t *testing.T) {
	db := repotest.SQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	out, err := run(t, openerFor(db), "status", "--user", uuid.New().String(), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decode(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.Code)
}
