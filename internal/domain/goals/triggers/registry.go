// Package triggers maps application events to the baseline actions and weekly
// goals they advance. A Registry is immutable once loaded and is handed to each
// consumer explicitly.
package triggers

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// EnvOverride names a YAML file that replaces the embedded tables.
const EnvOverride = "GOAL_TRIGGERS_YAML"

//go:embed triggers.yaml
var triggersFS embed.FS

// ErrInvalidRegistry wraps every parse/validation failure.
var ErrInvalidRegistry = errors.New("invalid trigger registry")

var triggerNameRe = regexp.MustCompile(`^[a-z0-9_]{2,64}$`)

type document struct {
	Baseline map[string][]string `yaml:"baseline"`
	Weekly   map[string][]string `yaml:"weekly"`
}

type Registry struct {
	baseline map[string][]string
	weekly   map[string][]string
}

// Parse builds a registry from a YAML document.
func Parse(raw []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistry, err)
	}
	if len(doc.Baseline) == 0 && len(doc.Weekly) == 0 {
		return nil, fmt.Errorf("%w: no triggers defined", ErrInvalidRegistry)
	}
	baseline, err := normalizeTable("baseline", doc.Baseline)
	if err != nil {
		return nil, err
	}
	weekly, err := normalizeTable("weekly", doc.Weekly)
	if err != nil {
		return nil, err
	}
	return &Registry{baseline: baseline, weekly: weekly}, nil
}

func normalizeTable(name string, in map[string][]string) (map[string][]string, error) {
	out := make(map[string][]string, len(in))
	for trigger, ids := range in {
		key := Normalize(trigger)
		if !triggerNameRe.MatchString(key) {
			return nil, fmt.Errorf("%w: %s trigger %q is not a valid event name", ErrInvalidRegistry, name, trigger)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w: %s trigger %q defined twice", ErrInvalidRegistry, name, key)
		}
		seen := make(map[string]bool, len(ids))
		clean := make([]string, 0, len(ids))
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id == "" {
				return nil, fmt.Errorf("%w: %s trigger %q has an empty id", ErrInvalidRegistry, name, key)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			clean = append(clean, id)
		}
		if len(clean) == 0 {
			return nil, fmt.Errorf("%w: %s trigger %q maps to nothing", ErrInvalidRegistry, name, key)
		}
		out[key] = clean
	}
	return out, nil
}

// Load reads the registry from path, or from the embedded tables when path is empty.
func Load(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		raw, err := triggersFS.ReadFile("triggers.yaml")
		if err != nil {
			return nil, fmt.Errorf("read embedded triggers: %w", err)
		}
		return Parse(raw)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(raw)
}

// LoadFromEnv honours GOAL_TRIGGERS_YAML and falls back to the embedded tables.
func LoadFromEnv() (*Registry, error) {
	return Load(os.Getenv(EnvOverride))
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry built from the embedded tables.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("embedded trigger registry: %v", err))
		}
		defaultReg = reg
	})
	return defaultReg
}

// Normalize canonicalizes an event name the way emitters are expected to send it.
func Normalize(trigger string) string {
	return strings.ToLower(strings.TrimSpace(trigger))
}

// BaselineActions returns the action ids a trigger completes. Unknown triggers map to nothing.
func (r *Registry) BaselineActions(trigger string) []string {
	if r == nil {
		return nil
	}
	return clone(r.baseline[Normalize(trigger)])
}

// WeeklyGoals returns the weekly goal ids a trigger advances. Unknown triggers map to nothing.
func (r *Registry) WeeklyGoals(trigger string) []string {
	if r == nil {
		return nil
	}
	return clone(r.weekly[Normalize(trigger)])
}

// Known reports whether the trigger participates in either table.
func (r *Registry) Known(trigger string) bool {
	if r == nil {
		return false
	}
	key := Normalize(trigger)
	_, inBaseline := r.baseline[key]
	_, inWeekly := r.weekly[key]
	return inBaseline || inWeekly
}

// Triggers lists every known trigger, sorted.
func (r *Registry) Triggers() []string {
	if r == nil {
		return nil
	}
	set := make(map[string]struct{}, len(r.baseline)+len(r.weekly))
	for k := range r.baseline {
		set[k] = struct{}{}
	}
	for k := range r.weekly {
		set[k] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Size reports entry counts of the baseline and weekly tables.
func (r *Registry) Size() (baseline, weekly int) {
	if r == nil {
		return 0, 0
	}
	return len(r.baseline), len(r.weekly)
}

func clone(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
