package detect

import (
	"runtime"
	"sort"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/archlint/archlint/internal/config"
	"github.com/archlint/archlint/internal/framework"
	"github.com/archlint/archlint/internal/rules"
)

// RunOptions filters and shapes a detector run.
type RunOptions struct {
	// AllDetectors forces every registered detector on.
	AllDetectors bool
	// Include, when non-empty, restricts the run to these ids.
	Include []string
	// Exclude removes these ids after all other selection.
	Exclude []string
	// OnDetectorDone, when set, is called after each detector finishes.
	OnDetectorDone func(id string, found int)
}

// ActiveDetectors computes the effective detector set: the --all flag forces
// everything; otherwise a base rule presence decides, then framework preset
// rules, then the detector's own default. Include/exclude lists filter last.
// The result is id-sorted.
func ActiveDetectors(cfg *config.Config, presets []*framework.Preset, opts RunOptions) []Info {
	include := toSet(opts.Include)
	exclude := toSet(opts.Exclude)

	var active []Info
	for _, info := range AllInfos() {
		if include != nil && !include[info.ID] {
			continue
		}
		if exclude[info.ID] {
			continue
		}
		if opts.AllDetectors || isEnabled(info, cfg, presets) {
			active = append(active, info)
		}
	}
	return active
}

func isEnabled(info Info, cfg *config.Config, presets []*framework.Preset) bool {
	if _, hasRule := cfg.Rules[info.ID]; hasRule {
		return rules.Resolve(cfg, info.ID, "").Enabled
	}

	// Later presets win, so walk them in reverse.
	for i := len(presets) - 1; i >= 0; i-- {
		rule, ok := presets[i].Rules[info.ID]
		if !ok {
			continue
		}
		if rule.IsShort() {
			return rule.Short != config.LevelOff
		}
		if rule.Enabled != nil {
			return *rule.Enabled
		}
		if rule.Severity != "" {
			return rule.Severity != config.LevelOff
		}
		return info.DefaultEnabled
	}

	return info.DefaultEnabled
}

// Run executes the active detectors against ctx on a bounded worker pool.
// Detectors are data-parallel over detectors, not files: each reads the
// shared context and emits its own smells. Results concatenate in
// detector-id order for determinism, then ignore comments filter each
// smell's primary location.
func Run(ctx *Context, opts RunOptions) ([]ArchSmell, error) {
	active := ActiveDetectors(ctx.Config, ctx.Presets(), opts)

	type result struct {
		id     string
		smells []ArchSmell
	}
	results := make([]result, len(active))

	var g errgroup.Group
	g.SetLimit(max(runtime.NumCPU()-1, 1))

	for i, info := range active {
		g.Go(func() error {
			detector, ok := Create(info.ID, ctx.Config)
			if !ok {
				return nil
			}
			smells := detector.Detect(ctx)
			results[i] = result{id: info.ID, smells: smells}
			if opts.OnDetectorDone != nil {
				opts.OnDetectorDone(info.ID, len(smells))
			}
			slog.Debug("detector finished", "id", info.ID, "smells", len(smells))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].id < results[j].id })

	var all []ArchSmell
	for _, r := range results {
		for _, smell := range r.smells {
			if suppressedByComment(ctx, r.id, &smell) {
				continue
			}
			all = append(all, smell)
		}
	}
	return all, nil
}

// suppressedByComment checks the smell's primary location against the
// in-source ignore directives.
func suppressedByComment(ctx *Context, detectorID string, smell *ArchSmell) bool {
	loc := smell.PrimaryLocation()
	if loc.File == "" {
		return false
	}
	parsed, ok := ctx.ParsedFiles[loc.File]
	if !ok {
		return false
	}
	return parsed.IsIgnored(loc.Line, detectorID)
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
