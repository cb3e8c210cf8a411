package detect

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/archlint/archlint/internal/config"
)

func init() {
	Register(Info{
		ID:             "shotgun_surgery",
		Name:           "Shotgun Surgery Detector",
		Description:    "Detects files that frequently change together",
		DefaultEnabled: false,
		IsDeep:         true,
		Category:       CategoryGlobal,
	}, func(_ *config.Config) Detector { return &shotgunSurgeryDetector{} })
}

type shotgunSurgeryDetector struct{}

func (d *shotgunSurgeryDetector) Info() Info {
	info, _ := InfoFor("shotgun_surgery")
	return info
}

type coChangeStats struct {
	totalCoChanged int
	commitCount    int
	coChangedWith  map[string]int
}

// Detect walks recent history counting which source files change in the
// same commits. When git is unavailable the detector skips silently.
func (d *shotgunSurgeryDetector) Detect(ctx *Context) []ArchSmell {
	rule := ctx.Rule("shotgun_surgery")
	if rule == nil || !ctx.Config.Git.Enabled {
		return nil
	}

	lookback := rule.IntOption("lookback_commits", 200)
	minFrequency := rule.IntOption("min_frequency", 3)
	minCoChanges := rule.IntOption("min_co_changes", 3)
	// Commits past the giant-commit file cutoff are refactors, not co-change
	// signal.
	giantCommitCutoff := rule.IntOption("giant_commit_cutoff", 50)

	stats := d.analyzeCoChanges(ctx, lookback, giantCommitCutoff)
	if len(stats) == 0 {
		return nil
	}

	var files []string
	for file := range stats {
		files = append(files, file)
	}
	sort.Strings(files)

	var smells []ArchSmell
	for _, relFile := range files {
		absFile := filepath.Join(ctx.ProjectPath, relFile)
		if _, tracked := ctx.FileSymbols[absFile]; !tracked {
			continue
		}
		fileRule := ctx.RuleForFile("shotgun_surgery", absFile)
		if fileRule == nil {
			continue
		}

		stat := stats[relFile]
		avgCoChanges := float64(stat.totalCoChanged) / float64(stat.commitCount)
		if stat.commitCount < minFrequency || avgCoChanges < float64(minCoChanges) {
			continue
		}

		companions := d.topCompanions(ctx, stat, minFrequency)

		smells = append(smells, ArchSmell{
			Kind:     KindShotgunSurgery,
			Severity: fileRule.Severity,
			Files:    append([]string{absFile}, companions...),
			Metrics: []Metric{
				NumMetric("count", float64(stat.commitCount)),
				NumMetric("avgCoChanges", avgCoChanges),
			},
			Details: Details{AvgCoChanges: avgCoChanges, Count: stat.commitCount},
		})
	}
	return smells
}

func (d *shotgunSurgeryDetector) topCompanions(ctx *Context, stat *coChangeStats, minFrequency int) []string {
	type companion struct {
		file  string
		count int
	}
	var companions []companion
	for rel, count := range stat.coChangedWith {
		abs := filepath.Join(ctx.ProjectPath, rel)
		if count < minFrequency {
			continue
		}
		if _, tracked := ctx.FileSymbols[abs]; !tracked {
			continue
		}
		companions = append(companions, companion{file: abs, count: count})
	}
	sort.Slice(companions, func(i, j int) bool {
		if companions[i].count != companions[j].count {
			return companions[i].count > companions[j].count
		}
		return companions[i].file < companions[j].file
	})
	if len(companions) > 5 {
		companions = companions[:5]
	}
	result := make([]string, len(companions))
	for i, c := range companions {
		result[i] = c.file
	}
	return result
}

func (d *shotgunSurgeryDetector) analyzeCoChanges(ctx *Context, lookback, giantCommitCutoff int) map[string]*coChangeStats {
	repo, err := git.PlainOpenWithOptions(ctx.ProjectPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}
	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		return nil
	}
	defer iter.Close()

	stats := map[string]*coChangeStats{}
	commits := 0

	_ = iter.ForEach(func(commit *object.Commit) error {
		if commits >= lookback {
			return storer.ErrStop
		}
		commits++

		changed := changedSourceFiles(commit)
		if len(changed) < 2 || len(changed) >= giantCommitCutoff {
			return nil
		}

		for _, file := range changed {
			entry := stats[file]
			if entry == nil {
				entry = &coChangeStats{coChangedWith: map[string]int{}}
				stats[file] = entry
			}
			entry.commitCount++
			entry.totalCoChanged += len(changed) - 1
			for _, other := range changed {
				if other != file {
					entry.coChangedWith[other]++
				}
			}
		}
		return nil
	})

	return stats
}

// changedSourceFiles diffs a commit against its first parent and keeps the
// TS/JS sources.
func changedSourceFiles(commit *object.Commit) []string {
	if commit.NumParents() == 0 {
		return nil
	}
	parent, err := commit.Parent(0)
	if err != nil {
		return nil
	}
	commitTree, err := commit.Tree()
	if err != nil {
		return nil
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil
	}
	changes, err := object.DiffTree(parentTree, commitTree)
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var files []string
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		if name == "" || seen[name] || !isSourceFile(name) {
			continue
		}
		seen[name] = true
		files = append(files, name)
	}
	return files
}

func isSourceFile(name string) bool {
	switch strings.TrimPrefix(filepath.Ext(name), ".") {
	case "ts", "tsx", "js", "jsx":
		return true
	}
	return false
}
