// Package churn counts how often each file changed in recent history. It is
// the analyzer's only window into git: the detectors receive a ready-made
// map and never touch the repository themselves.
package churn

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Provider computes churn maps for a project. A Provider on a directory
// without a repository is valid and produces empty maps.
type Provider struct {
	repo    *git.Repository
	workdir string
}

// NewProvider discovers the repository containing root.
func NewProvider(root string) *Provider {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return &Provider{}
	}
	workdir := root
	if wt, err := repo.Worktree(); err == nil {
		workdir = wt.Filesystem.Root()
	}
	return &Provider{repo: repo, workdir: workdir}
}

// Available reports whether a repository was found.
func (p *Provider) Available() bool { return p.repo != nil }

// Head returns the current HEAD hash, or empty without a repository.
func (p *Provider) Head() string {
	if p.repo == nil {
		return ""
	}
	head, err := p.repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}

// Churn returns commits-touching-file counts for the given files within the
// lookback period ("90d", "6m", "1y", or "all"). Files are absolute paths;
// every requested file appears in the result, zero-valued when untouched.
func (p *Provider) Churn(files []string, period string) (map[string]int, error) {
	result := make(map[string]int, len(files))
	byRepoPath := make(map[string]string, len(files))
	for _, f := range files {
		result[f] = 0
		if rel, err := filepath.Rel(p.workdir, f); err == nil {
			byRepoPath[filepath.ToSlash(rel)] = f
		}
	}
	if p.repo == nil {
		return result, nil
	}

	var since *time.Time
	if cutoff, ok := parsePeriod(period); ok {
		since = &cutoff
	}

	iter, err := p.repo.Log(&git.LogOptions{Since: since})
	if err != nil {
		// Empty repository: no HEAD yet.
		return result, nil
	}
	defer iter.Close()

	err = iter.ForEach(func(commit *object.Commit) error {
		for _, repoPath := range changedPaths(commit) {
			if abs, tracked := byRepoPath[repoPath]; tracked {
				result[abs]++
			}
		}
		return nil
	})
	if err != nil {
		return result, nil
	}
	return result, nil
}

// parsePeriod understands "<n>d", "<n>m" (months), "<n>y", and "all".
func parsePeriod(period string) (time.Time, bool) {
	period = strings.TrimSpace(strings.ToLower(period))
	if period == "" || period == "all" {
		return time.Time{}, false
	}
	unit := period[len(period)-1]
	n, err := strconv.Atoi(period[:len(period)-1])
	if err != nil || n <= 0 {
		return time.Time{}, false
	}
	now := time.Now()
	switch unit {
	case 'd':
		return now.AddDate(0, 0, -n), true
	case 'm':
		return now.AddDate(0, -n, 0), true
	case 'y':
		return now.AddDate(-n, 0, 0), true
	default:
		return time.Time{}, false
	}
}

func changedPaths(commit *object.Commit) []string {
	commitTree, err := commit.Tree()
	if err != nil {
		return nil
	}

	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err == nil {
			parentTree, _ = parent.Tree()
		}
	}

	changes, err := object.DiffTree(parentTree, commitTree)
	if err != nil {
		return nil
	}

	var paths []string
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		if name != "" {
			paths = append(paths, name)
		}
	}
	return paths
}
