// Package gitutil covers the git plumbing the diff command needs: resolving
// refs and materializing a commit into a temporary detached worktree.
// Worktree creation shells out to the git CLI — linked worktrees are not
// covered by the pure-Go client.
package gitutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/archlint/archlint/internal/archerr"
)

// ResolveRef resolves a ref name (branch, tag, short or full hash) to a
// commit hash.
func ResolveRef(repoPath, ref string) (string, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", archerr.Wrap(archerr.KindGit, "open repository", err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", archerr.Wrap(archerr.KindGit, fmt.Sprintf("cannot resolve %q", ref), err)
	}
	return hash.String(), nil
}

// TempWorktree is a detached checkout of one commit, removed on Close.
type TempWorktree struct {
	Path     string
	repoPath string
}

// NewTempWorktree checks out commit into a unique temp directory.
func NewTempWorktree(repoPath, commit string) (*TempWorktree, error) {
	short := commit
	if len(short) > 7 {
		short = short[:7]
	}
	worktreePath := filepath.Join(os.TempDir(),
		fmt.Sprintf("archlint-%s-%d", short, os.Getpid()))

	cmd := exec.Command("git", "worktree", "add", "--detach", "--quiet", worktreePath, commit)
	cmd.Dir = repoPath
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, archerr.Wrap(archerr.KindGit,
			"create worktree: "+string(out), err)
	}

	return &TempWorktree{Path: worktreePath, repoPath: repoPath}, nil
}

// Close removes the worktree and prunes stale registrations. Errors are
// swallowed: cleanup is best-effort on exit paths.
func (w *TempWorktree) Close() {
	remove := exec.Command("git", "worktree", "remove", "--force", w.Path)
	remove.Dir = w.repoPath
	_ = remove.Run()

	if _, err := os.Stat(w.Path); err == nil {
		_ = os.RemoveAll(w.Path)
	}

	prune := exec.Command("git", "worktree", "prune")
	prune.Dir = w.repoPath
	_ = prune.Run()
}
