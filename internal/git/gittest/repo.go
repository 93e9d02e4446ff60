// Package gittest builds throwaway Git repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TestRepoConfig describes one commit
type TestRepoConfig struct {
	Files   map[string]string // Map of filename to content
	Remove  []string          // Files deleted in this commit
	Message string            // Commit message (defaults to "Update files")
	Author  *object.Signature // Author for commits (uses default if nil)
}

// Repo is a non-bare repository on disk used as a remote in tests
type Repo struct {
	t     testing.TB
	Path  string
	repo  *git.Repository
	clock time.Time
}

// NewRepo initializes an empty repository at <tempdir>/<owner>/<name> so the
// directory layout mirrors an owner/repo remote. The initial branch is master.
func NewRepo(t testing.TB, owner, name string) *Repo {
	t.Helper()

	repoDir := filepath.Join(t.TempDir(), owner, name)
	if err := os.MkdirAll(repoDir, 0750); err != nil {
		t.Fatalf("Failed to create repository dir: %v", err)
	}

	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("Failed to init repository: %v", err)
	}

	return &Repo{
		t:     t,
		Path:  repoDir,
		repo:  repo,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// URL returns the clone URL of the repository
func (r *Repo) URL() string {
	return r.Path
}

// Commit writes and removes files and records a commit on the current branch.
// Commit times advance by one minute per commit so history order is stable.
func (r *Repo) Commit(config TestRepoConfig) plumbing.Hash {
	r.t.Helper()

	workTree, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Failed to get worktree: %v", err)
	}

	for filename, content := range config.Files {
		filePath := filepath.Join(r.Path, filepath.FromSlash(filename))
		if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
			r.t.Fatalf("Failed to create directory for %s: %v", filename, err)
		}
		if err := os.WriteFile(filePath, []byte(content), 0600); err != nil {
			r.t.Fatalf("Failed to write file %s: %v", filename, err)
		}
		if _, err := workTree.Add(filename); err != nil {
			r.t.Fatalf("Failed to add file %s: %v", filename, err)
		}
	}

	for _, filename := range config.Remove {
		if _, err := workTree.Remove(filename); err != nil {
			r.t.Fatalf("Failed to remove file %s: %v", filename, err)
		}
	}

	r.clock = r.clock.Add(time.Minute)
	author := config.Author
	if author == nil {
		author = &object.Signature{
			Name:  "Test Author",
			Email: "test@example.com",
		}
	}
	signature := *author
	signature.When = r.clock

	message := config.Message
	if message == "" {
		message = "Update files"
	}

	hash, err := workTree.Commit(message, &git.CommitOptions{
		Author:    &signature,
		Committer: &signature,
	})
	if err != nil {
		r.t.Fatalf("Failed to commit: %v", err)
	}
	return hash
}

// CreateBranch creates a branch at HEAD and switches to it
func (r *Repo) CreateBranch(name string) {
	r.t.Helper()
	r.checkout(name, true)
}

// Checkout switches to an existing branch
func (r *Repo) Checkout(name string) {
	r.t.Helper()
	r.checkout(name, false)
}

func (r *Repo) checkout(name string, create bool) {
	r.t.Helper()

	workTree, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Failed to get worktree: %v", err)
	}
	err = workTree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: create,
	})
	if err != nil {
		r.t.Fatalf("Failed to checkout branch %s: %v", name, err)
	}
}

// Module returns the files of a minimal module at the current layout
func Module(orgPath, name, content string) map[string]string {
	base := "modules/" + orgPath + "/" + name
	return map[string]string{
		base + "/main.nf":  content,
		base + "/meta.yml": "name: " + name + "\n",
	}
}

// Subworkflow returns the files of a minimal subworkflow
func Subworkflow(orgPath, name, content string) map[string]string {
	base := "subworkflows/" + orgPath + "/" + name
	return map[string]string{
		base + "/main.nf":  content,
		base + "/meta.yml": "name: " + name + "\n",
	}
}

// ToolsConfig returns a registry tools config declaring orgPath
func ToolsConfig(orgPath string) map[string]string {
	return map[string]string{
		".nf-core.yml": "repository_type: modules\norg_path: " + orgPath + "\n",
	}
}

// Merge combines file maps; later maps win
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
