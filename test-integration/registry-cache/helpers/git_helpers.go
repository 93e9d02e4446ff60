// Package helpers builds registries on disk for the integration suite.
package helpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/onsi/gomega"
)

// GitTestHelper manages Git repositories for testing
type GitTestHelper struct {
	ctx          context.Context
	tempDir      string
	repositories []*GitTestRepository
}

// GitTestRepository represents a test registry repository
type GitTestRepository struct {
	Name     string
	Path     string
	CloneURL string

	repo *git.Repository
}

// NewGitTestHelper creates a new Git test helper
func NewGitTestHelper(ctx context.Context) *GitTestHelper {
	tempDir, err := os.MkdirTemp("", "git-test-repos-*")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return &GitTestHelper{
		ctx:          ctx,
		tempDir:      tempDir,
		repositories: make([]*GitTestRepository, 0),
	}
}

// CreateRegistry initializes <owner>/<name> on a main branch with a tools
// config declaring orgPath. An empty orgPath leaves the key out.
func (g *GitTestHelper) CreateRegistry(owner, name, orgPath string) *GitTestRepository {
	repoPath := filepath.Join(g.tempDir, owner, name)
	err := os.MkdirAll(repoPath, 0750)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	repo, err := git.PlainInitWithOptions(repoPath, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	registry := &GitTestRepository{
		Name:     owner + "/" + name,
		Path:     repoPath,
		CloneURL: fmt.Sprintf("file://%s", repoPath),
		repo:     repo,
	}
	g.repositories = append(g.repositories, registry)

	toolsConfig := "repository_type: modules\n"
	if orgPath != "" {
		toolsConfig += "org_path: " + orgPath + "\n"
	}
	g.CommitFiles(registry, map[string]string{".nf-core.yml": toolsConfig}, "Initial commit")
	return registry
}

// CommitFiles writes files and commits them, returning the commit hash
func (*GitTestHelper) CommitFiles(repo *GitTestRepository, files map[string]string, message string) string {
	workTree, err := repo.repo.Worktree()
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		filePath := filepath.Join(repo.Path, filepath.FromSlash(name))
		err = os.MkdirAll(filepath.Dir(filePath), 0750)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		err = os.WriteFile(filePath, []byte(files[name]), 0600)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		_, err = workTree.Add(name)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	}

	hash, err := workTree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return hash.String()
}

// CommitComponent commits a component with a main.nf and meta.yml under
// <kindDir>/<orgPath>/<name>
func (g *GitTestHelper) CommitComponent(repo *GitTestRepository, kindDir, orgPath, name, content, message string) string {
	base := kindDir + "/" + orgPath + "/" + name
	return g.CommitFiles(repo, map[string]string{
		base + "/main.nf":  content,
		base + "/meta.yml": "name: " + name + "\n",
	}, message)
}

// CreateBranch creates a new branch and switches to it
func (*GitTestHelper) CreateBranch(repo *GitTestRepository, branchName string) {
	checkout(repo, branchName, true)
}

// SwitchBranch switches to an existing branch
func (*GitTestHelper) SwitchBranch(repo *GitTestRepository, branchName string) {
	checkout(repo, branchName, false)
}

// CleanupRepositories removes all test repositories
func (g *GitTestHelper) CleanupRepositories() error {
	return os.RemoveAll(g.tempDir)
}

func checkout(repo *GitTestRepository, branchName string, create bool) {
	workTree, err := repo.repo.Worktree()
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	err = workTree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branchName),
		Create: create,
	})
	gomega.Expect(err).NotTo(gomega.HaveOccurred(), "failed to checkout branch %s", branchName)
}
