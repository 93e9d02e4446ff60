package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nf-core/modcache/internal/git"
	"github.com/nf-core/modcache/internal/git/gittest"
)

const testOrg = "acme"

// newRemote creates an acme/modules registry with two modules and one subworkflow
func newRemote(t *testing.T) *gittest.Repo {
	t.Helper()

	remote := gittest.NewRepo(t, testOrg, "modules")
	remote.Commit(gittest.TestRepoConfig{
		Files: gittest.Merge(
			gittest.ToolsConfig(testOrg),
			gittest.Module(testOrg, "fastqc", "process FASTQC {}\n"),
			gittest.Module(testOrg, "samtools/sort", "process SAMTOOLS_SORT {}\n"),
			gittest.Subworkflow(testOrg, "bam_stats", "workflow BAM_STATS {}\n"),
		),
		Message: "Initial registry",
	})
	return remote
}

// newHandle creates a handle on remote, filling in a temporary cache and a fresh session
func newHandle(t *testing.T, remote *gittest.Repo, opts Options) *Handle {
	t.Helper()

	if opts.CacheDir == "" {
		opts.CacheDir = t.TempDir()
	}
	h, err := New(context.Background(), remote.URL(), opts)
	require.NoError(t, err)
	return h
}

type progressCall struct {
	operation string
	fullName  string
	done      bool
}

type recordingProgress struct {
	calls []*progressCall
}

func (r *recordingProgress) Track(operation, fullName, _ string) (git.ProgressFunc, func()) {
	call := &progressCall{operation: operation, fullName: fullName}
	r.calls = append(r.calls, call)
	return func(string, int, int) {}, func() { call.done = true }
}
