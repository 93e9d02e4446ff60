package app

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nf-core/modcache/internal/config"
	"github.com/nf-core/modcache/internal/git/gittest"
	"github.com/nf-core/modcache/internal/versions"
)

type cliFixture struct {
	remote   *gittest.Repo
	cacheDir string
}

func newFixture(t *testing.T) *cliFixture {
	t.Helper()

	remote := gittest.NewRepo(t, "acme", "modules")
	remote.Commit(gittest.TestRepoConfig{
		Files: gittest.Merge(
			gittest.ToolsConfig("acme"),
			gittest.Module("acme", "fastqc", "process FASTQC {}\n"),
			gittest.Module("acme", "samtools/sort", "process SAMTOOLS_SORT {}\n"),
			gittest.Subworkflow("acme", "bam_stats", "workflow BAM_STATS {}\n"),
		),
		Message: "Initial registry",
	})
	remote.Commit(gittest.TestRepoConfig{
		Files:   gittest.Module("acme", "fastqc", "process FASTQC { cpus 2 }\n"),
		Message: "Give fastqc two cpus",
	})

	return &cliFixture{remote: remote, cacheDir: t.TempDir()}
}

// run executes the CLI against the fixture registry and returns stdout
func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	env := newEnvironment(config.NewViper(), nil)
	env.interactive = func() bool { return false }

	root := newRootCmd(env)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{
		"--cache-dir", f.cacheDir,
		"--remote", f.remote.URL(),
		"--hide-progress",
	}, args...))

	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := f.run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "fastqc\nsamtools/sort\n", out)

	out, err = f.run(t, "list", "subworkflows")
	require.NoError(t, err)
	assert.Equal(t, "bam_stats\n", out)

	_, err = f.run(t, "list", "pipelines")
	assert.ErrorContains(t, err, "unknown component type")

	assert.DirExists(t, filepath.Join(f.cacheDir, "acme", "modules", ".git"))
}

func TestListCommandFilters(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := f.run(t, "list", "--include", "samtools/*")
	require.NoError(t, err)
	assert.Equal(t, "samtools/sort\n", out)

	out, err = f.run(t, "list", "--exclude", "*sort")
	require.NoError(t, err)
	assert.Equal(t, "fastqc\n", out)

	_, err = f.run(t, "list", "--include", "[fast")
	assert.ErrorContains(t, err, "invalid glob pattern")
}

func TestInfoCommand(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := f.run(t, "info", "modules", "samtools/sort")
	require.NoError(t, err)
	assert.Equal(t, "name: samtools/sort\n", out)

	_, err = f.run(t, "info", "modules", "multiqc")
	assert.ErrorContains(t, err, "has no meta.yml")
}

func TestVersionsCommand(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := f.run(t, "versions", "modules", "fastqc")
	require.NoError(t, err)
	assert.Contains(t, out, "Give fastqc two cpus")
	assert.Contains(t, out, "Initial registry")
	assert.Contains(t, out, "2024-01-01")

	out, err = f.run(t, "versions", "modules", "fastqc", "--depth", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Give fastqc two cpus")
	assert.NotContains(t, out, "Initial registry")

	_, err = f.run(t, "versions", "modules", "multiqc")
	assert.ErrorContains(t, err, "has no history")
}

func TestInstallCommand(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	target := t.TempDir()

	out, err := f.run(t, "install", "modules", "fastqc", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Installed module 'fastqc'")

	content, err := os.ReadFile(filepath.Join(target, "fastqc", "main.nf"))
	require.NoError(t, err)
	assert.Equal(t, "process FASTQC { cpus 2 }\n", string(content))

	_, err = f.run(t, "install", "modules", "fastqc", target)
	assert.ErrorContains(t, err, "failed to install")

	_, err = f.run(t, "install", "modules", "fastqc", t.TempDir(), "--sha", "0000000000000000000000000000000000000000")
	assert.ErrorContains(t, err, "is not on branch")
}

func TestInstallCommand_AtCommit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := f.run(t, "versions", "modules", "fastqc")
	require.NoError(t, err)
	initial := shaOnLine(t, out, "Initial registry")

	target := t.TempDir()
	_, err = f.run(t, "install", "modules", "fastqc", target, "--sha", initial)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(target, "fastqc", "main.nf"))
	require.NoError(t, err)
	assert.Equal(t, "process FASTQC {}\n", string(content))
}

func TestDiffCommand(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	target := t.TempDir()

	_, err := f.run(t, "install", "modules", "fastqc", target)
	require.NoError(t, err)
	installed := filepath.Join(target, "fastqc")

	out, err := f.run(t, "diff", "fastqc", installed, "--exit-code")
	require.NoError(t, err)
	assert.NotContains(t, out, "changed")

	require.NoError(t, os.WriteFile(filepath.Join(installed, "main.nf"), []byte("process LOCAL {}\n"), 0600))

	out, err = f.run(t, "diff", "fastqc", installed)
	require.NoError(t, err)
	assert.Contains(t, out, "changed")

	_, err = f.run(t, "diff", "fastqc", installed, "--exit-code")
	assert.ErrorContains(t, err, "1 file(s)")
}

func TestBranchesCommand(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.remote.CreateBranch("dev")

	out, err := f.run(t, "branches")
	require.NoError(t, err)
	assert.Contains(t, out, "master\n")
	assert.Contains(t, out, "dev\n")
	assert.NoDirExists(t, filepath.Join(f.cacheDir, "acme"))
}

func TestBranchFlag(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.remote.CreateBranch("dev")
	f.remote.Commit(gittest.TestRepoConfig{
		Files:   gittest.Module("acme", "multiqc", "process MULTIQC {}\n"),
		Message: "Add multiqc on dev",
	})
	f.remote.Checkout("master")

	out, err := f.run(t, "--branch", "dev", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "multiqc")

	_, err = f.run(t, "--branch", "nope", "list")
	assert.ErrorContains(t, err, "nope")
}

func TestInvalidConfiguration(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.run(t, "--recovery", "sometimes", "list")
	assert.ErrorContains(t, err, "failed to load configuration")

	_, err = f.run(t, "--network-attempts", "0", "list")
	assert.ErrorContains(t, err, "networkAttempts")
}

func TestConfigFile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	path := filepath.Join(t.TempDir(), "modcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recovery: fail-fast\nbranch: missing\n"), 0600))

	_, err := f.run(t, "--config", path, "list")
	assert.ErrorContains(t, err, "missing")

	_, err = f.run(t, "--config", path, "--branch", "master", "list")
	assert.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	root := NewRootCmd(nil)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--format", "json"})
	require.NoError(t, root.ExecuteContext(t.Context()))

	var info versions.VersionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, versions.ToolsVersion, info.ToolsVersion)
	assert.NotEmpty(t, info.GoVersion)

	out.Reset()
	root = NewRootCmd(nil)
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.ExecuteContext(t.Context()))
	assert.Contains(t, out.String(), "tools version: "+versions.ToolsVersion)
}

func TestDebugFlag(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	called := false
	env := newEnvironment(config.NewViper(), func() { called = true })
	env.interactive = func() bool { return false }
	root := newRootCmd(env)
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--cache-dir", f.cacheDir, "--remote", f.remote.URL(), "--debug", "list"})
	require.NoError(t, root.ExecuteContext(t.Context()))
	assert.True(t, called)
}

func TestInfoCommand_Validate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.remote.Commit(gittest.TestRepoConfig{
		Files: map[string]string{
			"modules/meta-schema.json":            `{"type": "object", "required": ["name", "description"]}`,
			"modules/acme/samtools/sort/meta.yml": "name: samtools_sort\ndescription: Sort alignments\n",
		},
		Message: "Add meta schema",
	})

	_, err := f.run(t, "info", "modules", "samtools/sort", "--validate")
	require.NoError(t, err)

	_, err = f.run(t, "info", "modules", "fastqc", "--validate")
	assert.ErrorContains(t, err, "1 schema violation(s)")

	_, err = f.run(t, "info", "subworkflows", "bam_stats", "--validate")
	assert.NoError(t, err)
}

func TestInfoCommand_Web(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.run(t, "info", "modules", "fastqc", "--web")
	assert.ErrorContains(t, err, "has no web address")
}
