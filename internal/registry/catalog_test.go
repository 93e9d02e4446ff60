package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nf-core/modcache/internal/git/gittest"
)

func TestListComponents(t *testing.T) {
	t.Parallel()

	h := newHandle(t, newRemote(t), Options{})

	modules, err := h.ListComponents(Module, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fastqc", "samtools/sort"}, modules)

	subworkflows, err := h.ListComponents(Subworkflow, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"bam_stats"}, subworkflows)
}

func TestListComponentsIgnoresDirectoriesWithoutMarker(t *testing.T) {
	t.Parallel()

	remote := newRemote(t)
	remote.Commit(gittest.TestRepoConfig{
		Files: map[string]string{
			"modules/acme/samtools/README.md":      "group directory",
			"modules/acme/fastqc/tests/main.nf.test": "nf-test",
			"modules/acme/bwa/meta.yml":            "name: bwa\n",
		},
	})

	h := newHandle(t, remote, Options{})

	modules, err := h.ListComponents(Module, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fastqc", "samtools/sort"}, modules)
}

func TestListComponentsMissingKindRoot(t *testing.T) {
	t.Parallel()

	remote := gittest.NewRepo(t, testOrg, "modules")
	remote.Commit(gittest.TestRepoConfig{
		Files: gittest.Merge(gittest.ToolsConfig(testOrg), gittest.Module(testOrg, "fastqc", "x")),
	})

	h := newHandle(t, remote, Options{})

	subworkflows, err := h.ListComponents(Subworkflow, true)
	require.NoError(t, err)
	assert.Empty(t, subworkflows)
}

func TestComponentExists(t *testing.T) {
	t.Parallel()

	h := newHandle(t, newRemote(t), Options{})

	tests := []struct {
		name string
		kind Kind
		want bool
	}{
		{name: "fastqc", kind: Module, want: true},
		{name: "samtools/sort", kind: Module, want: true},
		{name: "samtools", kind: Module, want: false},
		{name: "bam_stats", kind: Subworkflow, want: true},
		{name: "bam_stats", kind: Module, want: false},
		{name: "fastqc", kind: Subworkflow, want: false},
	}

	for _, tt := range tests {
		got, err := h.ComponentExists(tt.name, tt.kind, true)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.kind, tt.name)
	}
}

func TestComponentDir(t *testing.T) {
	t.Parallel()

	h := newHandle(t, newRemote(t), Options{})

	assert.Equal(t, filepath.Join(h.LocalDir, "modules", testOrg, "samtools", "sort"), h.ComponentDir("samtools/sort", Module))
	assert.Equal(t, filepath.Join(h.LocalDir, "subworkflows", testOrg, "bam_stats"), h.ComponentDir("bam_stats", Subworkflow))
	// not checked for existence
	assert.Equal(t, filepath.Join(h.ModulesDir, "nope"), h.ComponentDir("nope", Module))
}

func TestMetaYAML(t *testing.T) {
	t.Parallel()

	remote := newRemote(t)
	remote.Commit(gittest.TestRepoConfig{
		Remove: []string{"modules/acme/samtools/sort/meta.yml"},
	})
	h := newHandle(t, remote, Options{})

	meta, err := h.MetaYAML(Module, "fastqc")
	require.NoError(t, err)
	assert.Equal(t, "name: fastqc\n", string(meta))

	meta, err = h.MetaYAML(Subworkflow, "bam_stats")
	require.NoError(t, err)
	assert.Equal(t, "name: bam_stats\n", string(meta))

	meta, err = h.MetaYAML(Module, "samtools/sort")
	require.NoError(t, err)
	assert.Nil(t, meta)
}
