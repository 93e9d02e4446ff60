package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullNameFromRemote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remote  string
		want    string
		wantErr bool
	}{
		{remote: "https://github.com/nf-core/modules.git", want: "nf-core/modules"},
		{remote: "https://github.com/nf-core/modules", want: "nf-core/modules"},
		{remote: "https://github.com/nf-core/modules/", want: "nf-core/modules"},
		{remote: "http://gitlab.example.com/group/sub/modules.git", want: "group/sub/modules"},
		{remote: "ssh://git@github.com/acme/modules.git", want: "acme/modules"},
		{remote: "git@github.com:acme/modules.git", want: "acme/modules"},
		{remote: "git@github.com:acme/modules", want: "acme/modules"},
		{remote: "file:///srv/registries/acme/modules", want: "acme/modules"},
		{remote: "/srv/registries/acme/modules", want: "acme/modules"},
		{remote: "/srv/registries/acme/modules.git", want: "acme/modules"},
		{remote: "", wantErr: true},
		{remote: "https://github.com", wantErr: true},
		{remote: "https://github.com/../../etc", wantErr: true},
		{remote: "modules", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			t.Parallel()

			got, err := FullNameFromRemote(tt.remote)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFullNameIsStable(t *testing.T) {
	t.Parallel()

	a, err := FullNameFromRemote(CanonicalRemoteURL)
	require.NoError(t, err)
	b, err := FullNameFromRemote(CanonicalRemoteURL)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "nf-core/modules", a)
}

func TestComponentURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remote  string
		want    string
		wantErr bool
	}{
		{remote: "https://github.com/nf-core/modules.git", want: "https://github.com/nf-core/modules/tree/master/modules/nf-core/fastqc"},
		{remote: "http://gitlab.example.com/acme/modules", want: "https://gitlab.example.com/acme/modules/tree/master/modules/nf-core/fastqc"},
		{remote: "git@github.com:nf-core/modules.git", want: "https://github.com/nf-core/modules/tree/master/modules/nf-core/fastqc"},
		{remote: "ssh://git@github.com/nf-core/modules.git", want: "https://github.com/nf-core/modules/tree/master/modules/nf-core/fastqc"},
		{remote: "/srv/registries/nf-core/modules", wantErr: true},
		{remote: "file:///srv/registries/nf-core/modules", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			t.Parallel()

			h := &Handle{RemoteURL: tt.remote, Branch: "master", OrgPath: "nf-core"}
			got, err := h.ComponentURL(Module, "fastqc")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
