package registry

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// FullNameFromRemote derives the owner/repo identity of a remote. It is a
// pure function of the URL and keys both the cache directory and the
// session's synced set.
//
//	https://github.com/nf-core/modules.git -> nf-core/modules
//	git@github.com:nf-core/modules.git     -> nf-core/modules
//	/srv/registries/acme/modules           -> acme/modules
func FullNameFromRemote(remoteURL string) (string, error) {
	raw := strings.TrimSpace(remoteURL)
	if raw == "" {
		return "", fmt.Errorf("remote URL is empty")
	}

	var repoPath string
	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("invalid remote URL %s: %w", remoteURL, err)
		}
		if u.Scheme == "file" {
			return lastTwo(u.Path, remoteURL)
		}
		repoPath = u.Path
	case isSCPLike(raw):
		// git@host:owner/repo
		repoPath = raw[strings.Index(raw, ":")+1:]
	default:
		return lastTwo(filepath.ToSlash(raw), remoteURL)
	}

	name := strings.TrimSuffix(strings.Trim(repoPath, "/"), ".git")
	if name == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", fmt.Errorf("cannot derive repository name from remote URL %s", remoteURL)
	}
	return name, nil
}

func isSCPLike(raw string) bool {
	colon := strings.Index(raw, ":")
	if colon <= 0 {
		return false
	}
	// A drive letter such as C:\ is a local path
	if colon == 1 {
		return false
	}
	slash := strings.IndexAny(raw, `/\`)
	return slash < 0 || colon < slash
}

func lastTwo(p, remoteURL string) (string, error) {
	clean := strings.TrimSuffix(path.Clean(strings.TrimRight(p, "/")), ".git")
	repo := path.Base(clean)
	owner := path.Base(path.Dir(clean))
	if repo == "" || repo == "." || repo == "/" || owner == "." || owner == "/" || owner == "" || owner == ".." {
		return "", fmt.Errorf("cannot derive repository name from remote URL %s", remoteURL)
	}
	return owner + "/" + repo, nil
}

// ComponentURL returns the web page of a component at the resolved branch.
// Only remotes hosted behind http(s), ssh:// or scp-like addresses have one.
func (h *Handle) ComponentURL(kind Kind, name string) (string, error) {
	raw := strings.TrimSpace(h.RemoteURL)

	var host, repoPath string
	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("invalid remote URL %s: %w", h.RemoteURL, err)
		}
		switch u.Scheme {
		case "http", "https", "ssh":
		default:
			return "", fmt.Errorf("remote %s has no web address", h.RemoteURL)
		}
		host, repoPath = u.Hostname(), u.Path
	case isSCPLike(raw):
		colon := strings.Index(raw, ":")
		host = raw[:colon]
		if at := strings.LastIndex(host, "@"); at >= 0 {
			host = host[at+1:]
		}
		repoPath = raw[colon+1:]
	default:
		return "", fmt.Errorf("remote %s has no web address", h.RemoteURL)
	}

	repoPath = strings.TrimSuffix(strings.Trim(repoPath, "/"), ".git")
	u := url.URL{
		Scheme: "https",
		Host:   host,
		Path:   path.Join("/", repoPath, "tree", h.Branch, kind.Dir(), h.OrgPath, name),
	}
	return u.String(), nil
}
