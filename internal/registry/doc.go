// Package registry manages local working copies of git-hosted component
// registries such as nf-core/modules.
//
// A Handle owns one on-disk clone under the cache root, keyed by the
// registry's full name (owner/repo). Creating a Handle clones the remote or
// fetches it at most once per session.Session, checks out and fast-forwards
// the resolved branch, and reads the registry's tools config to locate the
// component directories.
//
// Every Handle operation leaves the working copy at the branch tip. Install
// and FilesIdentical move HEAD to a historical commit while they run and
// always restore it, so the explicit State of a Handle is AtBranchTip
// between calls:
//
//	h, err := registry.New(ctx, "", registry.Options{Session: sess})
//	if err != nil {
//	    return err
//	}
//	names, err := h.ListComponents(registry.Module, true)
//	latest, err := h.LatestVersion(ctx, "fastqc", registry.Module)
//	ok, err := h.Install(ctx, "fastqc", registry.Module, latest.SHA, "modules/nf-core")
//
// Operations on one Handle are serialized by a mutex, and operations on the
// same cache directory from different processes by an advisory file lock.
package registry
