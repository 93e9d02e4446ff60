// Package git wraps go-git for the on-disk working copies that back a
// registry cache. Network operations (clone, fetch and ls-remote) are
// retried with exponential backoff; failures that retrying cannot fix, such
// as a missing repository or rejected credentials, are returned at once.
//
// The Client interface exists so callers can substitute a mock:
//
//	client := git.NewDefaultGitClient(git.WithMaxAttempts(5))
//	repo, err := client.Clone(ctx, &git.CloneConfig{URL: url, Directory: dir})
package git
