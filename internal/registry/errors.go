package registry

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ErrorKind classifies registry failures so callers can report actionable messages
type ErrorKind int

const (
	// RemoteUnreachable means a clone, fetch or ls-remote failed against the remote
	RemoteUnreachable ErrorKind = iota + 1
	// BranchNotFound means the requested or default branch could not be checked out
	BranchNotFound
	// DisconnectedBranch means the local branch has no remote tracking branch
	DisconnectedBranch
	// MalformedRegistry means the repository does not follow the registry layout
	MalformedRegistry
	// CorruptedCache means the local working copy is unusable
	CorruptedCache
	// ComponentNotFound means a component has no presence at the requested ref
	ComponentNotFound
	// CommitNotFound means a commit is absent from the branch history
	CommitNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case RemoteUnreachable:
		return "RemoteUnreachable"
	case BranchNotFound:
		return "BranchNotFound"
	case DisconnectedBranch:
		return "DisconnectedBranch"
	case MalformedRegistry:
		return "MalformedRegistry"
	case CorruptedCache:
		return "CorruptedCache"
	case ComponentNotFound:
		return "ComponentNotFound"
	case CommitNotFound:
		return "CommitNotFound"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error represents a structured registry error
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err is, or wraps, a registry *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var regErr *Error
	return errors.As(err, &regErr) && regErr.Kind == kind
}

// isTransportError reports whether err came from talking to the remote
// rather than from the local repository
func isTransportError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	for _, target := range []error{
		transport.ErrRepositoryNotFound,
		transport.ErrEmptyRemoteRepository,
		transport.ErrAuthenticationRequired,
		transport.ErrAuthorizationFailed,
		transport.ErrInvalidAuthMethod,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
