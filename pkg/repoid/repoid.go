// Package repoid classifies configured repository strings into local working
// trees or remote hosted repositories.
package repoid

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Identifier is a resolved repository reference. The only implementations are
// Local and Remote; match with a type switch.
type Identifier interface {
	isIdentifier()

	// String returns a human-readable form used in logs.
	String() string
}

// Local is a repository in a working tree on this machine.
type Local struct {
	Path string
}

func (Local) isIdentifier() {}

func (l Local) String() string { return l.Path }

// Remote is a repository hosted on GitHub.
type Remote struct {
	Owner string
	Repo  string
}

func (Remote) isIdentifier() {}

func (r Remote) String() string { return r.Owner + "/" + r.Repo }

var (
	hostedURLPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([^/\s]+)/([^/\s]+?)(?:\.git)?/?$`)
	sshURLPattern    = regexp.MustCompile(`^git@github\.com:([^/\s]+)/([^/\s]+?)(?:\.git)?$`)
	shorthandPattern = regexp.MustCompile(`^([^/\s]+)/([^/\s]+)$`)
)

// Resolve classifies raw using the current user's home directory for "~"
// expansion. It never checks that the path exists.
func Resolve(raw string) Identifier {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	return ResolveWithHome(raw, home)
}

// ResolveWithHome is Resolve with an explicit home directory.
//
// Rules are applied in order: a leading "/", "~" or "." is local; a github.com
// URL is remote; "owner/repo" shorthand is remote; anything else is a local
// (possibly relative) path.
func ResolveWithHome(raw, home string) Identifier {
	if isPathLike(raw) {
		return Local{Path: expandHome(raw, home)}
	}

	if m := hostedURLPattern.FindStringSubmatch(raw); m != nil {
		return Remote{Owner: m[1], Repo: m[2]}
	}

	if m := sshURLPattern.FindStringSubmatch(raw); m != nil {
		return Remote{Owner: m[1], Repo: m[2]}
	}

	if m := shorthandPattern.FindStringSubmatch(raw); m != nil {
		return Remote{Owner: m[1], Repo: m[2]}
	}

	return Local{Path: raw}
}

// IsShorthand reports whether raw resolves as remote through the bare
// "owner/repo" form, which shadows a relative local path of the same name.
func IsShorthand(raw string) bool {
	if isPathLike(raw) || hostedURLPattern.MatchString(raw) || sshURLPattern.MatchString(raw) {
		return false
	}

	return shorthandPattern.MatchString(raw)
}

func isPathLike(raw string) bool {
	return strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "~") || strings.HasPrefix(raw, ".")
}

func expandHome(raw, home string) string {
	if !strings.HasPrefix(raw, "~") || home == "" {
		return raw
	}

	rest := strings.TrimPrefix(raw, "~")
	if rest == "" {
		return home
	}

	if rest[0] != '/' {
		// "~user" forms are left untouched.
		return raw
	}

	return filepath.Join(home, rest[1:])
}
