package ranger

import (
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
)

// StepKind is the host action of one navigation step.
type StepKind int

const (
	StepCd StepKind = iota
	StepScout
)

// Step is one host action taken to reach a freshly created directory.
type Step struct {
	Kind StepKind
	Arg  string
}

var (
	rootPrefix = regexp.MustCompile(`^/|^~[^/]*/`)
	component  = regexp.MustCompile(`[^/]+`)
)

// NavigationSteps plans how to walk the host to path one component at a
// time. Components are scouted so the cursor follows the walk; ".." and
// hidden components the host would not list are entered with cd.
func NavigationSteps(path string, showHidden bool) []Step {
	var steps []Step

	if loc := rootPrefix.FindStringIndex(path); loc != nil {
		steps = append(steps, Step{Kind: StepCd, Arg: path[:loc[1]]})
		path = path[loc[1]:]
	}

	for _, s := range component.FindAllString(path, -1) {
		if s == ".." || (strings.HasPrefix(s, ".") && !showHidden) {
			steps = append(steps, Step{Kind: StepCd, Arg: s})
			continue
		}
		steps = append(steps, Step{Kind: StepScout, Arg: "^" + regexp.QuoteMeta(s) + "$"})
	}
	return steps
}

// ExpandUser replaces a leading ~ or ~user with the matching home directory.
// Paths that cannot be expanded are returned unchanged.
func ExpandUser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	name, rest, _ := strings.Cut(path[1:], "/")
	var home string
	if name == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		home = dir
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return path
		}
		home = u.HomeDir
	}

	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}
