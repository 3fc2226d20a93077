package deps

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Spread lists the versions of one group:artifact reached during a run.
type Spread struct {
	Module   string   // group:artifact
	Versions []string // ascending
}

// VersionSpread returns every module visited at more than one version,
// sorted by module name. No version is preferred over another; the report
// is informational.
//
// Versions that parse as semantic versions sort first, by precedence;
// the rest follow in lexical order.
func (r *Result) VersionSpread() []Spread {
	byModule := make(map[string][]string)
	for _, c := range r.Visited {
		m := c.Module()
		if !slices.Contains(byModule[m], c.Version) {
			byModule[m] = append(byModule[m], c.Version)
		}
	}

	var out []Spread
	for m, versions := range byModule {
		if len(versions) < 2 {
			continue
		}
		slices.SortFunc(versions, compareVersions)
		out = append(out, Spread{Module: m, Versions: versions})
	}
	slices.SortFunc(out, func(a, b Spread) int { return strings.Compare(a.Module, b.Module) })
	return out
}

func compareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
