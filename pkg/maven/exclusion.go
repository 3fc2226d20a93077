package maven

import (
	"fmt"
	"slices"
	"strings"
)

// Wildcard matches any group or artifact in an exclusion rule.
const Wildcard = "*"

// KeyMode decides how an exclusion table builds its index keys.
//
// Rules are recorded under the declaring dependency and looked up under the
// parent currently being expanded. Whether those two keys carry the version
// decides if an exclusion can ever fire.
type KeyMode int

const (
	// KeyWithVersion records and looks up rules under "group:artifact:version".
	KeyWithVersion KeyMode = iota
	// KeyWithoutVersion records and looks up rules under "group:artifact".
	KeyWithoutVersion
	// KeyLegacy records under "group:artifact:version" but looks up under
	// "group:artifact", so lookups never hit and exclusions are inert.
	KeyLegacy
)

var keyModeNames = map[KeyMode]string{
	KeyWithVersion:    "version",
	KeyWithoutVersion: "module",
	KeyLegacy:         "legacy",
}

// String returns the flag spelling of the mode.
func (m KeyMode) String() string {
	if s, ok := keyModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("KeyMode(%d)", int(m))
}

// ParseKeyMode accepts "version", "module" or "legacy". An empty string
// selects [KeyWithVersion].
func ParseKeyMode(s string) (KeyMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KeyWithVersion, nil
	}
	for m, name := range keyModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown exclusion key mode %q (want version, module or legacy)", s)
}

func (m KeyMode) recordKey(c Coordinate) string {
	if m == KeyWithoutVersion {
		return c.Module()
	}
	return c.String()
}

func (m KeyMode) lookupKey(c Coordinate) string {
	if m == KeyWithVersion {
		return c.String()
	}
	return c.Module()
}

// Rule excludes (Group, Artifact) below the dependency that declares it.
// Either field may be [Wildcard].
type Rule struct {
	Group    string
	Artifact string
}

// String returns "group:artifact".
func (r Rule) String() string { return r.Group + ":" + r.Artifact }

// IsTotal reports whether the rule is "*:*", excluding every transitive
// dependency.
func (r Rule) IsTotal() bool { return r.Group == Wildcard && r.Artifact == Wildcard }

// Matches reports whether the rule covers group:artifact. Each field matches
// exactly or via [Wildcard].
func (r Rule) Matches(group, artifact string) bool {
	return (r.Group == Wildcard || r.Group == group) &&
		(r.Artifact == Wildcard || r.Artifact == artifact)
}

// ExclusionTable maps a declaring coordinate to the rules it declared.
//
// A table is not safe for concurrent use; the resolver owns the run-wide
// table from a single goroutine.
type ExclusionTable struct {
	mode  KeyMode
	rules map[string][]Rule
}

// NewExclusionTable returns an empty table using mode for its keys.
func NewExclusionTable(mode KeyMode) *ExclusionTable {
	return &ExclusionTable{mode: mode, rules: make(map[string][]Rule)}
}

// Mode returns the key mode the table was created with.
func (t *ExclusionTable) Mode() KeyMode { return t.mode }

// Add records rules declared by owner. Duplicate rules are ignored.
func (t *ExclusionTable) Add(owner Coordinate, rules ...Rule) {
	t.addKey(t.mode.recordKey(owner), rules)
}

func (t *ExclusionTable) addKey(key string, rules []Rule) {
	existing := t.rules[key]
	for _, r := range rules {
		if !slices.Contains(existing, r) {
			existing = append(existing, r)
		}
	}
	if len(existing) > 0 {
		t.rules[key] = existing
	}
}

// Merge folds other into t. Keys are taken verbatim, so both tables should
// share the same mode.
func (t *ExclusionTable) Merge(other *ExclusionTable) {
	if other == nil {
		return
	}
	for key, rules := range other.rules {
		t.addKey(key, rules)
	}
}

// Rules returns the rules visible when expanding parent, or nil.
func (t *ExclusionTable) Rules(parent Coordinate) []Rule {
	return t.rules[t.mode.lookupKey(parent)]
}

// Excludes reports whether child must be skipped while expanding parent,
// and the rule responsible.
func (t *ExclusionTable) Excludes(parent, child Coordinate) (Rule, bool) {
	for _, r := range t.Rules(parent) {
		if r.Matches(child.Group, child.Artifact) {
			return r, true
		}
	}
	return Rule{}, false
}

// Len returns the number of declaring keys in the table.
func (t *ExclusionTable) Len() int { return len(t.rules) }
