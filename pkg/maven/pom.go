package maven

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/matzehuels/kdeps/pkg/errors"
)

// DefaultPlaceholders are the version tokens that mean "the parent's version".
var DefaultPlaceholders = []string{"${project.parent.version}", "${parent.version}"}

// Scopes whose declarations never take part in the transitive closure.
var excludedScopes = map[string]bool{
	"test":     true,
	"import":   true,
	"provided": true,
}

// Project is the typed form of a POM. Only the elements the resolver needs
// are decoded.
type Project struct {
	XMLName    xml.Name     `xml:"project"`
	GroupID    string       `xml:"groupId"`
	ArtifactID string       `xml:"artifactId"`
	Version    string       `xml:"version"`
	Packaging  string       `xml:"packaging"`
	Parents    []Parent     `xml:"parent"`
	Deps       []Dependency `xml:"dependencies>dependency"`
	Managed    []Dependency `xml:"dependencyManagement>dependencies>dependency"`
}

// Parent is a <parent> reference.
type Parent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// Dependency is one <dependency> element. Version is nil when the element
// has no <version> child.
type Dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    *string     `xml:"version"`
	Scope      string      `xml:"scope"`
	Optional   string      `xml:"optional"`
	Exclusions []Exclusion `xml:"exclusions>exclusion"`
}

// Exclusion is one <exclusion> element.
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// DecodeProject parses POM bytes into a [Project]. Documents declaring a
// non-UTF-8 encoding are transcoded via the IANA charset registry.
func DecodeProject(data []byte) (*Project, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader

	var p Project
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "decode pom")
	}
	return &p, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// InheritedVersion returns the version of the project's parent. It reports
// false unless exactly one parent with a non-blank version is declared.
func (p *Project) InheritedVersion() (string, bool) {
	if len(p.Parents) != 1 {
		return "", false
	}
	v := strings.TrimSpace(p.Parents[0].Version)
	return v, v != ""
}

// DirectDependencies returns the dependency elements that are real
// references, in document order. Entries nested under dependencyManagement
// are never included.
func (p *Project) DirectDependencies() []Dependency { return p.Deps }

// ManagedDependencies returns the dependencyManagement entries.
func (p *Project) ManagedDependencies() []Dependency { return p.Managed }

// Coordinate returns the project's own coordinate, falling back to the
// parent's group and version when the project omits them.
func (p *Project) Coordinate() Coordinate {
	c := Coordinate{
		Group:    strings.TrimSpace(p.GroupID),
		Artifact: strings.TrimSpace(p.ArtifactID),
		Version:  strings.TrimSpace(p.Version),
	}
	if len(p.Parents) == 1 {
		if c.Group == "" {
			c.Group = strings.TrimSpace(p.Parents[0].GroupID)
		}
		if c.Version == "" {
			c.Version = strings.TrimSpace(p.Parents[0].Version)
		}
	}
	return c
}

// WarningKind classifies a dropped declaration.
type WarningKind string

const (
	WarnMissingCoordinate WarningKind = "missing-coordinate"
	WarnMissingVersion    WarningKind = "missing-version"
	WarnBlankVersion      WarningKind = "blank-version"
	WarnUnresolvedVersion WarningKind = "unresolved-version"
	WarnInvalidExclusion  WarningKind = "invalid-exclusion"
)

// Warning records a declaration (or exclusion) that was dropped.
type Warning struct {
	Kind     WarningKind
	Group    string
	Artifact string
	Detail   string
}

func (w Warning) String() string {
	s := fmt.Sprintf("%s %s:%s", w.Kind, w.Group, w.Artifact)
	if w.Detail != "" {
		s += ": " + w.Detail
	}
	return s
}

// Filtered records a declaration discarded on purpose (scope or optional).
type Filtered struct {
	Group    string
	Artifact string
	Reason   string
}

// Declaration is a surviving child reference with its version resolved.
type Declaration struct {
	Coordinate Coordinate
	Scope      string
	Optional   bool
	Exclusions []Rule
}

// ParseOptions configures [Parse].
type ParseOptions struct {
	// KeyMode shapes the keys of the returned exclusion table.
	KeyMode KeyMode
	// Placeholders lists the inherited-version tokens. Nil selects
	// DefaultPlaceholders.
	Placeholders []string
	// SkipOptional drops declarations marked <optional>true</optional>.
	SkipOptional bool
}

func (o ParseOptions) isPlaceholder(v string) bool {
	tokens := o.Placeholders
	if tokens == nil {
		tokens = DefaultPlaceholders
	}
	for _, t := range tokens {
		if v == t {
			return true
		}
	}
	return false
}

// Document is the result of parsing one POM.
type Document struct {
	Project          *Project
	InheritedVersion string // empty when there is none
	Declarations     []Declaration
	Exclusions       *ExclusionTable
	Warnings         []Warning
	Filtered         []Filtered
}

// Parse decodes a POM and extracts its candidate child declarations in
// document order, together with the exclusion rules they declare.
//
// A malformed document returns an [errors.ErrCodeInvalidMetadata] error.
// Dropped declarations are reported through Document.Warnings and
// Document.Filtered, never as errors.
func Parse(data []byte, opts ParseOptions) (*Document, error) {
	p, err := DecodeProject(data)
	if err != nil {
		return nil, err
	}
	return Extract(p, opts), nil
}

// Extract derives a [Document] from an already decoded project.
func Extract(p *Project, opts ParseOptions) *Document {
	doc := &Document{
		Project:    p,
		Exclusions: NewExclusionTable(opts.KeyMode),
	}
	inherited, hasParent := p.InheritedVersion()
	doc.InheritedVersion = inherited

	for _, d := range p.DirectDependencies() {
		group := strings.TrimSpace(d.GroupID)
		artifact := strings.TrimSpace(d.ArtifactID)
		if group == "" || artifact == "" {
			doc.warn(WarnMissingCoordinate, group, artifact, "groupId and artifactId are required")
			continue
		}

		scope := strings.TrimSpace(d.Scope)
		if excludedScopes[scope] {
			doc.Filtered = append(doc.Filtered, Filtered{group, artifact, "scope " + scope})
			continue
		}
		optional := strings.TrimSpace(d.Optional) == "true"
		if optional && opts.SkipOptional {
			doc.Filtered = append(doc.Filtered, Filtered{group, artifact, "optional"})
			continue
		}

		if d.Version == nil {
			doc.warn(WarnMissingVersion, group, artifact, "")
			continue
		}
		version := strings.TrimSpace(*d.Version)
		switch {
		case version == "":
			doc.warn(WarnBlankVersion, group, artifact, "")
			continue
		case opts.isPlaceholder(version):
			if !hasParent {
				doc.warn(WarnUnresolvedVersion, group, artifact, version+" without a parent version")
				continue
			}
			version = inherited
		}

		decl := Declaration{
			Coordinate: Coordinate{Group: group, Artifact: artifact, Version: version},
			Scope:      scope,
			Optional:   optional,
		}
		for _, e := range d.Exclusions {
			r := Rule{Group: strings.TrimSpace(e.GroupID), Artifact: strings.TrimSpace(e.ArtifactID)}
			if r.Group == "" || r.Artifact == "" {
				doc.warn(WarnInvalidExclusion, group, artifact, "exclusion "+r.String()+" needs groupId and artifactId")
				continue
			}
			decl.Exclusions = append(decl.Exclusions, r)
		}
		if len(decl.Exclusions) > 0 {
			doc.Exclusions.Add(decl.Coordinate, decl.Exclusions...)
		}
		doc.Declarations = append(doc.Declarations, decl)
	}
	return doc
}

func (d *Document) warn(kind WarningKind, group, artifact, detail string) {
	d.Warnings = append(d.Warnings, Warning{Kind: kind, Group: group, Artifact: artifact, Detail: detail})
}
