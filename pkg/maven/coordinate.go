package maven

import (
	"strings"

	"github.com/matzehuels/kdeps/pkg/errors"
)

const (
	// DefaultBaseURL is Maven Central's repository root.
	DefaultBaseURL = "https://repo1.maven.org/maven2"

	// ArtifactExt is the extension of the binary artifact.
	ArtifactExt = "jar"

	// MetadataExt is the extension of the metadata document.
	MetadataExt = "pom"
)

// Coordinate identifies one artifact version in a repository.
//
// Coordinates are comparable values; two coordinates denote the same graph
// node iff all three fields are equal.
type Coordinate struct {
	Group    string // groupId, e.g. "org.apache.commons"
	Artifact string // artifactId, e.g. "commons-lang3"
	Version  string // exact version, e.g. "3.12.0"
}

// String returns the canonical form "group:artifact:version".
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// Module returns "group:artifact" without the version.
func (c Coordinate) Module() string {
	return c.Group + ":" + c.Artifact
}

// Validate checks that every field is non-empty and safe to embed in a
// URL path and a local file name.
func (c Coordinate) Validate() error {
	if err := errors.ValidateCoordinateField("group", c.Group); err != nil {
		return err
	}
	if err := errors.ValidateCoordinateField("artifact", c.Artifact); err != nil {
		return err
	}
	return errors.ValidateCoordinateField("version", c.Version)
}

// FileName returns "artifact-version.ext".
func (c Coordinate) FileName(ext string) string {
	return c.Artifact + "-" + c.Version + "." + ext
}

// ParseCoordinate parses "group:artifact:version". Surrounding whitespace is
// ignored. Any other field count, or an empty field, yields an
// [errors.ErrCodeInvalidCoordinate] error.
func ParseCoordinate(s string) (Coordinate, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"invalid coordinate %q (expected group:artifact:version)", s)
	}
	c := Coordinate{
		Group:    strings.TrimSpace(parts[0]),
		Artifact: strings.TrimSpace(parts[1]),
		Version:  strings.TrimSpace(parts[2]),
	}
	if err := c.Validate(); err != nil {
		return Coordinate{}, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "invalid coordinate %q", s)
	}
	return c, nil
}

// Layout maps coordinates to URLs in a Maven 2 repository.
//
// The zero value is not usable; use [DefaultLayout] or [NewLayout].
type Layout struct {
	Base        string // repository root without trailing slash
	ArtifactExt string // binary extension (default "jar")
	MetadataExt string // metadata extension (default "pom")
}

// DefaultLayout returns the layout of Maven Central.
func DefaultLayout() Layout {
	return NewLayout(DefaultBaseURL)
}

// NewLayout returns a layout rooted at base with the default extensions.
func NewLayout(base string) Layout {
	return Layout{
		Base:        strings.TrimRight(base, "/"),
		ArtifactExt: ArtifactExt,
		MetadataExt: MetadataExt,
	}
}

// ArtifactURL returns base/group-path/artifact/version/artifact-version.jar.
func (l Layout) ArtifactURL(c Coordinate) string {
	return l.dir(c) + "/" + c.FileName(l.ArtifactExt)
}

// MetadataURL returns base/group-path/artifact/version/artifact-version.pom.
func (l Layout) MetadataURL(c Coordinate) string {
	return l.dir(c) + "/" + c.FileName(l.MetadataExt)
}

func (l Layout) dir(c Coordinate) string {
	groupPath := strings.ReplaceAll(c.Group, ".", "/")
	return l.Base + "/" + groupPath + "/" + c.Artifact + "/" + c.Version
}
