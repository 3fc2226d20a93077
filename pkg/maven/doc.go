// Package maven implements the pure parts of Maven 2 repository resolution:
// coordinates, repository URL layout, POM parsing and exclusion tables.
//
// Nothing in this package performs I/O. Fetching lives in
// [github.com/matzehuels/kdeps/pkg/integrations/maven] and the traversal that
// ties everything together lives in [github.com/matzehuels/kdeps/pkg/deps].
//
// # Coordinates
//
// A [Coordinate] is the triple "group:artifact:version". Identity is exact on
// all three fields; no semantic version comparison takes place:
//
//	c, err := maven.ParseCoordinate("com.google.guava:guava:32.1.3-jre")
//	url := maven.DefaultLayout().ArtifactURL(c)
//	// https://repo1.maven.org/maven2/com/google/guava/guava/32.1.3-jre/guava-32.1.3-jre.jar
//
// # POM Parsing
//
// [Parse] decodes a POM into a typed [Project] and derives the candidate child
// declarations from it:
//
//   - Only project/dependencies/dependency elements are considered.
//     Entries under dependencyManagement describe defaults and are never
//     traversed.
//   - Scopes test, import and provided are discarded.
//   - A missing, blank or unresolvable version drops the declaration and
//     records a [Warning].
//   - The inherited-version placeholder is replaced by the version of the
//     single declared parent.
//
// # Exclusions
//
// Exclusion rules are indexed by the declaring dependency's coordinate and
// aggregated across a run in an [ExclusionTable]. How the index key is shaped
// is controlled by [KeyMode].
package maven
