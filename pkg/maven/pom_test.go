package maven

import (
	"slices"
	"testing"

	"github.com/matzehuels/kdeps/pkg/errors"
)

const samplePOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>org.example</groupId>
    <artifactId>parent</artifactId>
    <version>9.9.9</version>
  </parent>
  <artifactId>app</artifactId>

  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.managed</groupId>
        <artifactId>managed-only</artifactId>
        <version>1.0</version>
      </dependency>
    </dependencies>
  </dependencyManagement>

  <dependencies>
    <dependency>
      <groupId>c</groupId>
      <artifactId>d</artifactId>
      <version>2.0</version>
      <exclusions>
        <exclusion>
          <groupId>x</groupId>
          <artifactId>y</artifactId>
        </exclusion>
      </exclusions>
    </dependency>
    <dependency>
      <groupId>e</groupId>
      <artifactId>f</artifactId>
      <version>1.0</version>
      <scope>test</scope>
      <exclusions>
        <exclusion>
          <groupId>*</groupId>
          <artifactId>*</artifactId>
        </exclusion>
      </exclusions>
    </dependency>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>sibling</artifactId>
      <version>${project.parent.version}</version>
    </dependency>
    <dependency>
      <groupId>no</groupId>
      <artifactId>version</artifactId>
    </dependency>
    <dependency>
      <groupId>blank</groupId>
      <artifactId>version</artifactId>
      <version>   </version>
    </dependency>
    <dependency>
      <groupId>org.runtime</groupId>
      <artifactId>rt</artifactId>
      <version>3.1</version>
      <scope>runtime</scope>
      <optional>true</optional>
    </dependency>
  </dependencies>

  <build>
    <plugins>
      <plugin>
        <artifactId>maven-surefire-plugin</artifactId>
        <dependencies>
          <dependency>
            <groupId>org.plugin</groupId>
            <artifactId>plugin-dep</artifactId>
            <version>1.0</version>
          </dependency>
        </dependencies>
      </plugin>
    </plugins>
  </build>
</project>`

func coords(decls []Declaration) []string {
	out := make([]string, len(decls))
	for i, d := range decls {
		out[i] = d.Coordinate.String()
	}
	return out
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(samplePOM), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []string{"c:d:2.0", "org.example:sibling:9.9.9", "org.runtime:rt:3.1"}
	if got := coords(doc.Declarations); !slices.Equal(got, want) {
		t.Errorf("declarations = %v, want %v", got, want)
	}

	if doc.InheritedVersion != "9.9.9" {
		t.Errorf("InheritedVersion = %q, want 9.9.9", doc.InheritedVersion)
	}

	if got := doc.Project.Coordinate().String(); got != "org.example:app:9.9.9" {
		t.Errorf("project coordinate = %q", got)
	}

	if len(doc.Project.ManagedDependencies()) != 1 {
		t.Errorf("managed = %d, want 1", len(doc.Project.ManagedDependencies()))
	}
}

func TestParseWarnings(t *testing.T) {
	doc, err := Parse([]byte(samplePOM), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var kinds []WarningKind
	for _, w := range doc.Warnings {
		kinds = append(kinds, w.Kind)
	}
	want := []WarningKind{WarnMissingVersion, WarnBlankVersion}
	if !slices.Equal(kinds, want) {
		t.Errorf("warnings = %v, want %v", doc.Warnings, want)
	}

	if len(doc.Filtered) != 1 || doc.Filtered[0].Reason != "scope test" {
		t.Errorf("filtered = %+v, want the test-scoped e:f", doc.Filtered)
	}
}

func TestParseExclusionsKeyedByDeclaringDependency(t *testing.T) {
	doc, err := Parse([]byte(samplePOM), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	owner := Coordinate{"c", "d", "2.0"}
	rules := doc.Exclusions.Rules(owner)
	if len(rules) != 1 || rules[0] != (Rule{"x", "y"}) {
		t.Errorf("Rules(c:d:2.0) = %v, want [x:y]", rules)
	}

	// The test-scoped e:f contributes nothing, not even its *:* exclusion.
	if doc.Exclusions.Len() != 1 {
		t.Errorf("exclusion keys = %d, want 1", doc.Exclusions.Len())
	}
	if got := doc.Declarations[0].Exclusions; len(got) != 1 {
		t.Errorf("declaration exclusions = %v", got)
	}
}

func TestParseScopeFiltering(t *testing.T) {
	for _, scope := range []string{"test", "import", "provided"} {
		t.Run(scope, func(t *testing.T) {
			pom := `<project><dependencies><dependency>
				<groupId>g</groupId><artifactId>a</artifactId><version>1</version>
				<scope>` + scope + `</scope>
			</dependency></dependencies></project>`
			doc, err := Parse([]byte(pom), ParseOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if len(doc.Declarations) != 0 {
				t.Errorf("scope %s produced %v", scope, coords(doc.Declarations))
			}
		})
	}

	for _, scope := range []string{"", "compile", "runtime", "system"} {
		t.Run("keep/"+scope, func(t *testing.T) {
			pom := `<project><dependencies><dependency>
				<groupId>g</groupId><artifactId>a</artifactId><version>1</version>
				<scope>` + scope + `</scope>
			</dependency></dependencies></project>`
			doc, err := Parse([]byte(pom), ParseOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if len(doc.Declarations) != 1 {
				t.Errorf("scope %q dropped the declaration", scope)
			}
		})
	}
}

func TestParsePlaceholder(t *testing.T) {
	tests := []struct {
		name     string
		pom      string
		opts     ParseOptions
		want     []string
		wantWarn WarningKind
	}{
		{
			name: "substituted from parent",
			pom: `<project><parent><groupId>p</groupId><artifactId>p</artifactId><version>9.9.9</version></parent>
				<dependencies><dependency><groupId>g</groupId><artifactId>a</artifactId>
				<version>${project.parent.version}</version></dependency></dependencies></project>`,
			want: []string{"g:a:9.9.9"},
		},
		{
			name: "no parent",
			pom: `<project><dependencies><dependency><groupId>g</groupId><artifactId>a</artifactId>
				<version>${project.parent.version}</version></dependency></dependencies></project>`,
			wantWarn: WarnUnresolvedVersion,
		},
		{
			name: "parent without version",
			pom: `<project><parent><groupId>p</groupId><artifactId>p</artifactId></parent>
				<dependencies><dependency><groupId>g</groupId><artifactId>a</artifactId>
				<version>${project.parent.version}</version></dependency></dependencies></project>`,
			wantWarn: WarnUnresolvedVersion,
		},
		{
			name: "two parents",
			pom: `<project>
				<parent><groupId>p</groupId><artifactId>p</artifactId><version>1</version></parent>
				<parent><groupId>q</groupId><artifactId>q</artifactId><version>2</version></parent>
				<dependencies><dependency><groupId>g</groupId><artifactId>a</artifactId>
				<version>${project.parent.version}</version></dependency></dependencies></project>`,
			wantWarn: WarnUnresolvedVersion,
		},
		{
			name: "custom token",
			pom: `<project><parent><groupId>p</groupId><artifactId>p</artifactId><version>4.2</version></parent>
				<dependencies><dependency><groupId>g</groupId><artifactId>a</artifactId>
				<version>${project.version}</version></dependency></dependencies></project>`,
			opts: ParseOptions{Placeholders: []string{"${project.version}"}},
			want: []string{"g:a:4.2"},
		},
		{
			name: "other properties stay literal",
			pom: `<project><parent><groupId>p</groupId><artifactId>p</artifactId><version>4.2</version></parent>
				<dependencies><dependency><groupId>g</groupId><artifactId>a</artifactId>
				<version>${guava.version}</version></dependency></dependencies></project>`,
			want: []string{"g:a:${guava.version}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.pom), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got := coords(doc.Declarations); !slices.Equal(got, tt.want) {
				t.Errorf("declarations = %v, want %v", got, tt.want)
			}
			if tt.wantWarn != "" {
				if len(doc.Warnings) != 1 || doc.Warnings[0].Kind != tt.wantWarn {
					t.Errorf("warnings = %v, want %s", doc.Warnings, tt.wantWarn)
				}
			}
		})
	}
}

func TestParseSkipOptional(t *testing.T) {
	doc, err := Parse([]byte(samplePOM), ParseOptions{SkipOptional: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range doc.Declarations {
		if d.Coordinate.Artifact == "rt" {
			t.Error("optional dependency should be skipped")
		}
	}
}

func TestParseMissingCoordinate(t *testing.T) {
	pom := `<project><dependencies>
		<dependency><artifactId>a</artifactId><version>1</version></dependency>
		<dependency><groupId>g</groupId><version>1</version></dependency>
	</dependencies></project>`
	doc, err := Parse([]byte(pom), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Declarations) != 0 || len(doc.Warnings) != 2 {
		t.Errorf("declarations = %v, warnings = %v", doc.Declarations, doc.Warnings)
	}
}

func TestParseInvalidExclusion(t *testing.T) {
	pom := `<project><dependencies><dependency>
		<groupId>g</groupId><artifactId>a</artifactId><version>1</version>
		<exclusions><exclusion><groupId>x</groupId></exclusion></exclusions>
	</dependency></dependencies></project>`
	doc, err := Parse([]byte(pom), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Declarations) != 1 {
		t.Fatalf("declaration should survive an invalid exclusion")
	}
	if doc.Exclusions.Len() != 0 {
		t.Error("invalid exclusion must not be recorded")
	}
	if len(doc.Warnings) != 1 || doc.Warnings[0].Kind != WarnInvalidExclusion {
		t.Errorf("warnings = %v", doc.Warnings)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not xml", "<html><body>404"},
		{"wrong root", "<settings></settings>"},
		{"truncated", "<project><dependencies><dependency>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), ParseOptions{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidMetadata) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidMetadata)
			}
		})
	}
}

func TestParseLatin1(t *testing.T) {
	pom := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<project><description>caf\xe9</description><dependencies><dependency>" +
		"<groupId>g</groupId><artifactId>a</artifactId><version>1</version>" +
		"</dependency></dependencies></project>"
	doc, err := Parse([]byte(pom), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Declarations) != 1 {
		t.Errorf("declarations = %v", coords(doc.Declarations))
	}
}

func TestParseKeyModeShapesTable(t *testing.T) {
	doc, err := Parse([]byte(samplePOM), ParseOptions{KeyMode: KeyWithoutVersion})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Exclusions.Excludes(Coordinate{"c", "d", "other"}, Coordinate{"x", "y", "1"}); !ok {
		t.Error("module-keyed table should match any version of c:d")
	}
}
