// Package models defines the data objects shared across apollo packages.
package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	log "github.com/chmouel/apollo/internal/log"
)

// TestStatus is the outcome of a single test.
type TestStatus string

// Test outcomes reported by the libtest harness.
const (
	StatusOK      TestStatus = "ok"
	StatusFailed  TestStatus = "failed"
	StatusIgnored TestStatus = "ignored"
)

// GroupKind tells which cargo target produced a test group.
type GroupKind string

// Group kinds.
const (
	GroupUnit        GroupKind = "unit"
	GroupBin         GroupKind = "bin"
	GroupIntegration GroupKind = "integration"
	GroupDoc         GroupKind = "doc"
)

// ParsedTest is one test record from a run.
type ParsedTest struct {
	Name       string // Full path as printed by libtest, e.g. "parse::tests::empty"
	Status     TestStatus
	Reason     string // Failure output or ignore reason, empty otherwise
	ModulePath string // Name without the last segment, e.g. "parse::tests"
	FilePath   string // Source file of the target, e.g. "src/lib.rs"
}

// ShortName returns the last "::" segment of the test name.
func (t ParsedTest) ShortName() string {
	if i := strings.LastIndex(t.Name, "::"); i >= 0 {
		return t.Name[i+2:]
	}
	return t.Name
}

// ParsedTestGroup is the set of tests produced by one test binary.
type ParsedTestGroup struct {
	Name  string
	Kind  GroupKind
	Tests []ParsedTest
}

// Summary counts test outcomes.
type Summary struct {
	Passed  int
	Failed  int
	Ignored int
}

// Total returns the number of tests counted.
func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Ignored
}

// Summarize counts the outcomes across groups.
func Summarize(groups []ParsedTestGroup) Summary {
	var s Summary
	for _, g := range groups {
		for _, t := range g.Tests {
			switch t.Status {
			case StatusOK:
				s.Passed++
			case StatusFailed:
				s.Failed++
			case StatusIgnored:
				s.Ignored++
			}
		}
	}
	return s
}

// ErrorName is shown in place of a project name that cannot be derived.
const ErrorName = "ERROR"

// Project is a folder opened by the user together with its latest results.
// Tests and SelectedTest live only in memory.
type Project struct {
	ID   uint32 `json:"id"`   // 0 means "no project"
	Path string `json:"path"` // Absolute folder path

	Tests        []ParsedTestGroup `json:"-"` // nil until a run completes
	SelectedTest *int              `json:"-"` // Index into TestsLinear()
	LastRun      time.Time         `json:"-"`
	LastDuration time.Duration     `json:"-"`
}

// NewProject returns a project with no results.
func NewProject(id uint32, path string) *Project {
	return &Project{ID: id, Path: path}
}

// DisplayName returns the last component of the project path.
func (p *Project) DisplayName() string {
	path := strings.TrimRight(p.PathString(), `/\`)
	if path == "" || path == ErrorName {
		log.Warnf("could not derive a name from project path %q", p.Path)
		return ErrorName
	}
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return ErrorName
	}
	return path
}

// PathString returns the cleaned project path, or ErrorName when it is empty.
func (p *Project) PathString() string {
	if strings.TrimSpace(p.Path) == "" {
		log.Warnf("project %d has an empty path", p.ID)
		return ErrorName
	}
	return filepath.Clean(p.Path)
}

// HasTests reports whether a run has produced results.
func (p *Project) HasTests() bool {
	return p.Tests != nil
}

// TestsLinear flattens the groups in order. It returns nil when no run
// has completed, and an empty non-nil slice for a run with zero tests.
func (p *Project) TestsLinear() []ParsedTest {
	if p.Tests == nil {
		return nil
	}
	tests := make([]ParsedTest, 0)
	for _, g := range p.Tests {
		tests = append(tests, g.Tests...)
	}
	return tests
}

// Summary counts outcomes of the latest run.
func (p *Project) Summary() Summary {
	return Summarize(p.Tests)
}

// String implements fmt.Stringer.
func (p *Project) String() string {
	return fmt.Sprintf("Project %d at %s", p.ID, p.Path)
}

// RunArgs are the cargo test flags chosen in the run settings.
type RunArgs struct {
	Lib        bool
	Bin        bool
	Docs       bool
	Workspace  bool
	NoFailFast bool
}

// DefaultRunArgs runs the whole workspace without stopping at the first
// failing test binary.
func DefaultRunArgs() RunArgs {
	return RunArgs{Workspace: true, NoFailFast: true}
}

// Args renders the flags passed to `cargo test`.
func (a RunArgs) Args() []string {
	args := []string{}
	if a.Lib {
		args = append(args, "--lib")
	}
	if a.Bin {
		args = append(args, "--bins")
	}
	if a.Docs {
		args = append(args, "--doc")
	}
	if a.Workspace {
		args = append(args, "--workspace")
	}
	if a.NoFailFast {
		args = append(args, "--no-fail-fast")
	}
	return args
}

// AlertSeverity sets the banner colour.
type AlertSeverity int

// Alert severities.
const (
	SeveritySuccess AlertSeverity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String returns the default banner title for the severity.
func (s AlertSeverity) String() string {
	switch s {
	case SeveritySuccess:
		return "Success"
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	default:
		return "Error"
	}
}

// Alert is a transient or user-dismissible banner.
type Alert struct {
	Title    string
	Message  string
	Severity AlertSeverity
	// Timeout > 0 dismisses the alert automatically; 0 means the user must close it.
	Timeout time.Duration
}

// Heading returns the title, falling back to the severity name.
func (a Alert) Heading() string {
	if a.Title != "" {
		return a.Title
	}
	return a.Severity.String()
}

// UserMustClose reports whether the alert stays until dismissed.
func (a Alert) UserMustClose() bool {
	return a.Timeout <= 0
}

const (
	// StateFilename stores the open projects and the active project id.
	StateFilename = "open_projects.json"
	// ConfigDirName is the per-user directory under the config home.
	ConfigDirName = "apollo"
)
