package cargo

import (
	"bufio"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chmouel/apollo/internal/models"
)

var (
	// "     Running unittests src/lib.rs (target/debug/deps/demo-1f2e3d4c)"
	// "     Running tests/api.rs (target/debug/deps/api-9a8b7c6d)"
	// "     Running target/debug/deps/demo-1f2e3d4c"  (cargo < 1.61)
	runningRe = regexp.MustCompile(`^\s*Running\s+(?:(unittests)\s+)?(\S+)(?:\s+\((\S+)\))?\s*$`)
	docTestRe = regexp.MustCompile(`^\s*Doc-tests\s+(\S+)\s*$`)
	testRe    = regexp.MustCompile(`^test (.+) \.\.\. (ok|FAILED|ignored(?:, (.+))?)$`)
	blockRe   = regexp.MustCompile(`^---- (.+) (?:stdout|stderr) ----$`)
	hashRe    = regexp.MustCompile(`-[0-9a-f]{8,}$`)
	docNameRe = regexp.MustCompile(`^(\S+) - (.+?)(?: \(line \d+\))?(?: - [\w ]+)?$`)
)

// parser turns the combined output of `cargo test` into test groups.
type parser struct {
	groups  []models.ParsedTestGroup
	current *models.ParsedTestGroup
	file    string

	block    string
	blockBuf []string
}

// Parse reads cargo test output. Groups are returned in the order cargo ran
// them; failure output is attached to the failing tests as their reason.
func Parse(output string) []models.ParsedTestGroup {
	p := &parser{}
	sc := bufio.NewScanner(strings.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		p.line(strings.TrimRight(sc.Text(), "\r"))
	}
	p.endBlock()
	p.flush()
	return p.groups
}

func (p *parser) line(line string) {
	if m := runningRe.FindStringSubmatch(line); m != nil {
		p.endBlock()
		p.start(runningGroup(m[1] != "", m[2], m[3]))
		return
	}
	if m := docTestRe.FindStringSubmatch(line); m != nil {
		p.endBlock()
		p.start(models.ParsedTestGroup{Name: "Doc-tests " + m[1], Kind: models.GroupDoc})
		return
	}

	if m := blockRe.FindStringSubmatch(line); m != nil {
		p.endBlock()
		p.block = m[1]
		return
	}
	if p.block != "" {
		if line == "failures:" || strings.HasPrefix(line, "test result:") {
			p.endBlock()
			return
		}
		p.blockBuf = append(p.blockBuf, line)
		return
	}

	m := testRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	if p.current == nil {
		// Output without a header, e.g. a test binary run directly.
		p.start(models.ParsedTestGroup{Name: "tests", Kind: models.GroupUnit})
	}
	test := models.ParsedTest{Name: m[1]}
	switch {
	case m[2] == "ok":
		test.Status = models.StatusOK
	case m[2] == "FAILED":
		test.Status = models.StatusFailed
	default:
		test.Status = models.StatusIgnored
		test.Reason = m[3]
	}
	p.locate(&test)
	p.current.Tests = append(p.current.Tests, test)
}

func runningGroup(unit bool, target, binary string) models.ParsedTestGroup {
	crate := ""
	if binary != "" {
		crate = hashRe.ReplaceAllString(filepath.Base(binary), "")
	}

	if strings.HasPrefix(target, "target/") || strings.HasPrefix(target, "target\\") {
		// Old style header names the binary only.
		return models.ParsedTestGroup{
			Name: hashRe.ReplaceAllString(filepath.Base(target), ""),
			Kind: models.GroupUnit,
		}
	}

	g := models.ParsedTestGroup{Name: target, Kind: models.GroupIntegration}
	if unit {
		g.Name = "unittests " + target
		g.Kind = models.GroupUnit
		if strings.HasSuffix(target, "main.rs") || strings.Contains(target, "/bin/") {
			g.Kind = models.GroupBin
		}
	}
	if crate != "" && g.Kind != models.GroupIntegration {
		g.Name += " (" + crate + ")"
	}
	return g
}

func (p *parser) start(g models.ParsedTestGroup) {
	p.flush()
	p.current = &g
	p.file = ""
	switch g.Kind {
	case models.GroupUnit, models.GroupBin, models.GroupIntegration:
		name := strings.TrimPrefix(g.Name, "unittests ")
		if i := strings.Index(name, " ("); i >= 0 {
			name = name[:i]
		}
		if strings.HasSuffix(name, ".rs") {
			p.file = name
		}
	}
}

func (p *parser) flush() {
	if p.current == nil {
		return
	}
	if p.current.Tests == nil {
		p.current.Tests = []models.ParsedTest{}
	}
	p.groups = append(p.groups, *p.current)
	p.current = nil
}

func (p *parser) locate(t *models.ParsedTest) {
	if p.current.Kind == models.GroupDoc {
		if m := docNameRe.FindStringSubmatch(t.Name); m != nil {
			t.FilePath = m[1]
			t.ModulePath = m[2]
		}
		return
	}
	t.FilePath = p.file
	if i := strings.LastIndex(t.Name, "::"); i >= 0 {
		t.ModulePath = t.Name[:i]
	}
}

// endBlock attaches a finished "---- name stdout ----" block to its test.
// Blocks are printed after the test lines of the same binary, so the
// failing test is already in the current group.
func (p *parser) endBlock() {
	if p.block == "" {
		return
	}
	reason := strings.TrimSpace(strings.Join(p.blockBuf, "\n"))
	if p.current != nil {
		for i := range p.current.Tests {
			t := &p.current.Tests[i]
			if t.Name == p.block && t.Status == models.StatusFailed {
				t.Reason = reason
				break
			}
		}
	}
	p.block = ""
	p.blockBuf = nil
}
