// Package state holds the application state: the open projects, the active
// project, run flags, the alert banner and the run settings.
//
// A State is owned by the UI update loop. Background runs never touch it;
// their results are applied through SetTests once they reach the loop.
package state

import (
	"slices"

	log "github.com/chmouel/apollo/internal/log"
	"github.com/chmouel/apollo/internal/models"
)

// NoProject is the active project id when nothing is open.
const NoProject uint32 = 0

// State is the application state.
type State struct {
	Projects      []*models.Project
	ActiveProject uint32
	RunArgs       models.RunArgs
	Alert         *models.Alert
	// Decorations draws apollo's own frame around the UI.
	Decorations bool

	running map[uint32]bool
}

// New returns an empty state using the given run settings.
func New(args models.RunArgs) *State {
	return &State{
		RunArgs: args,
		running: make(map[uint32]bool),
	}
}

// HasPath reports whether a project with this path is open.
func (s *State) HasPath(path string) bool {
	return slices.ContainsFunc(s.Projects, func(p *models.Project) bool {
		return p.Path == path
	})
}

// ProjectByPath returns the open project with path, or nil.
func (s *State) ProjectByPath(path string) *models.Project {
	for _, p := range s.Projects {
		if p.Path == path {
			return p
		}
	}
	return nil
}

func (s *State) nextID() uint32 {
	var maxID uint32
	for _, p := range s.Projects {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}

// AddProjectByPath opens path as a new active project and returns its id.
// A path that is already open is skipped and NoProject is returned.
func (s *State) AddProjectByPath(path string) uint32 {
	if s.HasPath(path) {
		log.Warnf("skipped %s because it is already open", path)
		return NoProject
	}
	p := models.NewProject(s.nextID(), path)
	s.Projects = append(s.Projects, p)
	s.ActiveProject = p.ID
	return p.ID
}

// AddProject appends p and makes it active. A project whose id is zero or
// already in use gets a fresh id.
func (s *State) AddProject(p *models.Project) {
	if p.ID == NoProject || s.Project(p.ID) != nil {
		p.ID = s.nextID()
	}
	s.Projects = append(s.Projects, p)
	s.ActiveProject = p.ID
}

// RemoveProject drops the project with id. When it was active, the first
// remaining project becomes active, or NoProject if none remain.
func (s *State) RemoveProject(id uint32) {
	s.Projects = slices.DeleteFunc(s.Projects, func(p *models.Project) bool {
		return p.ID == id
	})
	delete(s.running, id)
	if id != s.ActiveProject {
		return
	}
	if len(s.Projects) > 0 {
		s.SetActiveProject(s.Projects[0].ID)
		return
	}
	s.ActiveProject = NoProject
}

// SetActiveProject switches the active project. Unknown ids are ignored.
func (s *State) SetActiveProject(id uint32) {
	if s.Project(id) == nil {
		log.Warnf("ignored setting active project to non-existent id %d", id)
		return
	}
	s.ActiveProject = id
}

// Project returns the project with id, or nil.
func (s *State) Project(id uint32) *models.Project {
	if id == NoProject {
		return nil
	}
	for _, p := range s.Projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActiveProjectRef returns the active project, or nil.
func (s *State) ActiveProjectRef() *models.Project {
	return s.Project(s.ActiveProject)
}

// HasActiveProject reports whether the active id matches an open project.
func (s *State) HasActiveProject() bool {
	return s.ActiveProjectRef() != nil
}

// ActiveIndex returns the position of the active project, or -1.
func (s *State) ActiveIndex() int {
	return slices.IndexFunc(s.Projects, func(p *models.Project) bool {
		return p.ID == s.ActiveProject
	})
}

// CycleActive moves the active project by delta positions, wrapping around.
func (s *State) CycleActive(delta int) {
	n := len(s.Projects)
	if n == 0 {
		return
	}
	idx := s.ActiveIndex()
	if idx < 0 {
		idx = 0
	}
	idx = ((idx+delta)%n + n) % n
	s.ActiveProject = s.Projects[idx].ID
}

// SetTests stores the results of a run and resets the selection, since the
// previous index points into the old list.
func (s *State) SetTests(id uint32, groups []models.ParsedTestGroup) {
	p := s.Project(id)
	if p == nil {
		log.Warnf("dropped results for project %d which is no longer open", id)
		return
	}
	if groups == nil {
		groups = []models.ParsedTestGroup{}
	}
	p.Tests = groups
	p.SelectedTest = nil
}

// ClearTests forgets the results and selection of project id.
func (s *State) ClearTests(id uint32) {
	p := s.Project(id)
	if p == nil {
		return
	}
	p.Tests = nil
	p.SelectedTest = nil
}

// SelectTest selects index in the active project's flattened test list.
// Out of range indexes are ignored.
func (s *State) SelectTest(index int) {
	p := s.ActiveProjectRef()
	if p == nil {
		return
	}
	if index < 0 || index >= len(p.TestsLinear()) {
		log.Warnf("ignored selecting test %d outside of the test list", index)
		return
	}
	p.SelectedTest = &index
}

// UnselectTest clears the active project's selection.
func (s *State) UnselectTest() {
	if p := s.ActiveProjectRef(); p != nil {
		p.SelectedTest = nil
	}
}

// SelectedIndex returns the active project's selected index, or -1.
func (s *State) SelectedIndex() int {
	p := s.ActiveProjectRef()
	if p == nil || p.SelectedTest == nil {
		return -1
	}
	return *p.SelectedTest
}

// SelectedTest resolves the active project's selection.
func (s *State) SelectedTest() (models.ParsedTest, bool) {
	p := s.ActiveProjectRef()
	if p == nil || p.SelectedTest == nil {
		return models.ParsedTest{}, false
	}
	tests := p.TestsLinear()
	idx := *p.SelectedTest
	if idx < 0 || idx >= len(tests) {
		return models.ParsedTest{}, false
	}
	return tests[idx], true
}

// SetRunning records whether project id has a run in flight.
func (s *State) SetRunning(id uint32, running bool) {
	if s.running == nil {
		s.running = make(map[uint32]bool)
	}
	if running {
		s.running[id] = true
		return
	}
	delete(s.running, id)
}

// IsRunning reports whether project id has a run in flight.
func (s *State) IsRunning(id uint32) bool {
	return s.running[id]
}

// AnyRunning drives the "Running tests" status indicator.
func (s *State) AnyRunning() bool {
	return len(s.running) > 0
}

// SetAlert replaces the current alert.
func (s *State) SetAlert(a models.Alert) {
	s.Alert = &a
}

// ClearAlert removes the current alert.
func (s *State) ClearAlert() {
	s.Alert = nil
}
