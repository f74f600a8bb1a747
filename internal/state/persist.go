package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/chmouel/apollo/internal/log"
	"github.com/chmouel/apollo/internal/models"
)

const (
	defaultDirPerms  = 0o750
	defaultFilePerms = 0o600
)

// savedState is the on-disk shape of the open projects file. Test results
// are never written.
type savedState struct {
	OpenProjects  []*models.Project `json:"open_projects"`
	ActiveProject uint32            `json:"active_project"`
}

// Save writes the open projects and the active id to path. The file is
// replaced atomically.
func Save(path string, s *State) error {
	payload := savedState{
		OpenProjects:  s.Projects,
		ActiveProject: s.ActiveProject,
	}
	if payload.OpenProjects == nil {
		payload.OpenProjects = []*models.Project{}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding open projects: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPerms); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".open_projects-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing open projects: %w", err)
	}
	if err := tmp.Chmod(defaultFilePerms); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing open projects: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing open projects: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	log.Printf("state: saved %d projects to %s", len(payload.OpenProjects), path)
	return nil
}

// Load reads the open projects file at path. Any failure yields an empty
// state; the cause is only logged.
func Load(path string, args models.RunArgs) *State {
	s := New(args)

	// #nosec G304 -- path comes from the user's config
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("state: using empty state, could not read %s: %v", path, err)
		return s
	}
	var payload savedState
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("state: using empty state, could not parse %s: %v", path, err)
		return s
	}

	seen := make(map[uint32]bool)
	for _, p := range payload.OpenProjects {
		if p == nil || p.Path == "" || s.HasPath(p.Path) {
			continue
		}
		if p.ID == NoProject || seen[p.ID] {
			p.ID = s.nextID()
		}
		seen[p.ID] = true
		s.Projects = append(s.Projects, models.NewProject(p.ID, p.Path))
	}

	s.ActiveProject = payload.ActiveProject
	if !s.HasActiveProject() {
		s.ActiveProject = NoProject
		if len(s.Projects) > 0 {
			s.ActiveProject = s.Projects[0].ID
		}
	}
	return s
}
