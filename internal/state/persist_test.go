package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chmouel/apollo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apollo", models.StateFilename)

	s := New(models.DefaultRunArgs())
	s.AddProjectByPath("/code/a")
	b := s.AddProjectByPath("/code/b")
	s.AddProjectByPath("/code/c")
	s.SetActiveProject(b)
	s.SetTests(b, groups())
	s.SelectTest(0)

	require.NoError(t, Save(path, s))

	loaded := Load(path, models.DefaultRunArgs())
	require.Len(t, loaded.Projects, 3)
	for i, p := range s.Projects {
		assert.Equal(t, p.ID, loaded.Projects[i].ID)
		assert.Equal(t, p.Path, loaded.Projects[i].Path)
		assert.Nil(t, loaded.Projects[i].Tests, "test data must not be persisted")
		assert.Nil(t, loaded.Projects[i].SelectedTest)
	}
	assert.Equal(t, b, loaded.ActiveProject)
}

func TestSaveWritesExpectedShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), models.StateFilename)
	s := New(models.DefaultRunArgs())
	s.AddProjectByPath("/x")
	s.SetTests(1, groups())
	require.NoError(t, Save(path, s))

	data, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	assert.JSONEq(t, `{"open_projects":[{"id":1,"path":"/x"}],"active_project":1}`, string(data))
}

func TestSaveEmptyState(t *testing.T) {
	path := filepath.Join(t.TempDir(), models.StateFilename)
	require.NoError(t, Save(path, New(models.DefaultRunArgs())))

	data, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	assert.JSONEq(t, `{"open_projects":[],"active_project":0}`, string(data))
}

func TestLoadFallsBackToEmptyState(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		s := Load(filepath.Join(dir, "missing.json"), models.DefaultRunArgs())
		assert.Empty(t, s.Projects)
		assert.Equal(t, NoProject, s.ActiveProject)
		assert.Equal(t, models.DefaultRunArgs(), s.RunArgs)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		s := Load(path, models.RunArgs{Lib: true})
		assert.Empty(t, s.Projects)
		assert.True(t, s.RunArgs.Lib)
	})
}

func TestLoadRepairsInvalidData(t *testing.T) {
	path := filepath.Join(t.TempDir(), models.StateFilename)
	content := `{"open_projects":[
		{"id":2,"path":"/a"},
		{"id":2,"path":"/b"},
		{"id":0,"path":"/c"},
		{"id":7,"path":"/a"},
		{"id":8,"path":""}
	],"active_project":9}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s := Load(path, models.DefaultRunArgs())
	require.Len(t, s.Projects, 3)
	assert.Equal(t, uint32(2), s.Projects[0].ID)
	assert.Equal(t, uint32(3), s.Projects[1].ID)
	assert.Equal(t, uint32(4), s.Projects[2].ID)
	assert.Equal(t, uint32(2), s.ActiveProject, "unknown active id falls back to the first project")
}
