package app

import (
	"github.com/chmouel/apollo/internal/models"
	"github.com/chmouel/apollo/internal/runner"
)

// Messages handled by Model.Update. Screen callbacks return commands that
// produce these instead of mutating the model directly.
type (
	errMsg          struct{ err error }
	runFinishedMsg  struct{ result runner.Result }
	alertExpiredMsg struct{ seq uint64 }
	watchEventMsg   struct{ projectID uint32 }
	openProjectMsg  struct{ path string }
	closeProjectMsg struct{ projectID uint32 }
	runArgsMsg      struct{ args models.RunArgs }
	runProjectMsg   struct{ projectID uint32 }
)
