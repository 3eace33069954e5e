package opts

import (
	"context"

	"github.com/patchrc/patchrc/pkg/config"
	"github.com/patchrc/patchrc/pkg/state"
	"github.com/patchrc/patchrc/pkg/status"
	"github.com/patchrc/patchrc/pkg/userlog"
)

// RootOpts contains shared dependencies used by all commands
type RootOpts struct {
	Config       *config.Config
	BaseDir      string
	StatusMgr    *status.Manager
	StateManager *state.Manager
	UserLogger   *userlog.Logger
}

// Builder constructs RootOpts after flags have been parsed
type Builder func(ctx context.Context) (*RootOpts, error)
