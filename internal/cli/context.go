// Package cli provides the command-line interface for the uaenergy application.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/uaenergy/news/internal/app"
)

var errAppNotInitialized = errors.New("application not initialized")

// globalApp is the Application of the running command. Cobra runs one command
// per process, so a single reference is enough.
var globalApp *app.Application

// SetApp stores the Application for the running command
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	globalApp = a
}

// GetAppFromCmd retrieves the Application for cmd
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	if cmd == nil {
		return nil
	}
	return globalApp
}

func requireApp(cmd *cobra.Command) (*app.Application, error) {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return nil, errAppNotInitialized
	}
	return a, nil
}
