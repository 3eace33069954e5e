package userlog

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

func init() {
	// Skipped-file lines use the debug printer; without this they would be
	// swallowed in dry runs.
	pterm.EnableDebugMessages()
}

// 📢 Logger provides user-friendly terminal feedback, mirrored into zerolog
// for debugging
type Logger struct {
	log zerolog.Logger
}

// 🎨 ChangeType represents the kind of change made to a file
type ChangeType int

const (
	FilePatched ChangeType = iota
	FileUnchanged
	FileSkipped
	FileError
)

// 🖼️ FileChange represents one per-file outcome to report
type FileChange struct {
	Type        ChangeType
	Path        string
	Description string
	Error       error
}

// 🎯 New creates a user logger bound to the context's zerolog logger
func New(ctx context.Context) *Logger {
	return &Logger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📝 LogFileChange reports a file change with appropriate prefix and color
func (u *Logger) LogFileChange(change FileChange) {
	var printer *pterm.PrefixPrinter
	var action string
	switch change.Type {
	case FilePatched:
		action = "Patched"
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: "✓"})
	case FileUnchanged:
		action = "Unchanged"
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: "•"})
	case FileSkipped:
		action = "Skipped"
		printer = pterm.Debug.WithPrefix(pterm.Prefix{Text: "-"})
	case FileError:
		action = "Error"
		printer = pterm.Error.WithPrefix(pterm.Prefix{Text: "✗"})
	default:
		action = "Unknown"
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: "?"})
	}

	msg := fmt.Sprintf("%s %s", action, change.Path)
	if change.Description != "" {
		msg += fmt.Sprintf(" (%s)", change.Description)
	}

	if change.Error != nil {
		printer.Println(msg)
		pterm.Error.Println(change.Error)
		u.log.Error().Err(change.Error).Msg(msg)
	} else {
		printer.Println(msg)
		u.log.Info().Msg(msg)
	}
}

// 📊 LogSummary reports the end-of-run summary
func (u *Logger) LogSummary(description string) {
	printer := pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"})
	printer.Println(description)
	u.log.Info().Msg(description)
}

// ℹ️ LogInfo reports a plain informational line
func (u *Logger) LogInfo(description string) {
	pterm.Info.Println(description)
	u.log.Info().Msg(description)
}
