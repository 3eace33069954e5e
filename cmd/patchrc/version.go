// Copyright 2025 patchrc authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"
)

// buildDetails is what can be recovered from the binary's build metadata.
type buildDetails struct {
	Version  string
	Revision string
	Time     string
	Modified bool
}

func resolveBuildDetails() buildDetails {
	details := buildDetails{Version: "dev"}

	info, ok := rdebug.ReadBuildInfo()
	if !ok {
		return details
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		details.Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			details.Revision = setting.Value
		case "vcs.time":
			details.Time = setting.Value
		case "vcs.modified":
			details.Modified = setting.Value == "true"
		}
	}

	return details
}

// FormatVersion renders the one-line version banner.
func FormatVersion() string {
	details := resolveBuildDetails()

	revision := details.Revision
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if revision == "" {
		revision = "unknown"
	}
	if details.Modified {
		revision += "+dirty"
	}

	line := fmt.Sprintf("patchrc %s (%s) %s %s/%s",
		details.Version, revision, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if details.Time != "" {
		line += " built " + details.Time
	}
	return line + "\n"
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), FormatVersion())
		},
	}
}
