// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"slices"
	"testing"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestRootCommand_Tree(t *testing.T) {
	t.Parallel()

	root := newRootCommand(NewApp(Dependencies{}))

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"build", "install", "uninstall", "clean", "list", "config"} {
		if !slices.Contains(names, want) {
			t.Errorf("root command lacks %q (has %v)", want, names)
		}
	}

	for _, flag := range []string{"verbose", "config"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("root command lacks --%s", flag)
		}
	}
}

func TestPackageCommands_RequireArguments(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"build", "install", "uninstall", "clean"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := runKiln(t, Dependencies{Config: staticConfig{}, Compiler: &fakeCompiler{}}, name)
			if err == nil {
				t.Errorf("%s without arguments succeeded", name)
			}
		})
	}
}
