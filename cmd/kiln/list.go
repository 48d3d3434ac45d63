// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed libraries and executables",
		Long:  `List the libraries in <workspace>/lib and the executables in <workspace>/bin of every workspace in the search path.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.listInstalled(cmd.Context())
		},
	}
}

func (a *App) listInstalled(ctx context.Context) error {
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	for i, ws := range s.searchPath {
		if i > 0 {
			fmt.Fprintln(a.stdout)
		}
		listing, err := s.builder.ListInstalled(ws)
		if err != nil {
			return a.fail(s.cfg, err)
		}

		fmt.Fprintln(a.stdout, TitleStyle.Render(ws.Root()))
		fmt.Fprintf(a.stdout, "%s:\n", PkgStyle.Render("libraries"))
		if len(listing.Libraries) == 0 {
			fmt.Fprintf(a.stdout, "  %s\n", SubtitleStyle.Render("(none installed)"))
		}
		for _, lib := range listing.Libraries {
			fmt.Fprintf(a.stdout, "  %s %s %s\n", lib.Name, lib.Version, SubtitleStyle.Render(lib.Hash))
		}

		fmt.Fprintf(a.stdout, "%s:\n", PkgStyle.Render("executables"))
		if len(listing.Executables) == 0 {
			fmt.Fprintf(a.stdout, "  %s\n", SubtitleStyle.Render("(none installed)"))
		}
		for _, exe := range listing.Executables {
			fmt.Fprintf(a.stdout, "  %s\n", filepath.Base(exe))
		}
	}
	return nil
}
