package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/slug"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "List the approved projects in the public gallery",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := views.NewGallery(uuid.NewString(), newDirectory(), nil)
		defer g.Close()

		if err := g.Mount(cmd.Context(), slug.ProjectsPrefix); err != nil {
			return errors.New(g.Snapshot().Message)
		}
		return printJSON(cmd.OutOrStdout(), g.Snapshot().Projects)
	},
}

var projectCmd = &cobra.Command{
	Use:   "project <path> | project <artist> <project>",
	Short: "Open a project page",
	Long: `Open a project page by URL path (/projects/jane-doe/my-art) or by
artist and project name. The output shows which mint panel the page offers.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := views.NewGallery(uuid.NewString(), newDirectory(), nil)
		defer g.Close()

		if err := g.Mount(cmd.Context(), projectPath(args)); err != nil {
			return errors.New(g.Snapshot().Message)
		}
		v := g.Snapshot()
		if v.Project == nil {
			return fmt.Errorf("%q is not a project page", v.Path)
		}
		return printJSON(cmd.OutOrStdout(), v.Project)
	},
}

func projectPath(args []string) string {
	if len(args) == 2 {
		return slug.ProjectPath(args[0], args[1])
	}
	return args[0]
}
