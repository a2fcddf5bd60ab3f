package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ben-daghir/hercap/internal/application/interaction"
	"github.com/ben-daghir/hercap/internal/application/render"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/platform"
)

type renderOptions struct {
	width  float64
	height float64
	out    string
}

// NewRenderCmd creates the render command, which writes the initial frame
// of a view as SVG.
func NewRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:       "render globe|sector",
		Short:     "Render a view of the portfolio to SVG",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{render.ViewGlobe, render.ViewSector},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height (default from config)")
	cmd.Flags().StringVar(&opts.out, "out", "-", "output file, - for stdout")
	return cmd
}

func runRender(cmd *cobra.Command, view string, opts *renderOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := cliCtx.commandContext(cmd)
	defer cancel()

	ps, err := cliCtx.openPortfolio(ctx)
	defer ps.Close()
	if err != nil {
		return err
	}

	world := platform.LoadWorld(ctx, cliCtx.Config.Geometry, ps.infra, cliCtx.Logger)
	factory := interaction.NewControllerFactory(ps.service, world, cliCtx.Config.Globe, cliCtx.Config.Sector)
	ctrl, err := factory(ctx, view, opts.width, opts.height)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" && opts.out != "-" {
		f, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := render.EncodeSVG(w, ctrl.Scene()); err != nil {
		return err
	}
	if opts.out != "" && opts.out != "-" {
		cliCtx.Logger.Info("wrote svg", logging.String("view", view), logging.String("path", opts.out))
	}
	return nil
}

//Personal.AI order the ending
