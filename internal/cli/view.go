package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/internal/treefile"
)

// viewOpts holds the command-line flags for the view and demo commands.
type viewOpts struct {
	config     string  // TOML configuration file
	watch      bool    // reload the tree when the file changes
	script     string  // JSON input script
	exit       bool    // exit when the script finishes
	outline    bool    // draw treemap outlines
	offset     float64 // treemap sibling padding in percent
	hud        bool    // show the stats overlay
	gradients  bool    // gradient fills
	circles    bool    // SDF circle shader
	screenshot string  // screenshot directory override
}

func (o *viewOpts) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.config, "config", "c", "", "TOML configuration file")
	cmd.Flags().StringVar(&o.script, "script", "", "JSON input script to play back")
	cmd.Flags().BoolVar(&o.exit, "exit", false, "exit when the script finishes")
	cmd.Flags().BoolVar(&o.hud, "hud", false, "show renderer stats")
	cmd.Flags().BoolVar(&o.gradients, "gradients", false, "draw fills with the gradient shader")
	cmd.Flags().BoolVar(&o.circles, "circle-shaders", false, "draw circles with the SDF circle shader")
	cmd.Flags().StringVar(&o.screenshot, "screenshot-dir", "", "directory for screenshots")
}

// apply overlays the flags the user set on cfg.
func (o *viewOpts) apply(cmd *cobra.Command, cfg *arbor.Config) {
	f := cmd.Flags()
	if f.Changed("outline") {
		cfg.Treemap.Outline = o.outline
	}
	if f.Changed("offset") {
		cfg.Treemap.Offset = o.offset
	}
	if f.Changed("hud") {
		cfg.Window.HUD = o.hud
	}
	if f.Changed("gradients") {
		cfg.Renderer.Gradients = o.gradients
	}
	if f.Changed("circle-shaders") {
		cfg.Renderer.CircleShaders = o.circles
	}
	if f.Changed("screenshot-dir") {
		cfg.Window.ScreenshotDir = o.screenshot
	}
}

func newViewCmd() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [tree]",
		Short: "Open an interactive treemap of a JSON or YAML tree",
		Long: `Open an interactive treemap of a JSON or YAML tree.

Controls:
  drag          pan
  wheel         zoom (rotate while a button is held)
  click         select a node and zoom to it
  Q / E         rotate
  W / A / S / D pan
  R / F         zoom in / out
  T             reset the camera`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args[0], &opts)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload the tree when the file changes")
	cmd.Flags().BoolVar(&opts.outline, "outline", true, "draw rectangle outlines")
	cmd.Flags().Float64Var(&opts.offset, "offset", 0, "padding between siblings in percent [0, 25]")
	return cmd
}

func runView(cmd *cobra.Command, path string, opts *viewOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	opts.apply(cmd, &cfg)

	p := newProgress(logger)
	tree, err := treefile.Load(path)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Loaded %s: %d nodes, depth %d", path, tree.Len(), tree.MaxDepth()))

	view, err := arbor.NewView(tree, cfg)
	if err != nil {
		return err
	}
	if err := attachScript(view, opts); err != nil {
		return err
	}
	view.OnSelect = func(n *arbor.Node) {
		logger.Info("Selected", "id", n.ID, "label", n.Label)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if opts.watch {
		g.Go(func() error {
			return watchTree(gctx, path, view.SetTree, logger)
		})
	}

	runErr := arbor.Run(view)
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Join(runErr, err)
	}
	if runErr == nil && view.InitErr() != nil {
		return view.InitErr()
	}
	return runErr
}

func attachScript(view *arbor.View, opts *viewOpts) error {
	if opts.script == "" {
		return nil
	}
	data, err := os.ReadFile(opts.script)
	if err != nil {
		return err
	}
	s, err := arbor.LoadScript(data)
	if err != nil {
		return err
	}
	view.SetScript(s)
	view.ExitWhenScriptDone = opts.exit
	return nil
}

func newDemoCmd() *cobra.Command {
	var opts viewOpts
	var depth, fanout int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Open the primitive showcase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.config)
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)
			cfg.Window.Title = "arbor demo"

			tree, err := treefile.Balanced(depth, fanout)
			if err != nil {
				return err
			}
			view, err := arbor.NewView(tree, cfg, arbor.WithLayout(arbor.Showcase{}))
			if err != nil {
				return err
			}
			if err := attachScript(view, &opts); err != nil {
				return err
			}
			return arbor.Run(view)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().IntVar(&depth, "depth", 2, "depth of the generated tree")
	cmd.Flags().IntVar(&fanout, "fanout", 4, "children per node of the generated tree")
	return cmd
}
