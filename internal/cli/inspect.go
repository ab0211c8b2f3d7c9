package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/internal/treefile"
)

const defaultInspectTimeout = 30 * time.Second

func newInspectCmd() *cobra.Command {
	var (
		configPath string
		layoutName string
		timeout    time.Duration
		outline    bool
		offset     float64
	)

	cmd := &cobra.Command{
		Use:   "inspect [tree]",
		Short: "Lay a tree out without a window and summarize the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("outline") {
				cfg.Treemap.Outline = outline
			}
			if cmd.Flags().Changed("offset") {
				cfg.Treemap.Offset = offset
			}
			var l arbor.Layout = cfg.TreemapLayout()
			switch layoutName {
			case "treemap":
			case "showcase":
				l = arbor.Showcase{}
			default:
				return fmt.Errorf("invalid layout: %s (must be 'treemap' or 'showcase')", layoutName)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runInspect(ctx, cmd.OutOrStdout(), args[0], l, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	cmd.Flags().StringVar(&layoutName, "layout", "treemap", "layout: treemap, showcase")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultInspectTimeout, "layout timeout")
	cmd.Flags().BoolVar(&outline, "outline", true, "draw rectangle outlines")
	cmd.Flags().Float64Var(&offset, "offset", 0, "padding between siblings in percent [0, 25]")
	return cmd
}

// inspection summarizes one layout run.
type inspection struct {
	nodes, maxDepth int
	commands        int
	pickable        int
	primitives      map[string]int
	styles          map[string]int
	geometries      int
	vertices        int
	shaders         map[string]int
	bounds          arbor.Rect
	elapsed         time.Duration
}

func runInspect(ctx context.Context, w io.Writer, path string, l arbor.Layout, cfg arbor.Config) error {
	logger := loggerFromContext(ctx)

	tree, err := treefile.Load(path)
	if err != nil {
		return err
	}
	stops, err := cfg.GradientStops()
	if err != nil {
		return err
	}
	palette, err := arbor.NewGradientPalette(tree.MaxDepth(), stops)
	if err != nil {
		return err
	}

	worker := arbor.NewWorker()
	defer worker.Close()
	if _, err := worker.Request(tree, l, palette); err != nil {
		return err
	}
	res, err := worker.Await(ctx)
	if err != nil {
		return err
	}
	if res.Err != nil {
		printError(w, "%v", res.Err)
		return res.Err
	}
	logger.Debug("Layout finished", "layout", res.Layout, "elapsed", res.Elapsed)

	in := summarize(tree, res.Commands, cfg.RendererOptions().CompileOptions)
	in.elapsed = res.Elapsed
	printInspection(w, path, res.Layout, in)
	printKeyValue(w, "options", formatOptions(l.Options()))
	return nil
}

func summarize(tree *arbor.Tree, cmds []arbor.DrawCommand, opts arbor.CompileOptions) inspection {
	in := inspection{
		nodes:      tree.Len(),
		maxDepth:   tree.MaxDepth(),
		commands:   len(cmds),
		primitives: make(map[string]int),
		styles:     make(map[string]int),
		shaders:    make(map[string]int),
	}
	minX, minY := 0.0, 0.0
	maxX, maxY := 0.0, 0.0
	for i := range cmds {
		c := &cmds[i]
		in.primitives[c.Primitive.String()]++
		in.styles[c.Style.String()]++
		if c.Pickable() {
			in.pickable++
		}
		b := c.Bounds()
		if i == 0 || b.X < minX {
			minX = b.X
		}
		if i == 0 || b.Y < minY {
			minY = b.Y
		}
		if i == 0 || b.X+b.Width > maxX {
			maxX = b.X + b.Width
		}
		if i == 0 || b.Y+b.Height > maxY {
			maxY = b.Y + b.Height
		}
		for _, g := range arbor.Tessellate(c, i, opts) {
			in.geometries++
			in.vertices += g.Count
			in.shaders[g.Shader.String()]++
		}
	}
	in.bounds = arbor.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	return in
}

func printInspection(w io.Writer, path, layout string, in inspection) {
	printTitle(w, path)
	printKeyValue(w, "layout", layout)
	printKeyValue(w, "nodes", fmt.Sprint(in.nodes))
	printKeyValue(w, "max depth", fmt.Sprint(in.maxDepth))
	printKeyValue(w, "commands", fmt.Sprintf("%d (%d pickable)", in.commands, in.pickable))
	printCounts(w, "primitives", in.primitives)
	printCounts(w, "styles", in.styles)
	printKeyValue(w, "draw calls", fmt.Sprint(in.geometries))
	printKeyValue(w, "vertices", fmt.Sprint(in.vertices))
	printCounts(w, "shaders", in.shaders)
	printKeyValue(w, "bounds", fmt.Sprintf("%.1f,%.1f %.1fx%.1f", in.bounds.X, in.bounds.Y, in.bounds.Width, in.bounds.Height))
	printKeyValue(w, "layout time", in.elapsed.Round(time.Microsecond).String())
}

// formatOptions lists the settings a layout recognizes with their ranges.
func formatOptions(specs []arbor.OptionSpec) string {
	if len(specs) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(specs))
	for _, o := range specs {
		switch o.Kind {
		case arbor.OptionToggle:
			def := "off"
			if o.Default != 0 {
				def = "on"
			}
			parts = append(parts, fmt.Sprintf("%s (toggle, default %s)", o.Key, def))
		case arbor.OptionSlider:
			parts = append(parts, fmt.Sprintf("%s (%g..%g, default %g)", o.Key, o.Min, o.Max, o.Default))
		}
	}
	return strings.Join(parts, ", ")
}
