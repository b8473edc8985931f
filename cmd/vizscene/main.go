package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/inamate/vizscene/internal/engine"
	"github.com/inamate/vizscene/internal/sample"
	"github.com/inamate/vizscene/internal/scene"
	"github.com/inamate/vizscene/internal/snapshot"
)

var (
	atMs       float64
	outPath    string
	outDir     string
	width      int
	height     int
	background string
	workers    int
	dumpFormat string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "vizscene",
		Short:        "validate, evaluate and render animation scenes",
		SilenceUsage: true,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "check scene files (JSON or YAML)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  validateScenes,
	}

	evalCmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "print every layer's resolved properties at a time offset",
		Args:  cobra.ExactArgs(1),
		RunE:  evalScene,
	}
	evalCmd.Flags().Float64Var(&atMs, "t", 0, "time offset in milliseconds")

	renderCmd := &cobra.Command{
		Use:   "render [file]",
		Short: "render one frame to PNG, SVG or a JSON command list",
		Args:  cobra.ExactArgs(1),
		RunE:  renderFrame,
	}
	renderCmd.Flags().Float64Var(&atMs, "t", 0, "time offset in milliseconds")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "frame.png", "output file; the extension picks the format")
	addCanvasFlags(renderCmd)

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "render every frame at the scene's fps to numbered PNG files",
		Args:  cobra.ExactArgs(1),
		RunE:  exportFrames,
	}
	exportCmd.Flags().StringVarP(&outDir, "out", "o", "frames", "output directory")
	exportCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "parallel renderers")
	addCanvasFlags(exportCmd)

	samplesCmd := &cobra.Command{
		Use:   "samples [name]",
		Short: "list the built-in scenes, or dump one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showSamples,
	}
	samplesCmd.Flags().StringVar(&dumpFormat, "format", "json", "dump format (json or yaml)")

	rootCmd.AddCommand(validateCmd, evalCmd, renderCmd, exportCmd, samplesCmd)
	return rootCmd
}

func addCanvasFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", snapshot.DefaultWidth, "canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", snapshot.DefaultHeight, "canvas height in pixels")
	cmd.Flags().StringVar(&background, "bg", snapshot.DefaultBackground, "background color")
}

// loadScene reads a scene file, or a built-in sample when the argument is
// written as sample:<name>.
func loadScene(arg string) (*scene.Scene, error) {
	if name, ok := strings.CutPrefix(arg, "sample:"); ok {
		smp, found := sample.Get(name)
		if !found {
			return nil, fmt.Errorf("unknown sample %q (have %s)", name, strings.Join(sample.Names(), ", "))
		}
		return smp.Scene, nil
	}
	return scene.ReadFile(arg)
}

func validateScenes(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		s, err := loadScene(path)
		if err != nil {
			failed++
			var verr *scene.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(out, "%s: invalid\n", path)
				for _, f := range verr.Fields {
					fmt.Fprintf(out, "  %s\n", f)
				}
				continue
			}
			fmt.Fprintf(out, "%s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "%s: ok (%s, %d layers, %gms at %gfps)\n", path, s.ID, len(s.Layers), s.DurationMs, s.FPS)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenes failed validation", failed, len(args))
	}
	return nil
}

func evalScene(cmd *cobra.Command, args []string) error {
	s, err := loadScene(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAYER\tTYPE\tPROPERTIES")
	for _, l := range engine.ResolveScene(s, atMs) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", l.ID, l.Type, formatProps(l.Props))
	}
	return w.Flush()
}

func formatProps(p scene.Props) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		v := p[k]
		if f, ok := p.Number(k); ok {
			parts[i] = fmt.Sprintf("%s=%.4g", k, f)
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			parts[i] = fmt.Sprintf("%s=%v", k, v)
			continue
		}
		parts[i] = k + "=" + string(data)
	}
	return strings.Join(parts, " ")
}

func canvasOptions() snapshot.Options {
	return snapshot.Options{Width: width, Height: height, Background: background}
}

func renderFrame(cmd *cobra.Command, args []string) error {
	s, err := loadScene(args[0])
	if err != nil {
		return err
	}
	return writeFrame(cmd.ErrOrStderr(), s, atMs, outPath)
}

func writeFrame(warn io.Writer, s *scene.Scene, t float64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	issues, err := snapshot.Write(f, s, t, snapshot.FormatFromPath(path), canvasOptions())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	for _, issue := range issues {
		fmt.Fprintf(warn, "%s @%gms: %v\n", filepath.Base(path), t, issue)
	}
	return err
}

func exportFrames(cmd *cobra.Command, args []string) error {
	s, err := loadScene(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	n := s.FrameCount()
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(workers, 1))

	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(outDir, fmt.Sprintf("frame_%05d.png", i))
			return writeFrame(cmd.ErrOrStderr(), s, s.FrameTime(i), path)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", n, outDir)
	return nil
}

func showSamples(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDURATION\tLAYERS")
		for _, name := range sample.Names() {
			smp, _ := sample.Get(name)
			fmt.Fprintf(w, "%s\t%gms\t%d\n", name, smp.Scene.DurationMs, len(smp.Scene.Layers))
		}
		return w.Flush()
	}

	smp, ok := sample.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown sample %q", args[0])
	}

	format := scene.FormatJSON
	if dumpFormat == "yaml" {
		format = scene.FormatYAML
	}
	data, err := scene.Encode(smp.Scene, format)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
