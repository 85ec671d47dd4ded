package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"codesnap/editor"
	"codesnap/library"
	"codesnap/render"
	"codesnap/snap"
	"codesnap/snapfile"
)

const version = "0.4.0"

// app holds what every command needs once flags are parsed.
type app struct {
	configPath  string
	logPath     string
	libraryPath string

	cfg      *Config
	log      *slog.Logger
	closeLog io.Closer
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v, using defaults\n", err)
	}
	if a.libraryPath != "" {
		cfg.LibraryPath = expandPath(a.libraryPath, "")
	}
	log, closer, err := setupLogger(cfg, a.logPath)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.closeLog = cfg, log, closer
	return nil
}

func (a *app) teardown() error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog.Close()
}

func (a *app) openLibrary() (*library.SQLite, error) {
	if a.cfg.LibraryPath == "" {
		return nil, fmt.Errorf("no library path configured")
	}
	return library.OpenSQLite(a.cfg.LibraryPath,
		library.WithPolicy(a.cfg.AssetPolicy()),
		library.WithLogger(a.log),
	)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "codesnap [file]",
		Short: "Code screenshot canvas editor",
		Long: `Compose code screenshots on a canvas: code windows, text, arrows,
shapes and images over a solid or gradient background.

Examples:
  codesnap                         # Start the editor
  codesnap demo.snap               # Open a project in the editor
  codesnap export demo.snap -o demo.png
  codesnap library list`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runEditor(a, path)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", defaultConfigPath(), "config file")
	pf.StringVar(&a.logPath, "log", "", "write logs to this file")
	pf.StringVar(&a.libraryPath, "library", "", "library database (overrides the config)")

	root.AddCommand(
		newNewCmd(a),
		newExportCmd(a),
		newInfoCmd(a),
		newLibraryCmd(a),
	)
	return root
}

func newNewCmd(a *app) *cobra.Command {
	var title, aspect string
	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create an empty project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed := editor.New(editor.WithLogger(a.log))
			patch := editor.MetaPatch{}
			if title != "" {
				patch.Title = &title
			}
			if aspect != "" {
				if _, ok := snap.LookupAspect(aspect); !ok && !snap.IsCustomAspect(aspect) {
					return fmt.Errorf("unknown aspect %q (want %s or \"Custom WxH\")", aspect, aspectNames())
				}
				patch.Aspect = &aspect
			}
			ed.UpdateMeta(patch)

			path, err := snapfile.WriteFile(a.cfg.GetSavePath(args[0]), ed.Snap())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "canvas title")
	cmd.Flags().StringVar(&aspect, "aspect", "", "canvas aspect: "+aspectNames())
	return cmd
}

func aspectNames() string {
	names := make([]string, len(snap.AspectPresets))
	for i, p := range snap.AspectPresets {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func newExportCmd(a *app) *cobra.Command {
	var out string
	var scale float64
	cmd := &cobra.Command{
		Use:   "export <file.snap>",
		Short: "Render a project to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, rep, err := snapfile.ReadFile(args[0])
			if err != nil {
				return err
			}
			for _, w := range rep.Warnings {
				a.log.Warn("export", "path", args[0], "warning", w)
			}
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
			}
			if scale <= 0 {
				scale = a.cfg.ExportScale
			}
			r := render.New(render.Options{Scale: scale, Logger: a.log})
			if err := r.ExportPNG(out, s); err != nil {
				return err
			}
			w, h := r.Size(s)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%dx%d)\n", out, w, h)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output PNG (default: next to the input)")
	cmd.Flags().Float64Var(&scale, "scale", 0, "pixel ratio (default: export_scale from the config)")
	return cmd
}

// snapInfo is the summary printed by the info command.
type snapInfo struct {
	Path     string         `json:"path"`
	Version  string         `json:"version"`
	Title    string         `json:"title"`
	Aspect   string         `json:"aspect"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Elements map[string]int `json:"elements"`
	Warnings []string       `json:"warnings,omitempty"`
}

func newInfoCmd(_ *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info <file.snap>",
		Short: "Show a project's canvas and element counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, rep, err := snapfile.ReadFile(args[0])
			if err != nil {
				return err
			}
			info := snapInfo{
				Path:     args[0],
				Version:  rep.SourceVersion,
				Title:    s.Meta.Title,
				Aspect:   s.Meta.Aspect,
				Width:    s.Meta.Width,
				Height:   s.Meta.Height,
				Elements: make(map[string]int),
				Warnings: rep.Warnings,
			}
			countElements(s.Elements, info.Elements)
			if err := snap.Validate(s); err != nil {
				info.Warnings = append(info.Warnings, err.Error())
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintf(out, "Title:   %s\n", info.Title)
			fmt.Fprintf(out, "Canvas:  %s (%dx%d)\n", info.Aspect, info.Width, info.Height)
			fmt.Fprintf(out, "Version: %s\n", info.Version)
			types := make([]string, 0, len(info.Elements))
			for t := range info.Elements {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				fmt.Fprintf(out, "  %-6s %d\n", t, info.Elements[t])
			}
			for _, w := range info.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func countElements(els []snap.Element, counts map[string]int) {
	for i := range els {
		counts[string(els[i].Type)]++
		countElements(els[i].Elements, counts)
	}
}

func newLibraryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage saved snaps",
	}

	withStore := func(fn func(ctx context.Context, st library.Store, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			db, err := a.openLibrary()
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(cmd.Context(), db, cmd, args)
		}
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved snaps, newest first",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, st library.Store, cmd *cobra.Command, _ []string) error {
			entries, err := st.List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No saved snaps")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %-24s %-6s %3d elements  %s\n",
					e.ID, truncate(e.Title, 24), e.Aspect, e.Elements, e.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		}),
	}

	var id string
	save := &cobra.Command{
		Use:   "save <file.snap>",
		Short: "Store a project file in the library",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, st library.Store, cmd *cobra.Command, args []string) error {
			s, _, err := snapfile.ReadFile(args[0])
			if err != nil {
				return err
			}
			saved, err := st.Save(ctx, id, s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), saved)
			return nil
		}),
	}
	save.Flags().StringVar(&id, "id", "", "overwrite this entry instead of creating one")

	var out string
	load := &cobra.Command{
		Use:   "load <id>",
		Short: "Write a saved snap to a project file",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, st library.Store, cmd *cobra.Command, args []string) error {
			s, err := st.Load(ctx, args[0])
			if err != nil {
				return err
			}
			target := out
			if target == "" {
				target = args[0] + snapfile.Ext
			}
			path, err := snapfile.WriteFile(target, s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
	load.Flags().StringVarP(&out, "output", "o", "", "output file (default: <id>.snap)")

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a saved snap",
		Args:    cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, st library.Store, cmd *cobra.Command, args []string) error {
			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, save, load, rm)
	return cmd
}
