// Command brushwork evaluates a brush script and reports the scene it
// builds. It can export the brushes as STL and re-run the script whenever
// the file changes.
//
//	brushwork [-config brushwork.toml] [-stl out.stl] [-preview] [-watch] [-v] script.bw
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/chazu/brushwork/pkg/config"
	"github.com/chazu/brushwork/pkg/logging"
)

type options struct {
	config  string
	stl     string
	preview bool
	watch   bool
	verbose bool
	script  string
}

var errUsage = errors.New("usage: brushwork [flags] script.bw")

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("brushwork", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.config, "config", "", "TOML settings file")
	fs.StringVar(&o.stl, "stl", "", "write the brushes to this STL file")
	fs.BoolVar(&o.preview, "preview", false, "export a sampled union instead of exact brush meshes")
	fs.BoolVar(&o.watch, "watch", false, "re-run the script whenever it changes")
	fs.BoolVar(&o.verbose, "v", false, "log at debug level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errUsage
	}
	o.script = fs.Arg(0)
	return o, nil
}

func loadConfig(o options) (*config.Config, error) {
	if o.config == "" {
		return config.Default(), nil
	}
	return config.Load(o.config)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	level := cfg.Level()
	if o.verbose {
		level = log.DebugLevel
	}
	logging.SetDefault(logging.New(stderr, level))

	app := NewApp(cfg)
	once := func() error {
		source, err := os.ReadFile(o.script)
		if err != nil {
			return err
		}
		rep := app.Evaluate(ctx, string(source))
		printReport(stdout, o.script, rep)
		if !rep.OK() {
			return rep.Err()
		}
		if o.stl != "" {
			return app.Export(o.stl, rep, o.preview)
		}
		return nil
	}

	if !o.watch {
		return once()
	}
	if err := once(); err != nil {
		logging.For("watch").Error("run failed", "err", err)
	}
	return watch(ctx, o.script, func() {
		if err := once(); err != nil {
			logging.For("watch").Error("run failed", "err", err)
		}
	})
}

func printReport(w io.Writer, name string, rep Report) {
	if rep.Fatal != nil {
		fmt.Fprintf(w, "%s: %v\n", name, rep.Fatal)
		return
	}
	for _, e := range rep.Errors {
		fmt.Fprintf(w, "%s:%s\n", name, e.Error())
	}
	if rep.Document == nil {
		return
	}
	s := rep.Stats
	fmt.Fprintf(w, "%s: %d nodes, %d brushes, %d entities\n", name, rep.Document.NodeCount(), s.Brushes, s.Entities)
	if s.Brushes > 0 {
		fmt.Fprintf(w, "  faces %d, vertices %d, meshes %d\n", s.Faces, s.Vertices, len(rep.Meshes))
		fmt.Fprintf(w, "  size %.4g x %.4g x %.4g\n", s.Size.X, s.Size.Y, s.Size.Z)
		fmt.Fprintf(w, "  volume %.6g, area %.6g\n", s.Volume, s.Area)
	}
	for _, wn := range rep.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", wn.Message)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		logging.Error("brushwork failed", "err", err)
		os.Exit(1)
	}
}
