// Command waymarks curates a local gazetteer from the Geonames dump.
//
// Usage:
//
//	waymarks [-config config.toml] add-cities <country> <city>...
//	waymarks [-config config.toml] ac <country> <city>...
//	waymarks [-config config.toml] import <manifest.yaml>
//	waymarks [-config config.toml] list-countries
//	waymarks [-config config.toml] list-cities <country>
//	waymarks [-config config.toml] fetch [<iso>...]
//
// <country> is a country name or ISO alpha-2 code in any case. Outcomes are
// printed on stdout, logs on stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreiashu/waymarks"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/color"
	"github.com/spf13/afero"
)

var errUsage = errors.New("usage: waymarks [-config path] <add-cities|ac|import|list-countries|list-cities|fetch> [args...]")

func main() {
	if err := run(os.Args[1:]); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err in red, or plain when w is not a terminal.
func printError(w io.Writer, err error) {
	c := color.New()
	c.SetOutput(w)
	fmt.Fprintln(w, c.Red(fmt.Sprintf("Error: %v", err)))
}

func run(args []string) error {
	// A missing .env is normal; it only adds environment overrides.
	_ = godotenv.Load()

	fset := flag.NewFlagSet("waymarks", flag.ContinueOnError)
	configPath := fset.String("config", "", "path to config.toml (default: ./config.toml or embedded defaults)")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() == 0 {
		return errUsage
	}

	cfg, err := waymarks.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	logger := waymarks.NewLogger(os.Stderr).With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fsys := afero.NewOsFs()
	ref := waymarks.NewGeoNames(cfg.GeoNames, fsys, &http.Client{Timeout: cfg.GeoNames.Timeout}, logger)
	g := waymarks.NewGazetteer(cfg.Docs, ref,
		waymarks.WithFs(fsys),
		waymarks.WithLogger(logger),
		waymarks.WithOutput(os.Stdout),
	)

	start := time.Now()
	cmd, rest := fset.Arg(0), fset.Args()[1:]
	logger.Debug("running command", slog.String("command", cmd), slog.Any("args", rest))

	switch cmd {
	case "add-cities", "ac":
		if len(rest) < 1 {
			return fmt.Errorf("%s: missing country", cmd)
		}
		err = g.AddCities(ctx, rest[0], rest[1:])
	case "import":
		if len(rest) != 1 {
			return errors.New("import: expected one manifest path")
		}
		var m waymarks.Manifest
		if m, err = waymarks.LoadManifest(fsys, rest[0]); err == nil {
			err = g.Import(ctx, m)
		}
	case "list-countries":
		var names []string
		if names, err = g.ListCountries(); err == nil {
			for _, n := range names {
				g.Reporter().Country(n)
			}
		}
	case "list-cities":
		if len(rest) != 1 {
			return errors.New("list-cities: expected one country")
		}
		var cities []waymarks.StoredCity
		if _, cities, err = g.ListCities(ctx, rest[0]); err == nil {
			for _, c := range cities {
				g.Reporter().City(c.Name, c.Coordinates)
			}
		}
	case "fetch":
		err = ref.Prefetch(ctx, rest...)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
	if err != nil {
		return err
	}

	g.Reporter().Finished(time.Since(start))
	return nil
}
