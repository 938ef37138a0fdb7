package main

import (
	"fmt"
	"io"
	"os"

	"github.com/carlmjohnson/versioninfo"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/iancoleman/strcase"
	"github.com/urfave/cli/v2"

	"mapview/internal/config"
	"mapview/internal/tui"
)

const CONFIG string = `config`
const LOGFILE string = `logFile`
const LOGLEVEL string = `logLevel`
const ZOOM string = `zoom`
const CENTER string = `center`
const ANGLE string = `angle`
const TILESIZE string = `tileSize`
const NOGRID string = `noGrid`

func envVars(name string) []string {
	return []string{"MAPVIEW_" + strcase.ToScreamingSnake(name)}
}

//nolint:funlen
func main() {
	app := cli.NewApp()
	app.Name = "mapview"
	app.Usage = "A terminal viewer for vector data on a tiled Web-Mercator map"
	app.UsageText = "mapview [flags] [file]"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    CONFIG,
			Aliases: []string{"c"},
			Usage:   "YAML settings file",
			Value:   "mapview.yaml",
			EnvVars: envVars(CONFIG),
		},
		&cli.StringFlag{
			Name:    LOGFILE,
			Usage:   "Write logs to this file. The terminal is owned by the viewer, so logs are discarded without it",
			EnvVars: envVars(LOGFILE),
		},
		&cli.StringFlag{
			Name:    LOGLEVEL,
			Usage:   "Log level: debug, info, warn or error",
			EnvVars: envVars(LOGLEVEL),
		},
		&cli.Float64Flag{
			Name:    ZOOM,
			Aliases: []string{"z"},
			Usage:   "Initial zoom level",
			EnvVars: envVars(ZOOM),
		},
		&cli.Float64SliceFlag{
			Name:    CENTER,
			Usage:   "Initial centre as lon,lat",
			EnvVars: envVars(CENTER),
		},
		&cli.Float64Flag{
			Name:    ANGLE,
			Usage:   "Initial map rotation in degrees",
			EnvVars: envVars(ANGLE),
		},
		&cli.IntFlag{
			Name:    TILESIZE,
			Usage:   "Tile size in braille dots at zoom 0",
			EnvVars: envVars(TILESIZE),
		},
		&cli.BoolFlag{
			Name:    NOGRID,
			Usage:   "Hide the tile grid",
			EnvVars: envVars(NOGRID),
		},
	}

	app.Action = func(c *cli.Context) error {
		cfg, err := config.Load(c.String(CONFIG), !c.IsSet(CONFIG))
		if err != nil {
			return err
		}
		if err := applyFlags(c, &cfg); err != nil {
			return err
		}

		logger, closeLog, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer closeLog()
		logger.Info("starting", "version", versioninfo.Short(), "zoom", cfg.View.Zoom, "tileSize", cfg.View.TileSize)

		var m tui.Model
		if c.Args().Len() > 0 {
			m = tui.NewWithPath(cfg.View, logger, c.Args().First())
		} else {
			m = tui.New(cfg.View, logger)
		}
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
			logger.Error("viewer stopped", "err", err)
			return err
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mapview:", err)
		os.Exit(1)
	}
}

// applyFlags overrides file settings with explicitly set flags.
func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet(LOGFILE) {
		cfg.Log.File = c.String(LOGFILE)
	}
	if c.IsSet(LOGLEVEL) {
		cfg.Log.Level = c.String(LOGLEVEL)
	}
	if c.IsSet(ZOOM) {
		cfg.View.Zoom = c.Float64(ZOOM)
	}
	if c.IsSet(CENTER) {
		center := c.Float64Slice(CENTER)
		if len(center) != 2 {
			return fmt.Errorf("--%s takes lon,lat, got %d values", CENTER, len(center))
		}
		cfg.View.Longitude, cfg.View.Latitude = center[0], center[1]
	}
	if c.IsSet(ANGLE) {
		cfg.View.Angle = c.Float64(ANGLE)
	}
	if c.IsSet(TILESIZE) {
		cfg.View.TileSize = c.Int(TILESIZE)
	}
	if c.IsSet(NOGRID) {
		cfg.View.ShowGrid = !c.Bool(NOGRID)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// newLogger opens the log file named in cfg, or discards output when none is set.
func newLogger(cfg config.Log) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = io.Discard
	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "mapview",
		ReportTimestamp: true,
	})
	return logger, closeFn, nil
}
