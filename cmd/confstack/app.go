package main

import (
	"os"

	log "git.sr.ht/~spc/go-log"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/confstack/confstack/internal/conf"
	"github.com/confstack/confstack/internal/l10n"
	"github.com/confstack/confstack/internal/resolver"
	"github.com/confstack/confstack/internal/settings"
)

// Version is set at build time via -ldflags.
var Version = "0.0.0-devel"

func newApp() *cli.App {
	return &cli.App{
		Name:     "confstack",
		Version:  Version,
		Metadata: make(map[string]interface{}),
		Usage:    l10n.T("resolve, validate and inspect layered tool configuration"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "settings",
				Usage: l10n.T("path to the tool's own confstack.ini"),
			},
			&cli.StringFlag{
				Name:    "project",
				Aliases: []string{"p"},
				Usage:   l10n.T("project configuration file to resolve"),
			},
			&cli.StringFlag{
				Name:  "drop-in-dir",
				Usage: l10n.T("directory of *.toml override fragments"),
			},
			&cli.StringFlag{
				Name:  "env-prefix",
				Usage: l10n.T("prefix of environment variables forming the top layer"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: l10n.T("logging level (trace, debug, info, warn, error)"),
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: l10n.T("disable colored output"),
			},
			&cli.BoolFlag{
				Name:  "no-defaults",
				Usage: l10n.T("skip the built-in schema defaults layer"),
			},
			&cli.BoolFlag{
				Name:  "no-env",
				Usage: l10n.T("skip the environment override layer"),
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			checkCommand(),
			showCommand(),
			getCommand(),
			renderCommand(),
			watchCommand(),
		},
	}
}

// setup resolves the tool's own settings (flags over environment over
// confstack.ini over defaults) and configures logging and color before any
// command runs.
func setup(c *cli.Context) error {
	flags := &settings.Settings{}
	if c.IsSet("log-level") {
		flags.LogLevel = c.String("log-level")
	}
	if c.IsSet("project") {
		flags.Project = c.String("project")
	}
	if c.IsSet("drop-in-dir") {
		flags.DropInDir = c.String("drop-in-dir")
	}
	if c.IsSet("env-prefix") {
		flags.EnvPrefix = c.String("env-prefix")
	}
	if c.Bool("no-color") {
		flags.NoColor = true
	}

	resolved, err := settings.Load(flags, c.String("settings"))
	if err != nil {
		return err
	}

	level, err := log.ParseLevel(resolved.LogLevel)
	if err != nil {
		level = log.LevelInfo
		log.Warnf("unknown log level %q, using info", resolved.LogLevel)
	}
	log.SetLevel(level)

	if resolved.NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	c.App.Metadata["settings"] = resolved
	return nil
}

func currentSettings(c *cli.Context) *settings.Settings {
	s, _ := c.App.Metadata["settings"].(*settings.Settings)
	return s
}

// buildResolver assembles the source stack in ascending rank: schema
// defaults, project file, drop-ins, environment. The environment layer
// sits on top; an exported override beats anything written in a file.
func buildResolver(c *cli.Context) *resolver.Resolver {
	s := currentSettings(c)
	registry := conf.BuiltinRegistry()

	var sources []conf.Source
	rank := 0
	if !c.Bool("no-defaults") {
		sources = append(sources, registry.DefaultsSource(rank))
		rank++
	}

	// The project file may not exist yet; the resolver skips missing
	// file-backed sources on each pass, and watch picks the file up once
	// it appears.
	sources = append(sources, conf.Source{Name: s.Project, Path: s.Project, Rank: rank})
	rank++

	dropInRank := rank
	rank += 100 // room for drop-in fragments

	if !c.Bool("no-env") {
		sources = append(sources, conf.EnvSource(s.EnvPrefix, os.Environ(), rank))
	}

	return resolver.New(registry, sources).WithDropIns(s.DropInDir, dropInRank)
}
