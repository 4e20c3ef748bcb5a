package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "git.sr.ht/~spc/go-log"
	"github.com/BurntSushi/toml"
	"github.com/briandowns/spinner"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/fatih/color"
	"github.com/google/renameio/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/confstack/confstack/internal/conf"
	"github.com/confstack/confstack/internal/l10n"
	"github.com/confstack/confstack/internal/resolver"
)

// resolveOrExit runs one resolution pass, always rendering whatever issues
// were found. A nil view with a nil error never happens; a nil view means
// the returned error carries the failure.
func resolveOrExit(c *cli.Context) (*conf.View, []conf.Issue, error) {
	view, issues, err := buildResolver(c).Resolve()
	if err != nil {
		var invalid *conf.InvalidConfigError
		if errors.As(err, &invalid) {
			conf.RenderIssues(c.App.ErrWriter, issues, !color.NoColor)
			return nil, issues, cli.Exit(l10n.T("configuration is invalid"), 1)
		}
		return nil, nil, cli.Exit(err.Error(), 1)
	}
	return view, issues, nil
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: l10n.T("validate the resolved configuration and report every issue"),
		Action: func(c *cli.Context) error {
			_, issues, err := resolveOrExit(c)
			if err != nil {
				return err
			}
			conf.RenderIssues(c.App.Writer, issues, !color.NoColor)
			if len(issues) > 0 {
				fmt.Fprintln(c.App.Writer, l10n.TN(
					"configuration is valid with %d warning",
					"configuration is valid with %d warnings",
					uint32(len(issues)), len(issues)))
			} else {
				fmt.Fprintln(c.App.Writer, l10n.T("configuration is valid"))
			}
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: l10n.T("print every resolved value with its originating source"),
		Action: func(c *cli.Context) error {
			view, _, err := resolveOrExit(c)
			if err != nil {
				return err
			}
			view.Walk(func(path string, val conf.Value, origin string) {
				fmt.Fprintf(c.App.Writer, "%s = %s  # from %s\n", path, val, origin)
			})
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     l10n.T("print one resolved value"),
		ArgsUsage: "<key-path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(l10n.T("get takes exactly one key path"), 2)
			}
			view, _, err := resolveOrExit(c)
			if err != nil {
				return err
			}
			path := c.Args().First()
			val, ok := view.Get(path)
			if !ok {
				return cli.Exit(l10n.T("key %q is not set", path), 1)
			}
			fmt.Fprintln(c.App.Writer, val.String())
			return nil
		},
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: l10n.T("write the resolved configuration as a single TOML document"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   l10n.T("output file; written atomically, stdout when omitted"),
			},
		},
		Action: func(c *cli.Context) error {
			view, _, err := resolveOrExit(c)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := toml.NewEncoder(&buf).Encode(view.ToMap()); err != nil {
				return cli.Exit(fmt.Sprintf("failed to encode configuration: %v", err), 1)
			}

			out := c.String("out")
			if out == "" {
				fmt.Fprint(c.App.Writer, buf.String())
				return nil
			}
			if err := renameio.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return cli.Exit(fmt.Sprintf("failed to write %s: %v", out, err), 1)
			}
			log.Infof("wrote resolved configuration to %s", out)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: l10n.T("re-resolve whenever a configuration file changes"),
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var spin *spinner.Spinner
			if term.IsTerminal(int(os.Stdout.Fd())) {
				spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				spin.Suffix = " " + l10n.T("watching for configuration changes")
			}

			if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
				log.Debugf("sd_notify failed: %v", err)
			} else if sent {
				log.Debugf("sd_notify: readiness reported")
			}

			err := buildResolver(c).Watch(ctx, func(result resolver.Result) {
				if spin != nil {
					spin.Stop()
				}
				reportPass(c, result)
				if spin != nil {
					spin.Start()
				}
			})
			if spin != nil {
				spin.Stop()
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

func reportPass(c *cli.Context, result resolver.Result) {
	if result.Err != nil {
		var invalid *conf.InvalidConfigError
		if errors.As(result.Err, &invalid) {
			conf.RenderIssues(c.App.ErrWriter, result.Issues, !color.NoColor)
			log.Errorf("pass %s: configuration is invalid", result.Pass)
			return
		}
		log.Errorf("pass %s: %v", result.Pass, result.Err)
		return
	}
	conf.RenderIssues(c.App.Writer, result.Issues, !color.NoColor)
	log.Infof("pass %s: configuration resolved with %d issue(s)", result.Pass, len(result.Issues))
}
