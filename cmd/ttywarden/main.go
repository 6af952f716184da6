//go:build linux

// ttywarden audits interactive shell sessions that have gone idle past
// a safety threshold and applies a graduated response: warnings for
// administrators, warn-then-kill for ordinary users. Periodic invocation
// is left to an external scheduler; --cron enables the throttled mode
// that avoids repeating the same warning every run.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/urfave/cli/v2"

	"ttywarden/audit"
	"ttywarden/config"
	"ttywarden/notify"
	"ttywarden/policy"
	"ttywarden/session"
	"ttywarden/session_linux"
	"ttywarden/throttle"
)

func main() {
	app := &cli.App{
		Name:  "ttywarden",
		Usage: "warn about and terminate idle privileged terminal sessions",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "cron",
				Value: false,
				Usage: "throttled mode for frequent scheduled runs",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Value: false,
				Usage: "report instead of delivering SIGHUP",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Value: false,
				Usage: "trace per-process skip decisions",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log := logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "ttywarden"))
		log.Warn("run failed: ", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() > 0 {
		return fmt.Errorf("unexpected argument %q", c.Args().First())
	}

	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	drivers, err := session_linux.LoadDrivers(session_linux.DriversPath)
	if err != nil {
		return err
	}
	if drivers.Empty() {
		return fmt.Errorf("no terminal drivers recognized in %s", session_linux.DriversPath)
	}
	shells, err := session_linux.LoadShells(session_linux.ShellsPath)
	if err != nil {
		return err
	}
	sessions, err := session_linux.LoadSessions(session_linux.UtmpPath)
	if err != nil {
		return err
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	pol := policy.Default()
	pol.EveryoneOrdinary = settings.EveryoneOrdinary

	deps := audit.Deps{
		Source:    session_linux.NewSource(),
		Drivers:   drivers,
		Shells:    shells,
		Sessions:  sessions,
		Groups:    session_linux.NewUserGroups(),
		Mux:       session.NewMuxSet(settings.Multiplexers...),
		IdleSince: session_linux.TTYModTime,
		Now:       time.Now,
		Policy:    pol,
		LastRun:   throttle.New(settings.StateDir),
		Notifier:  notify.New(os.Stdout, c.Bool("dry-run"), true),
		Killer:    session_linux.HUPKiller{},
		Exempt:    settings.ExemptGroup,
		AllUsers:  settings.AllUsers,
		Hostname:  hostname,
	}
	opts := audit.Options{
		Cron:  c.Bool("cron"),
		Debug: c.Bool("debug"),
	}
	return audit.Run(deps, opts)
}
