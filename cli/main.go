package main

import (
	"fmt"
	"os"

	"github.com/krancour/bizdesk/internal/signals"
	"github.com/krancour/bizdesk/internal/version"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().RunContext(signals.Context(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "\n%s\n\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "bizdesk"
	app.Usage = "Work with the BizDesk business management platform"
	app.Version = fmt.Sprintf(
		"%s -- commit %s",
		version.Version(),
		version.Commit(),
	)
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    flagInsecure,
			Aliases: []string{"k"},
			Usage:   "Allow insecure API server connections when using TLS",
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Usage:   "Log at the specified level; one of debug, info, warn, error",
			EnvVars: []string{"LOG_LEVEL"},
			Value:   "warn",
		},
	}
	app.Commands = []*cli.Command{
		loginCommand,
		logoutCommand,
		registerCommand,
		tenantCommand,
		whoamiCommand,
	}
	return app
}
