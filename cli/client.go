package main

import (
	"os"
	"strings"

	"github.com/krancour/bizdesk/sdk/authx"
	"github.com/krancour/bizdesk/sdk/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func getLogger(c *cli.Context) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.String(flagLogLevel)))
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(
			err,
			"invalid log level %q",
			c.String(flagLogLevel),
		)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

func getSessions(c *cli.Context) (*session.Manager, error) {
	logger, err := getLogger(c)
	if err != nil {
		return nil, err
	}
	store, err := session.NewStoreFromEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "error opening session store")
	}
	return session.NewManager(store, &session.ManagerOptions{Logger: &logger}), nil
}

// getClientFor returns an API client for the specified address, sharing the
// provided session Manager. The navigator starts at location, so commands
// that are themselves part of logging in do not announce that a login is
// required.
func getClientFor(
	c *cli.Context,
	apiAddress string,
	sessions *session.Manager,
	location string,
) (authx.APIClient, error) {
	logger, err := getLogger(c)
	if err != nil {
		return nil, err
	}
	return authx.NewAPIClient(
		apiAddress,
		sessions,
		&authx.APIClientOptions{
			AllowInsecure: c.Bool(flagInsecure),
			Navigator:     getNavigator(location),
			LoginLocation: loginLocation,
			Logger:        &logger,
		},
	), nil
}

func getClient(c *cli.Context) (authx.APIClient, *session.Manager, error) {
	config, err := getConfig()
	if err != nil {
		return nil, nil, errors.Wrap(err, "error retrieving configuration")
	}
	sessions, err := getSessions(c)
	if err != nil {
		return nil, nil, err
	}
	client, err := getClientFor(c, config.APIAddress, sessions, c.Command.Name)
	if err != nil {
		return nil, nil, err
	}
	return client, sessions, nil
}
