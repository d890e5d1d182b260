package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/krancour/bizdesk/sdk/authx"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/ssh/terminal"
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Log in to BizDesk",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     flagServer,
			Aliases:  []string{"s"},
			Usage:    "Log into the API server at the specified address (required)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    flagEmail,
			Aliases: []string{"e"},
			Usage:   "Log in using the specified email address",
		},
		&cli.StringFlag{
			Name:    flagPassword,
			Aliases: []string{"p"},
			Usage: "Specify the password for non-interactive login; you will be " +
				"prompted for it if omitted",
		},
	},
	Action: login,
}

var registerCommand = &cli.Command{
	Name:  "register",
	Usage: "Create a BizDesk account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     flagServer,
			Aliases:  []string{"s"},
			Usage:    "Register with the API server at the specified address (required)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     flagName,
			Aliases:  []string{"n"},
			Usage:    "Your full name (required)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     flagEmail,
			Aliases:  []string{"e"},
			Usage:    "Your email address (required)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    flagPassword,
			Aliases: []string{"p"},
			Usage: "Specify the password for non-interactive registration; you " +
				"will be prompted for it if omitted",
		},
	},
	Action: register,
}

var logoutCommand = &cli.Command{
	Name:   "logout",
	Usage:  "Log out of BizDesk",
	Action: logout,
}

func login(c *cli.Context) error {
	address := c.String(flagServer)
	email := strings.TrimSpace(c.String(flagEmail))
	password := c.String(flagPassword)

	if email == "" {
		if err := prompt(
			&survey.Input{Message: "Email"},
			&email,
			flagEmail,
		); err != nil {
			return err
		}
	}
	if password == "" {
		if err := prompt(
			&survey.Password{Message: "Password"},
			&password,
			flagPassword,
		); err != nil {
			return err
		}
	}

	sessions, err := getSessions(c)
	if err != nil {
		return err
	}
	client, err := getClientFor(c, address, sessions, loginLocation)
	if err != nil {
		return err
	}

	result, err := client.Sessions().Login(
		c.Context,
		authx.Credentials{
			Email:    email,
			Password: password,
		},
	)
	if err != nil {
		return err
	}

	if err := saveConfig(&config{APIAddress: address}); err != nil {
		return errors.Wrap(err, "error persisting configuration")
	}

	fmt.Fprintf(c.App.Writer, "You are logged in as %s.\n", result.User.Name)
	switch result.Outcome {
	case authx.LoginOutcomeAuthenticatedWithTenant:
		fmt.Fprintf(
			c.App.Writer,
			"Your current tenant is %s (%s).\n",
			result.Tenant.Name,
			result.Tenant.ID,
		)
	case authx.LoginOutcomeAuthenticatedNoTenant:
		fmt.Fprintln(c.App.Writer, "You do not currently have access to any tenant.")
	}
	return nil
}

func register(c *cli.Context) error {
	address := c.String(flagServer)
	password := c.String(flagPassword)

	if password == "" {
		if err := prompt(
			&survey.Password{Message: "Password"},
			&password,
			flagPassword,
		); err != nil {
			return err
		}
	}

	sessions, err := getSessions(c)
	if err != nil {
		return err
	}
	client, err := getClientFor(c, address, sessions, loginLocation)
	if err != nil {
		return err
	}

	user, err := client.Sessions().Register(
		c.Context,
		authx.Registration{
			Name:     c.String(flagName),
			Email:    c.String(flagEmail),
			Password: password,
		},
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		c.App.Writer,
		"Account %s created for %s. Use `bizdesk login` to continue.\n",
		user.ID,
		user.Name,
	)
	return nil
}

func logout(c *cli.Context) error {
	sessions, err := getSessions(c)
	if err != nil {
		return err
	}
	if err := sessions.ClearSession(); err != nil {
		return errors.Wrap(err, "error discarding session")
	}
	if err := deleteConfig(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "You have been logged out.")
	return nil
}

// prompt asks for a missing value, or fails when there is nobody to ask.
func prompt(p survey.Prompt, value *string, flag string) error {
	if !terminal.IsTerminal(int(os.Stdin.Fd())) {
		return errors.Errorf("--%s is required when not running interactively", flag)
	}
	for *value == "" {
		if err := survey.AskOne(p, value); err != nil {
			return err
		}
	}
	return nil
}
