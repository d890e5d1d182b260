package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var tenantCommand = &cli.Command{
	Name:  "tenant",
	Usage: "Discover and select tenants",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "Retrieve the tenants you may access",
			Flags: []cli.Flag{
				cliFlagOutput,
			},
			Action: tenantList,
		},
		{
			Name:   "current",
			Usage:  "Show the currently selected tenant",
			Action: tenantCurrent,
		},
		{
			Name:  "switch",
			Usage: "Select a tenant for subsequent commands",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagID,
					Aliases:  []string{"i"},
					Usage:    "Select the specified tenant (required)",
					Required: true,
				},
			},
			Action: tenantSwitch,
		},
	},
}

func tenantList(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, sessions, err := getClient(c)
	if err != nil {
		return err
	}

	tenants, err := client.Tenants().List(c.Context)
	if err != nil {
		return err
	}

	// Refresh the cached list so that switch sees what was just shown
	current, _, err := sessions.SetTenantContext(tenants)
	if err != nil {
		return errors.Wrap(err, "error caching tenants")
	}

	if len(tenants) == 0 {
		fmt.Fprintln(c.App.Writer, "No tenants found.")
		return nil
	}

	if ok, err := printStructured(c.App.Writer, output, tenants); ok {
		return err
	}

	table := uitable.New()
	table.AddRow("", "ID", "NAME", "DOMAIN")
	for _, tenant := range tenants {
		marker := ""
		if tenant.ID == current.ID {
			marker = "*"
		}
		table.AddRow(marker, tenant.ID, tenant.Name, tenant.Domain)
	}
	fmt.Fprintln(c.App.Writer, table)
	return nil
}

func tenantCurrent(c *cli.Context) error {
	client, sessions, err := getClient(c)
	if err != nil {
		return err
	}
	if !sessions.IsSessionValid() {
		return errors.New("you are not logged in; please use `bizdesk login`")
	}
	tenant, ok := client.Tenants().Current()
	if !ok {
		fmt.Fprintln(c.App.Writer, "No tenant is selected.")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%s (%s)\n", tenant.Name, tenant.ID)
	return nil
}

func tenantSwitch(c *cli.Context) error {
	client, _, err := getClient(c)
	if err != nil {
		return err
	}
	tenant, err := client.Tenants().Switch(c.String(flagID))
	if err != nil {
		return err
	}
	fmt.Fprintf(
		c.App.Writer,
		"Your current tenant is now %s (%s).\n",
		tenant.Name,
		tenant.ID,
	)
	return nil
}
