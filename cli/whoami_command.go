package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/urfave/cli/v2"
)

var whoamiCommand = &cli.Command{
	Name:  "whoami",
	Usage: "Show the user you are logged in as",
	Flags: []cli.Flag{
		cliFlagOutput,
	},
	Action: whoami,
}

func whoami(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, _, err := getClient(c)
	if err != nil {
		return err
	}

	user, err := client.Users().GetCurrent(c.Context)
	if err != nil {
		return err
	}

	if ok, err := printStructured(c.App.Writer, output, user); ok {
		return err
	}

	tenantID := ""
	if tenant, ok := client.Tenants().Current(); ok {
		tenantID = tenant.ID
	}
	table := uitable.New()
	table.AddRow("ID", "NAME", "EMAIL", "ROLE", "TENANT")
	table.AddRow(user.ID, user.Name, user.Email, user.Role, tenantID)
	fmt.Fprintln(c.App.Writer, table)
	return nil
}
