package main

import (
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/krancour/accounts/sdk/accounts"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var userCommand = &cli.Command{
	Name:  "user",
	Usage: "Manage users",
	Subcommands: []*cli.Command{
		{
			Name:  "delete",
			Usage: "Delete a user and all associated data",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagID,
					Aliases:  []string{"i"},
					Usage:    "Delete the user having the specified ID (required)",
					Required: true,
				},
				cliFlagYes,
			},
			Action: userDelete,
		},
		{
			Name:  "get",
			Usage: "Retrieve a user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagUser,
					Aliases:  []string{"u"},
					Usage:    "Retrieve the user having the specified user ID (required)",
					Required: true,
				},
				cliFlagOutput,
			},
			Action: userGet,
		},
		{
			Name:  "list",
			Usage: "Retrieve all users",
			Flags: []cli.Flag{
				cliFlagOutput,
			},
			Action: userList,
		},
	},
}

func userList(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting accounts client")
	}

	users, err := client.Users().List(c.Context)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	if strings.ToLower(output) == "table" {
		fmt.Println(usersTable(users...))
		return nil
	}

	formatted, err := formatStructured(output, users)
	if err != nil {
		return errors.Wrap(err, "error formatting output from list users operation")
	}
	fmt.Println(formatted)
	return nil
}

func userGet(c *cli.Context) error {
	userID := c.String(flagUser)
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting accounts client")
	}

	user, err := client.Users().Get(c.Context, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.Errorf("user %q not found", userID)
	}

	if strings.ToLower(output) == "table" {
		fmt.Println(usersTable(*user))
		return nil
	}

	formatted, err := formatStructured(output, user)
	if err != nil {
		return errors.Wrap(err, "error formatting output from get user operation")
	}
	fmt.Println(formatted)
	return nil
}

func userDelete(c *cli.Context) error {
	id := c.String(flagID)

	confirmed, err := confirmed(c)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting accounts client")
	}

	if err := client.Users().Delete(c.Context, id); err != nil {
		return err
	}

	fmt.Printf("User %q deleted.\n", id)

	return nil
}

func usersTable(users ...accounts.User) *uitable.Table {
	table := uitable.New()
	table.AddRow("ID", "USER ID", "NAME", "EMAIL", "ROLES", "CITY", "CREATED")
	for _, user := range users {
		var created string
		if user.CreatedAt != nil {
			created = user.CreatedAt.Format("2006-01-02 15:04:05")
		}
		table.AddRow(
			user.ID,
			user.UserID,
			user.Fullname,
			user.Email,
			strings.Join(user.Roles, ","),
			valueOrNone(user.City),
			created,
		)
	}
	return table
}
