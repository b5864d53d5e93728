package main

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/krancour/accounts/sdk/accounts"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Log in to the Accounts API server",
	Description: "Log in with your browser at <server>/login, then supply " +
		"the value of the accounts_session cookie as the session token.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagServer,
			Aliases: []string{"s"},
			Usage: "Log into the API server at the specified address " +
				"(required)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    flagToken,
			Aliases: []string{"t"},
			Usage: "Specify the session token for non-interactive login; you " +
				"will be prompted for it otherwise",
		},
	},
	Action: login,
}

var logoutCommand = &cli.Command{
	Name:   "logout",
	Usage:  "Log out of the Accounts API server",
	Action: logout,
}

func login(c *cli.Context) error {
	address := strings.TrimSuffix(c.String(flagServer), "/")
	token := c.String(flagToken)

	for token == "" {
		if err := survey.AskOne(
			&survey.Password{
				Message: "Session token",
			},
			&token,
		); err != nil {
			return err
		}
	}

	status, err := accounts.NewIdentityClient(
		address,
		token,
		c.Bool(flagInsecure),
	).Status(c.Context)
	if err != nil {
		return errors.Wrap(err, "error verifying session token")
	}
	if !status.IsAuthenticated || status.User == nil {
		return errors.New("the session token was not accepted by the API server")
	}

	if err := saveConfig(
		&config{
			APIAddress: address,
			APIToken:   token,
		},
	); err != nil {
		return errors.Wrap(err, "error persisting configuration")
	}

	fmt.Printf("Logged in as %s.\n", displayName(*status.User))
	return nil
}

func displayName(identity accounts.Identity) string {
	switch {
	case identity.Email != "":
		return identity.Email
	case identity.Name != "":
		return identity.Name
	default:
		return identity.Subject
	}
}

func logout(c *cli.Context) error {
	if _, err := getConfig(); err != nil {
		return err
	}
	if err := deleteConfig(); err != nil {
		return errors.Wrap(err, "error removing local configuration")
	}
	fmt.Println("Logged out.")
	return nil
}
