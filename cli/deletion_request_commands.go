package main

import (
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/krancour/accounts/sdk/accounts"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var deletionRequestCommand = &cli.Command{
	Name:    "deletion-request",
	Aliases: []string{"dr"},
	Usage:   "Manage account deletion requests",
	Subcommands: []*cli.Command{
		{
			Name:  "cancel",
			Usage: "Cancel a user's account deletion request",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagUser,
					Aliases:  []string{"u"},
					Usage:    "Cancel the request of the specified user ID (required)",
					Required: true,
				},
			},
			Action: deletionRequestCancel,
		},
		{
			Name:  "check",
			Usage: "Check whether a user has an account deletion request",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagUser,
					Aliases:  []string{"u"},
					Usage:    "Check for a request by the specified user ID (required)",
					Required: true,
				},
			},
			Action: deletionRequestCheck,
		},
		{
			Name:  "list",
			Usage: "Retrieve all account deletion requests",
			Flags: []cli.Flag{
				cliFlagOutput,
				&cli.BoolFlag{
					Name:    flagPending,
					Aliases: []string{"p"},
					Usage:   "Only retrieve requests that have not been treated",
				},
			},
			Action: deletionRequestList,
		},
		{
			Name:  "mark-treated",
			Usage: "Mark an account deletion request as treated",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagID,
					Aliases:  []string{"i"},
					Usage:    "Mark the request having the specified ID (required)",
					Required: true,
				},
			},
			Action: deletionRequestMarkTreated,
		},
	},
}

func deletionRequestList(c *cli.Context) error {
	output := c.String(flagOutput)
	pendingOnly := c.Bool(flagPending)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting accounts client")
	}

	requests, err := client.DeletionRequests().List(c.Context)
	if err != nil {
		return err
	}
	if pendingOnly {
		requests = pending(requests)
	}

	if len(requests) == 0 {
		fmt.Println("No account deletion requests found.")
		return nil
	}

	if strings.ToLower(output) == "table" {
		table := uitable.New()
		table.MaxColWidth = 50
		table.AddRow("ID", "USER ID", "REASON", "CREATED", "TREATED")
		for _, request := range requests {
			treated := "no"
			if request.TreatedAt != nil {
				treated = request.TreatedAt.Format("2006-01-02 15:04:05")
			}
			table.AddRow(
				request.ID,
				request.UserID,
				request.DeletionReason,
				request.CreatedAt.Format("2006-01-02 15:04:05"),
				treated,
			)
		}
		fmt.Println(table)
		return nil
	}

	formatted, err := formatStructured(output, requests)
	if err != nil {
		return errors.Wrap(
			err,
			"error formatting output from list account deletion requests operation",
		)
	}
	fmt.Println(formatted)
	return nil
}

func pending(requests []accounts.DeletionRequest) []accounts.DeletionRequest {
	filtered := []accounts.DeletionRequest{}
	for _, request := range requests {
		if !request.Treated {
			filtered = append(filtered, request)
		}
	}
	return filtered
}

func deletionRequestCheck(c *cli.Context) error {
	userID := c.String(flagUser)

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting accounts client")
	}

	exists, err := client.DeletionRequests().CheckExists(c.Context, userID)
	if err != nil {
		return err
	}

	if exists {
		fmt.Printf("User %q has requested account deletion.\n", userID)
	} else {
		fmt.Printf("User %q has not requested account deletion.\n", userID)
	}
	return nil
}

func deletionRequestMarkTreated(c *cli.Context) error {
	id := c.String(flagID)

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting accounts client")
	}

	if err := client.DeletionRequests().MarkTreated(c.Context, id); err != nil {
		return err
	}

	fmt.Printf("Account deletion request %q marked as treated.\n", id)
	return nil
}

func deletionRequestCancel(c *cli.Context) error {
	userID := c.String(flagUser)

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting accounts client")
	}

	if err := client.DeletionRequests().Cancel(c.Context, userID); err != nil {
		return err
	}

	fmt.Printf("Account deletion request of user %q canceled.\n", userID)
	return nil
}
