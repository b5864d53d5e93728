package main

import "github.com/urfave/cli/v2"

const (
	flagID       = "id"
	flagInsecure = "insecure"
	flagOutput   = "output"
	flagPending  = "pending"
	flagServer   = "server"
	flagToken    = "token"
	flagUser     = "user"
	flagYes      = "yes"
)

var (
	cliFlagOutput = &cli.StringFlag{
		Name:    flagOutput,
		Aliases: []string{"o"},
		Usage: "Return output in the specified format; supported formats: table, " +
			"yaml, json",
		Value: "table",
	}
	cliFlagYes = &cli.BoolFlag{
		Name:    flagYes,
		Aliases: []string{"y"},
		Usage:   "Non-interactively confirm",
	}
)
