package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"greensteps.app/greensteps/internal/cli"
	"greensteps.app/greensteps/internal/client"
)

var CLI struct {
	Version kong.VersionFlag
	Server  string `help:"GreenSteps API base URL." env:"GREENSTEPS_API_URL" default:"http://localhost:8080"`

	Dashboard cli.DashboardCmd `cmd:"" help:"Show your progress dashboard." default:"1"`
	Login     cli.LoginCmd     `cmd:"" help:"Log in to GreenSteps."`
	Signup    cli.SignupCmd    `cmd:"" help:"Create a GreenSteps account."`
	Logout    cli.LogoutCmd    `cmd:"" help:"Log out and clear the stored session."`
	Insights  cli.InsightsCmd  `cmd:"" help:"Regenerate AI coaching insights."`
	Habits    struct {
		List   cli.HabitListCmd   `cmd:"" help:"List your logged habits."`
		Add    cli.HabitAddCmd    `cmd:"" help:"Log a sustainability habit."`
		Delete cli.HabitDeleteCmd `cmd:"" help:"Delete a habit by id."`
	} `cmd:"" help:"Manage habits."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("greensteps"),
		kong.Description("Sustainability habit tracker"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	tokens, err := client.DefaultTokenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	appCtx := &cli.Context{
		Client: client.New(strings.TrimRight(CLI.Server, "/")),
		Tokens: tokens,
		Out:    os.Stdout,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
