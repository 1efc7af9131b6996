package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

type LoginCmd struct {
	Email    string `short:"e" help:"Account email."`
	Password string `short:"p" help:"Account password (prompted when omitted)."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	if err := promptCredentials(&c.Email, &c.Password, nil); err != nil {
		return err
	}

	token, err := ctx.Client.Login(context.Background(), c.Email, c.Password)
	if err != nil {
		return err
	}
	if err := ctx.Tokens.Save(token); err != nil {
		return err
	}
	ctx.Client.SetToken(token)

	user, err := ctx.Client.Me(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

type SignupCmd struct {
	Name     string `short:"n" help:"Display name."`
	Email    string `short:"e" help:"Account email."`
	Password string `short:"p" help:"Account password (prompted when omitted)."`
}

func (c *SignupCmd) Run(ctx *Context) error {
	if err := promptCredentials(&c.Email, &c.Password, &c.Name); err != nil {
		return err
	}

	token, err := ctx.Client.Signup(context.Background(), c.Name, c.Email, c.Password)
	if err != nil {
		return err
	}
	if err := ctx.Tokens.Save(token); err != nil {
		return err
	}
	ctx.Client.SetToken(token)

	fmt.Fprintf(ctx.Out, "Welcome to GreenSteps, %s!\n", c.Name)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	if err := ctx.Tokens.Clear(); err != nil {
		return err
	}
	ctx.Client.SetToken("")
	fmt.Fprintln(ctx.Out, "Logged out")
	return nil
}

// promptCredentials fills any missing fields interactively. name is nil for
// login, which has no name field.
func promptCredentials(email, password, name *string) error {
	var fields []huh.Field
	if name != nil && *name == "" {
		fields = append(fields, huh.NewInput().
			Title("Name").
			Value(name).
			Validate(requireNonEmpty("name")))
	}
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(email).
			Validate(requireNonEmpty("email")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(requireNonEmpty("password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func requireNonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}
