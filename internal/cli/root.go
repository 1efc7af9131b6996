// Package cli implements the greensteps terminal commands. Each command is
// a plain sequential fetch-then-render flow: issue the requests it needs,
// render from the responses, surface any failure as its detail string.
package cli

import (
	"context"
	"errors"
	"io"

	"greensteps.app/greensteps/internal/client"
	"greensteps.app/greensteps/internal/store"
)

// ErrNotLoggedIn is returned by commands that need a session when no token
// is stored or the stored token fails the identity check.
var ErrNotLoggedIn = errors.New("not logged in, run 'greensteps login' first")

type Context struct {
	Client *client.Client
	Tokens *client.TokenStore
	Out    io.Writer
}

// Bootstrap resolves the stored token to a user. Any failure of the
// identity check discards the token and falls back to the logged-out
// state; there is no retry or refresh.
func (ctx *Context) Bootstrap(reqCtx context.Context) (*store.User, error) {
	token, err := ctx.Tokens.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	ctx.Client.SetToken(token)
	user, err := ctx.Client.Me(reqCtx)
	if err != nil {
		_ = ctx.Tokens.Clear()
		ctx.Client.SetToken("")
		return nil, ErrNotLoggedIn
	}
	return user, nil
}
