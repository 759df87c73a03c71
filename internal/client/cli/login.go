package cli

import (
	"context"
	"errors"
	"fmt"
)

var errNoToken = errors.New("empty access token")

// Login replaces the bearer token used by the HTTP collaborator.
func (a *App) Login(ctx context.Context, _ []string) error {
	if a.tokens == nil {
		fmt.Fprintf(a.out, "login is not used with %s storage\n", a.config.Storage)
		return nil
	}

	tok, err := GetToken(a.out)
	if err != nil {
		return err
	}
	if tok == "" {
		return errNoToken
	}

	a.tokens.SetAccessToken(tok)
	a.log.Info(ctx, "access token updated")
	fmt.Fprintln(a.out, "token set")
	return nil
}
