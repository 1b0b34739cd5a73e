package client

import (
	"context"
	"net/http"
)

// AuthAPI signs users in and out. Successful calls update the client session.
type AuthAPI struct{ c *Client }

type authResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

func (a *AuthAPI) Register(ctx context.Context, name, email, password string) (*User, error) {
	in := map[string]string{"name": name, "email": email, "password": password}
	return a.start(ctx, "/auth/register", in)
}

func (a *AuthAPI) Login(ctx context.Context, email, password string) (*User, error) {
	in := map[string]string{"email": email, "password": password}
	return a.start(ctx, "/auth/login", in)
}

func (a *AuthAPI) start(ctx context.Context, path string, in any) (*User, error) {
	var resp authResponse
	if err := a.c.do(ctx, http.MethodPost, path, nil, in, &resp); err != nil {
		return nil, err
	}
	if err := a.c.session.Set(resp.AccessToken, resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Refresh rotates the refresh cookie and returns the new access token.
func (a *AuthAPI) Refresh(ctx context.Context) (string, error) {
	return a.c.refreshToken(ctx)
}

// Logout revokes the refresh token server side. The local session is cleared
// even when the call fails.
func (a *AuthAPI) Logout(ctx context.Context) error {
	err := a.c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	if clearErr := a.c.session.Clear(); err == nil {
		err = clearErr
	}
	return err
}
