package client

import (
	"context"
	"net/http"
	"net/url"
)

type UsersAPI struct{ c *Client }

// ProfileUpdate changes the signed-in user's own account. Nil fields are left
// untouched; changing the password requires CurrentPassword.
type ProfileUpdate struct {
	Name            *string  `json:"name,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	Address         *Address `json:"address,omitempty"`
	CurrentPassword string   `json:"currentPassword,omitempty"`
	NewPassword     string   `json:"newPassword,omitempty"`
}

// UserUpdate is the admin variant of ProfileUpdate.
type UserUpdate struct {
	Name    *string  `json:"name,omitempty"`
	Phone   *string  `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
	Role    *string  `json:"role,omitempty"`
}

type UserQuery struct {
	Search string
	Role   string
	Page   int
	Limit  int
}

func (u *UsersAPI) Me(ctx context.Context) (*User, error) {
	var out User
	if err := u.c.do(ctx, http.MethodGet, "/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	if err := u.c.session.setUser(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) UpdateMe(ctx context.Context, in ProfileUpdate) (*User, error) {
	var out User
	if err := u.c.do(ctx, http.MethodPut, "/users/me", nil, in, &out); err != nil {
		return nil, err
	}
	if err := u.c.session.setUser(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMe deletes the signed-in account and signs the client out.
func (u *UsersAPI) DeleteMe(ctx context.Context) error {
	if err := u.c.do(ctx, http.MethodDelete, "/users/me", nil, nil, nil); err != nil {
		return err
	}
	return u.c.session.Clear()
}

func (u *UsersAPI) List(ctx context.Context, q UserQuery) (*Page[User], error) {
	v := url.Values{}
	setString(v, "search", q.Search)
	setString(v, "role", q.Role)
	setPaging(v, q.Page, q.Limit)

	var page Page[User]
	if err := u.c.do(ctx, http.MethodGet, "/users", v, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (u *UsersAPI) Get(ctx context.Context, id string) (*User, error) {
	var out User
	if err := u.c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) Update(ctx context.Context, id string, in UserUpdate) (*User, error) {
	var out User
	if err := u.c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) Delete(ctx context.Context, id string) error {
	return u.c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}

// DeleteMany removes the given accounts and returns how many were deleted.
func (u *UsersAPI) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	in := map[string][]string{"ids": ids}
	if err := u.c.do(ctx, http.MethodDelete, "/users", nil, in, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}
