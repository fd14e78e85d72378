package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, creds Credentials) (Tokens, error) {
	var out Tokens
	if err := c.doJSON(ctx, "login", http.MethodPost, "/api/auth/login/", "", creds, &out); err != nil {
		return Tokens{}, err
	}
	if out.Access == "" {
		return Tokens{}, &Error{Op: "login", Kind: KindServer, Detail: "respuesta sin token de acceso"}
	}
	return out, nil
}

// Register creates a new account. The backend does not log the user in.
func (c *Client) Register(ctx context.Context, reg Registration) (*User, error) {
	var out User
	if err := c.doJSON(ctx, "register", http.MethodPost, "/api/auth/register/", "", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh trades a refresh token for a new access token. The backend may
// rotate the refresh token; an empty Refresh means keep the old one.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	var out Tokens
	body := map[string]string{"refresh": refreshToken}
	if err := c.doJSON(ctx, "refresh", http.MethodPost, "/api/auth/token/refresh/", "", body, &out); err != nil {
		return Tokens{}, err
	}
	return out, nil
}

// ListVeterinarians returns active veterinarians. No authentication needed.
func (c *Client) ListVeterinarians(ctx context.Context) ([]User, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, "list_veterinarians", http.MethodGet, "/api/auth/veterinarians/", "", nil, &raw); err != nil {
		return nil, err
	}
	vets, err := decodeList[User](raw)
	if err != nil {
		return nil, fmt.Errorf("list_veterinarians: decode response: %w", err)
	}
	return vets, nil
}

// Me returns the authenticated user.
func (u *UserClient) Me(ctx context.Context) (*User, error) {
	var out User
	if err := u.call(ctx, "me", http.MethodGet, "/api/auth/me/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout blacklists the refresh token and clears the session tokens. The
// local tokens are cleared even when the backend call fails.
func (u *UserClient) Logout(ctx context.Context) error {
	toks, err := u.tokens.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("logout: load tokens: %w", err)
	}
	if toks.Refresh != "" {
		body := map[string]string{"refresh_token": toks.Refresh}
		if err := u.c.doJSON(ctx, "logout", http.MethodPost, "/api/auth/logout/", toks.Access, body, nil); err != nil {
			u.c.logger.Info("backend logout failed", "error", err)
		}
	}
	if err := u.tokens.ClearTokens(ctx); err != nil {
		return fmt.Errorf("logout: clear tokens: %w", err)
	}
	return nil
}

// ListUsers returns all users for staff, or only the caller for clients.
func (u *UserClient) ListUsers(ctx context.Context) ([]User, error) {
	return listCall[User](ctx, u, "list_users", "/api/auth/list/")
}
