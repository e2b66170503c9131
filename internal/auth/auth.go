// Package auth verifies identity-provider tokens and carries the resulting
// claims through request contexts. Credentials themselves (login, password
// reset) live entirely with the provider.
package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
)

type ctxKey int

// ClaimsKey is the request-context key the authentication middleware stores
// verified claims under.
const ClaimsKey ctxKey = 1

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Claims is the verified identity of the caller. Subject is the provider uid,
// which doubles as the customer id in the document store.
type Claims struct {
	Subject string
	Email   string
	Role    string
}

type Conf struct {
	client *fbauth.Client
}

func NewConf(ctx context.Context, app *firebase.App) (*Conf, error) {
	if app == nil {
		return nil, fmt.Errorf("firebase app is nil")
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth client: %w", err)
	}
	return &Conf{client: client}, nil
}

// VerifyToken validates a bearer ID token and extracts claims. Administrators
// carry an `admin` custom claim on their account.
func (c *Conf) VerifyToken(ctx context.Context, idToken string) (Claims, error) {
	token, err := c.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Claims{}, fmt.Errorf("failed to verify id token: %w", err)
	}

	role := RoleUser
	if isAdmin, ok := token.Claims["admin"].(bool); ok && isAdmin {
		role = RoleAdmin
	}
	email, _ := token.Claims["email"].(string)

	return Claims{Subject: token.UID, Email: email, Role: role}, nil
}

// DeleteUser removes the account at the identity provider. Called last during
// account deletion, after the customer's documents are gone.
func (c *Conf) DeleteUser(ctx context.Context, uid string) error {
	if err := c.client.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", uid, err)
	}
	return nil
}

// SetAdminRole grants the admin custom claim to an account. The claim takes
// effect on the user's next token refresh.
func (c *Conf) SetAdminRole(ctx context.Context, uid string) error {
	if err := c.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{"admin": true}); err != nil {
		return fmt.Errorf("failed to set admin claim for %s: %w", uid, err)
	}
	return nil
}
