package settings

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppSettings is the singleton document at settings/app. ReservationsOpen
// defaults to true when the field (or the whole document) is absent.
type AppSettings struct {
	ReservationsOpen *bool  `firestore:"reservationsOpen" json:"reservations_open"`
	LogoURL          string `firestore:"logoUrl,omitempty" json:"logo_url,omitempty"`
}

// Open resolves the default-true semantics of the flag.
func (s AppSettings) Open() bool {
	return s.ReservationsOpen == nil || *s.ReservationsOpen
}

type Conf struct {
	client *firestore.Client
}

func NewConf(client *firestore.Client) (Conf, error) {
	if client == nil {
		return Conf{}, fmt.Errorf("firestore client is nil")
	}
	return Conf{client: client}, nil
}

func (c *Conf) doc() *firestore.DocumentRef {
	return c.client.Collection("settings").Doc("app")
}

func (c *Conf) Get(ctx context.Context) (AppSettings, error) {
	doc, err := c.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return AppSettings{}, nil
		}
		return AppSettings{}, fmt.Errorf("failed to get app settings: %w", err)
	}
	var s AppSettings
	if err := doc.DataTo(&s); err != nil {
		return AppSettings{}, fmt.Errorf("failed to parse app settings: %w", err)
	}
	return s, nil
}

// SetReservationsOpen merges the flag into the settings document, creating it
// if needed.
func (c *Conf) SetReservationsOpen(ctx context.Context, open bool) error {
	_, err := c.doc().Set(ctx, map[string]interface{}{"reservationsOpen": open}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update reservations flag: %w", err)
	}
	return nil
}

// SetLogoURL merges the branding logo URL into the settings document.
func (c *Conf) SetLogoURL(ctx context.Context, url string) error {
	_, err := c.doc().Set(ctx, map[string]interface{}{"logoUrl": url}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update logo url: %w", err)
	}
	return nil
}
