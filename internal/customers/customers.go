package customers

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const collection = "customers"

var ErrNotFound = errors.New("customer not found")

// Customer is the profile document at customers/{id}. The id equals the
// identity provider's uid for the account.
type Customer struct {
	ID          string `firestore:"-" json:"id"`
	FirstName   string `firestore:"firstName" json:"first_name"`
	LastName    string `firestore:"lastName" json:"last_name"`
	Email       string `firestore:"email" json:"email"`
	PhoneNumber string `firestore:"phoneNumber,omitempty" json:"phone_number,omitempty"`
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

func (c *Conf) Get(ctx context.Context, id string) (Customer, error) {
	doc, err := c.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Customer{}, ErrNotFound
		}
		return Customer{}, fmt.Errorf("failed to get customer %s: %w", id, err)
	}
	var cust Customer
	if err := doc.DataTo(&cust); err != nil {
		return Customer{}, fmt.Errorf("failed to parse customer %s: %w", id, err)
	}
	cust.ID = doc.Ref.ID
	return cust, nil
}

func (c *Conf) List(ctx context.Context) ([]Customer, error) {
	var custs []Customer
	iter := c.client.Collection(collection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate customers: %w", err)
		}
		var cust Customer
		if err := doc.DataTo(&cust); err != nil {
			return nil, fmt.Errorf("failed to parse customer %s: %w", doc.Ref.ID, err)
		}
		cust.ID = doc.Ref.ID
		custs = append(custs, cust)
	}
	return custs, nil
}

// Delete removes the profile document. The customer's orders subcollection
// must be cleared first; Firestore does not cascade into subcollections.
func (c *Conf) Delete(ctx context.Context, id string) error {
	if _, err := c.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete customer %s: %w", id, err)
	}
	return nil
}
