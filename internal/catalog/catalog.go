package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const collection = "foodItems"

var ErrNotFound = errors.New("food item not found")

type Conf struct {
	client *firestore.Client
}

func NewConf(client *firestore.Client) (Conf, error) {
	if client == nil {
		return Conf{}, fmt.Errorf("firestore client is nil")
	}
	return Conf{client: client}, nil
}

// List returns the menu. When reservableOnly is set, items the admin has
// closed are filtered out, matching what customers are allowed to see.
func (c *Conf) List(ctx context.Context, reservableOnly bool) ([]FoodItem, error) {
	q := c.client.Collection(collection).Query
	if reservableOnly {
		q = q.Where("reservable", "==", true)
	}

	var items []FoodItem
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate food items: %w", err)
		}
		var item FoodItem
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("failed to parse food item %s: %w", doc.Ref.ID, err)
		}
		item.ID = doc.Ref.ID
		items = append(items, item)
	}
	return items, nil
}

func (c *Conf) Get(ctx context.Context, id string) (FoodItem, error) {
	doc, err := c.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return FoodItem{}, ErrNotFound
		}
		return FoodItem{}, fmt.Errorf("failed to get food item %s: %w", id, err)
	}
	var item FoodItem
	if err := doc.DataTo(&item); err != nil {
		return FoodItem{}, fmt.Errorf("failed to parse food item %s: %w", id, err)
	}
	item.ID = doc.Ref.ID
	return item, nil
}

func (c *Conf) Insert(ctx context.Context, newItem NewFoodItem) (FoodItem, error) {
	item := FoodItem{
		Name:        newItem.Name,
		Description: newItem.Description,
		Price:       newItem.Price,
		ImageURL:    newItem.ImageURL,
		Reservable:  true,
		CreatedAt:   time.Now().UTC(),
	}
	ref := c.client.Collection(collection).NewDoc()
	if _, err := ref.Set(ctx, item); err != nil {
		return FoodItem{}, fmt.Errorf("failed to insert food item: %w", err)
	}
	item.ID = ref.ID
	return item, nil
}

func (c *Conf) Update(ctx context.Context, id string, upd UpdateFoodItem) error {
	_, err := c.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "name", Value: upd.Name},
		{Path: "description", Value: upd.Description},
		{Path: "price", Value: upd.Price},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update food item %s: %w", id, err)
	}
	return nil
}

func (c *Conf) Delete(ctx context.Context, id string) error {
	if _, err := c.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete food item %s: %w", id, err)
	}
	return nil
}

// ToggleReservable flips the availability flag inside a transaction and
// returns the new value.
func (c *Conf) ToggleReservable(ctx context.Context, id string) (bool, error) {
	ref := c.client.Collection(collection).Doc(id)
	var reservable bool
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var item FoodItem
		if err := doc.DataTo(&item); err != nil {
			return err
		}
		reservable = !item.Reservable
		return tx.Update(ref, []firestore.Update{{Path: "reservable", Value: reservable}})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to toggle food item %s: %w", id, err)
	}
	return reservable, nil
}
