// Package firestore implements the order store on Google Cloud Firestore.
//
// Layout mirrors the application's document schema:
//
//	customers/{customerId}               Customer profile
//	customers/{customerId}/orders/{id}   Order documents
//	foodItems/{itemId}                   FoodItem documents
//	settings/app                         AppSettings singleton
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"reservation-service/internal/orders"
)

type OrderStore struct {
	client *firestore.Client
}

func NewOrderStore(client *firestore.Client) (*OrderStore, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is nil")
	}
	return &OrderStore{client: client}, nil
}

func (s *OrderStore) ordersCol(customerID string) *firestore.CollectionRef {
	return s.client.Collection("customers").Doc(customerID).Collection("orders")
}

func (s *OrderStore) orderRef(customerID, orderID string) *firestore.DocumentRef {
	return s.ordersCol(customerID).Doc(orderID)
}

// mapErr folds Firestore's RPC failures into the lifecycle error taxonomy.
func mapErr(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", orders.ErrNotFound, err)
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %v", orders.ErrPermissionDenied, err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", orders.ErrBackendUnavailable, err)
	}
	return err
}

func parseOrder(doc *firestore.DocumentSnapshot) (orders.Order, error) {
	var o orders.Order
	if err := doc.DataTo(&o); err != nil {
		return orders.Order{}, fmt.Errorf("failed to parse order %s: %w", doc.Ref.ID, err)
	}
	o.ID = doc.Ref.ID
	return o, nil
}

// UpsertDraft performs the find-or-create for the customer's draft order of a
// given food item inside a single transaction, so concurrent adds cannot
// create duplicate drafts.
func (s *OrderStore) UpsertDraft(ctx context.Context, customerID, foodItemID string, mutate func(existing *orders.Order) orders.Order) (orders.Order, error) {
	var out orders.Order
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := s.ordersCol(customerID).
			Where("foodItemId", "==", foodItemID).
			Where("status", "==", string(orders.StatusDraft)).
			Limit(1)
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}

		if len(docs) == 0 {
			ref := s.ordersCol(customerID).NewDoc()
			out = mutate(nil)
			out.ID = ref.ID
			return tx.Set(ref, out)
		}

		existing, err := parseOrder(docs[0])
		if err != nil {
			return err
		}
		out = mutate(&existing)
		out.ID = existing.ID
		return tx.Set(docs[0].Ref, out)
	})
	if err != nil {
		return orders.Order{}, mapErr(err)
	}
	return out, nil
}

func (s *OrderStore) ListByCustomer(ctx context.Context, customerID string, st orders.Status) ([]orders.Order, error) {
	q := s.ordersCol(customerID).Query
	if st != "" {
		q = q.Where("status", "==", string(st))
	}
	return s.collect(q.Documents(ctx))
}

func (s *OrderStore) ListByStatus(ctx context.Context, st orders.Status) ([]orders.Order, error) {
	q := s.client.CollectionGroup("orders").Query
	if st != "" {
		q = q.Where("status", "==", string(st))
	}
	return s.collect(q.Documents(ctx))
}

func (s *OrderStore) collect(iter *firestore.DocumentIterator) ([]orders.Order, error) {
	defer iter.Stop()
	var out []orders.Order
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapErr(err)
		}
		o, err := parseOrder(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *OrderStore) UpdateQuantity(ctx context.Context, customerID, orderID string, quantity int, totalPrice int64) error {
	_, err := s.orderRef(customerID, orderID).Update(ctx, []firestore.Update{
		{Path: "quantity", Value: quantity},
		{Path: "totalPrice", Value: totalPrice},
	})
	if err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, customerID, orderID string) error {
	if _, err := s.orderRef(customerID, orderID).Delete(ctx); err != nil {
		return mapErr(err)
	}
	return nil
}

// SetStatusBatch commits the status transition for every listed order in one
// write batch. The batch is all-or-nothing; an update against a document a
// customer has since deleted fails the whole commit.
func (s *OrderStore) SetStatusBatch(ctx context.Context, customerID string, orderIDs []string, st orders.Status) error {
	batch := s.client.Batch()
	for _, id := range orderIDs {
		batch.Update(s.orderRef(customerID, id), []firestore.Update{
			{Path: "status", Value: string(st)},
		})
	}
	if _, err := batch.Commit(ctx); err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *OrderStore) DeleteBatch(ctx context.Context, refs []orders.OrderRef) error {
	batch := s.client.Batch()
	for _, ref := range refs {
		batch.Delete(s.orderRef(ref.CustomerID, ref.OrderID))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return mapErr(err)
	}
	return nil
}

// Watch subscribes to query snapshots for the given status across all
// customers and emits the full matching set on every change. The channel is
// closed when ctx is cancelled or the subscription fails.
func (s *OrderStore) Watch(ctx context.Context, st orders.Status) (<-chan []orders.Order, error) {
	q := s.client.CollectionGroup("orders").Query
	if st != "" {
		q = q.Where("status", "==", string(st))
	}
	snaps := q.Snapshots(ctx)

	ch := make(chan []orders.Order)
	go func() {
		defer close(ch)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				return
			}
			out, err := s.collect(snap.Documents)
			if err != nil {
				return
			}
			select {
			case ch <- out:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
