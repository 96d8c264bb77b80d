// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/food-orders/internal/authz"
	"github.com/carterperez-dev/food-orders/internal/core"
	"github.com/carterperez-dev/food-orders/internal/events"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

type AddItemResult struct {
	ItemID     int64
	OrderPrice decimal.Decimal
	Order      *Order
}

type RemoveItemResult struct {
	RemainingItems int
	Order          *Order
}

func (s *Service) CreateForSelf(
	ctx context.Context,
	actor authz.Actor,
) (o *Order, err error) {
	ctx, span := core.StartSpan(ctx, "order.CreateForSelf")
	defer func() { core.EndSpan(span, err) }()

	if err = authz.Authorize(actor, authz.CreateForSelf, nil); err != nil {
		return nil, err
	}

	o, err = s.create(ctx, actor.ID, false)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderCreated, actor, o, 0)
	return o, nil
}

// CreateForUser opens an order on behalf of userID. Only admins may do this
// and the target user must exist.
func (s *Service) CreateForUser(
	ctx context.Context,
	actor authz.Actor,
	userID int64,
) (o *Order, err error) {
	ctx, span := core.StartSpan(ctx, "order.CreateForUser",
		attribute.Int64("order.target_user_id", userID),
	)
	defer func() { core.EndSpan(span, err) }()

	if err = authz.Authorize(actor, authz.CreateForOther, nil); err != nil {
		return nil, err
	}

	o, err = s.create(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderCreated, actor, o, 0)
	return o, nil
}

func (s *Service) create(
	ctx context.Context,
	ownerID int64,
	checkOwner bool,
) (*Order, error) {
	o := &Order{
		UserID: ownerID,
		Status: StatusPending,
		Price:  decimal.Zero,
		Items:  []Item{},
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		if checkOwner {
			exists, err := tx.UserExists(ctx, ownerID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrTargetUserNotFound
			}
		}

		return tx.Create(ctx, o)
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		"order_id", o.ID,
		"user_id", o.UserID,
	)

	return o, nil
}

// Cancel moves a PENDING order to CANCELED. Owners and admins may cancel.
func (s *Service) Cancel(
	ctx context.Context,
	actor authz.Actor,
	orderID int64,
) (o *Order, err error) {
	ctx, span := core.StartSpan(ctx, "order.Cancel",
		attribute.Int64("order.id", orderID),
	)
	defer func() { core.EndSpan(span, err) }()

	err = s.repo.InTx(ctx, func(tx Repository) error {
		locked, err := tx.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if err := transition(locked, StatusCanceled); err != nil {
			return err
		}

		if err := authz.Authorize(actor, authz.Cancel, targetOf(locked)); err != nil {
			return err
		}

		if err := tx.UpdateStatus(ctx, locked.ID, StatusCanceled); err != nil {
			return err
		}

		locked.Status = StatusCanceled
		o = locked
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel order %d: %w", orderID, err)
	}

	s.logger.Info("order canceled", "order_id", o.ID, "actor_id", actor.ID)
	s.publish(ctx, events.OrderCanceled, actor, o, 0)
	return o, nil
}

// Finalize moves a PENDING order to COMPLETED. Admin only; the check runs
// before the order is looked up.
func (s *Service) Finalize(
	ctx context.Context,
	actor authz.Actor,
	orderID int64,
) (o *Order, err error) {
	ctx, span := core.StartSpan(ctx, "order.Finalize",
		attribute.Int64("order.id", orderID),
	)
	defer func() { core.EndSpan(span, err) }()

	if err = authz.Authorize(actor, authz.Finalize, nil); err != nil {
		return nil, err
	}

	err = s.repo.InTx(ctx, func(tx Repository) error {
		locked, err := tx.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if err := transition(locked, StatusCompleted); err != nil {
			return err
		}

		if err := tx.UpdateStatus(ctx, locked.ID, StatusCompleted); err != nil {
			return err
		}

		locked.Status = StatusCompleted
		o = locked
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finalize order %d: %w", orderID, err)
	}

	s.logger.Info("order completed", "order_id", o.ID, "actor_id", actor.ID)
	s.publish(ctx, events.OrderCompleted, actor, o, 0)
	return o, nil
}

func (s *Service) ListAll(
	ctx context.Context,
	actor authz.Actor,
	filter ListFilter,
) (orders []Order, err error) {
	ctx, span := core.StartSpan(ctx, "order.ListAll")
	defer func() { core.EndSpan(span, err) }()

	if err = authz.Authorize(actor, authz.ListAll, nil); err != nil {
		return nil, err
	}

	return s.list(ctx, filter)
}

// ListMine returns the caller's orders. Any UserID set on filter is replaced
// with the caller's id.
func (s *Service) ListMine(
	ctx context.Context,
	actor authz.Actor,
	filter ListFilter,
) (orders []Order, err error) {
	ctx, span := core.StartSpan(ctx, "order.ListMine")
	defer func() { core.EndSpan(span, err) }()

	if err = authz.Authorize(actor, authz.ListOwn, nil); err != nil {
		return nil, err
	}

	owner := actor.ID
	filter.UserID = &owner
	return s.list(ctx, filter)
}

func (s *Service) list(ctx context.Context, filter ListFilter) ([]Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errInvalidStatus(string(filter.Status))
	}

	var orders []Order
	err := s.repo.InTx(ctx, func(tx Repository) error {
		var err error
		orders, err = tx.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}

// View returns the order with its items attached.
func (s *Service) View(
	ctx context.Context,
	actor authz.Actor,
	orderID int64,
) (o *Order, err error) {
	ctx, span := core.StartSpan(ctx, "order.View",
		attribute.Int64("order.id", orderID),
	)
	defer func() { core.EndSpan(span, err) }()

	if err = authz.Authorize(actor, authz.ViewOne, nil); err != nil {
		return nil, err
	}

	err = s.repo.InTx(ctx, func(tx Repository) error {
		found, err := tx.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		found.Items, err = tx.ListItems(ctx, found.ID)
		if err != nil {
			return err
		}

		o = found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view order %d: %w", orderID, err)
	}

	return o, nil
}

// AddItem attaches a line item to a PENDING order and reprices it in the
// same transaction.
func (s *Service) AddItem(
	ctx context.Context,
	actor authz.Actor,
	orderID int64,
	in NewItem,
) (res *AddItemResult, err error) {
	ctx, span := core.StartSpan(ctx, "order.AddItem",
		attribute.Int64("order.id", orderID),
	)
	defer func() { core.EndSpan(span, err) }()

	if err = in.Validate(); err != nil {
		return nil, err
	}

	err = s.repo.InTx(ctx, func(tx Repository) error {
		o, err := tx.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if err := ensureMutable(o); err != nil {
			return err
		}

		if err := authz.Authorize(actor, authz.AddItem, targetOf(o)); err != nil {
			return err
		}

		item := &Item{
			OrderID:   o.ID,
			Flavor:    in.Flavor,
			Quantity:  in.Quantity,
			Size:      in.Size,
			UnitPrice: in.UnitPrice,
		}
		if err := tx.InsertItem(ctx, item); err != nil {
			return err
		}

		if err := reprice(ctx, tx, o); err != nil {
			return err
		}

		res = &AddItemResult{
			ItemID:     item.ID,
			OrderPrice: o.Price,
			Order:      o,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add item to order %d: %w", orderID, err)
	}

	s.publish(ctx, events.OrderItemAdded, actor, res.Order, res.ItemID)
	return res, nil
}

// RemoveItem deletes a line item. Ownership is checked against the order
// the item belongs to.
func (s *Service) RemoveItem(
	ctx context.Context,
	actor authz.Actor,
	itemID int64,
) (res *RemoveItemResult, err error) {
	ctx, span := core.StartSpan(ctx, "order.RemoveItem",
		attribute.Int64("order.item_id", itemID),
	)
	defer func() { core.EndSpan(span, err) }()

	err = s.repo.InTx(ctx, func(tx Repository) error {
		item, err := tx.GetItem(ctx, itemID)
		if err != nil {
			return err
		}

		o, err := tx.GetByIDForUpdate(ctx, item.OrderID)
		if err != nil {
			return err
		}

		if err := ensureMutable(o); err != nil {
			return err
		}

		if err := authz.Authorize(actor, authz.RemoveItem, targetOf(o)); err != nil {
			return err
		}

		if err := tx.DeleteItem(ctx, item.ID); err != nil {
			return err
		}

		if err := reprice(ctx, tx, o); err != nil {
			return err
		}

		res = &RemoveItemResult{
			RemainingItems: o.ItemCount(),
			Order:          o,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove item %d: %w", itemID, err)
	}

	s.publish(ctx, events.OrderItemRemoved, actor, res.Order, itemID)
	return res, nil
}

func (s *Service) Stats(ctx context.Context, actor authz.Actor) (st *Stats, err error) {
	ctx, span := core.StartSpan(ctx, "order.Stats")
	defer func() { core.EndSpan(span, err) }()

	if err = authz.Authorize(actor, authz.ViewAny, nil); err != nil {
		return nil, err
	}

	st, err = s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return st, nil
}

// reprice reloads the order's items and persists the recomputed total. It
// must run inside the transaction holding the order's row lock.
func reprice(ctx context.Context, tx Repository, o *Order) error {
	items, err := tx.ListItems(ctx, o.ID)
	if err != nil {
		return err
	}

	o.Items = items
	o.NumItems = len(items)
	o.Recompute()

	return tx.UpdatePrice(ctx, o.ID, o.Price)
}

func targetOf(o *Order) *authz.Target {
	return &authz.Target{OwnerID: o.UserID}
}

func (s *Service) publish(
	ctx context.Context,
	eventType string,
	actor authz.Actor,
	o *Order,
	itemID int64,
) {
	s.publisher.Publish(ctx, events.Event{
		Type:    eventType,
		OrderID: o.ID,
		TraceID: core.TraceIDFromContext(ctx),
		Payload: events.OrderPayload{
			OrderID:   o.ID,
			UserID:    o.UserID,
			ActorID:   actor.ID,
			Status:    string(o.Status),
			Price:     o.Price.StringFixed(2),
			ItemCount: o.ItemCount(),
			ItemID:    itemID,
		},
	})
}
