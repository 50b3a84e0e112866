package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftcartlabs/swiftcart-backend/internal/effects"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/logger"
)

// Reconciler applies stock side effects as order status changes. Each effect
// fires at most once per order, enforced by the side-effect ledger; the
// order's inventoryReserved/inventoryUpdated flags mirror the ledger for
// cheap reads.
//
// Per-item adjustment failures are logged and swallowed: a status transition
// never fails because one line item could not be adjusted. Order flow
// continuity wins over perfect counter accuracy, and the ledger row still
// marks the effect as attempted so it cannot double-fire later.
type Reconciler struct {
	repo    Repository
	effects effects.Repository
	log     *logger.Logger
}

// NewReconciler wires the inventory reconciler.
func NewReconciler(repo Repository, effectsRepo effects.Repository, log *logger.Logger) *Reconciler {
	return &Reconciler{repo: repo, effects: effectsRepo, log: log}
}

// WithTx rebinds the reconciler's repositories to the given transaction.
func (r *Reconciler) WithTx(tx *gorm.DB) *Reconciler {
	if tx == nil {
		return r
	}
	return &Reconciler{
		repo:    r.repo.WithTx(tx),
		effects: r.effects.WithTx(tx),
		log:     r.log,
	}
}

// Reserve marks every tracked line item's quantity as reserved. Invoked on
// the pending to processing transition only. Mutates order.InventoryReserved
// in memory; the caller persists the order.
func (r *Reconciler) Reserve(ctx context.Context, order *models.Order) error {
	if order.InventoryReserved {
		return nil
	}

	applied, err := r.effects.Record(ctx, &models.SideEffectEvent{
		OrderID:    order.ID,
		EffectType: enums.SideEffectInventoryReserved,
		Details:    fmt.Sprintf("items=%d", len(order.Items)),
	})
	if err != nil {
		return err
	}
	order.InventoryReserved = true
	if !applied {
		return nil
	}

	for _, item := range order.Items {
		r.adjustItem(ctx, order, item, "reserve", r.repo.Reserve)
	}
	return nil
}

// CommitStock decrements actual stock for every tracked line item. Invoked on
// any transition into shipped, including pending straight to shipped. Burns
// the reservation when one exists, otherwise draws down available stock
// directly.
func (r *Reconciler) CommitStock(ctx context.Context, order *models.Order) error {
	if order.InventoryUpdated {
		return nil
	}

	applied, err := r.effects.Record(ctx, &models.SideEffectEvent{
		OrderID:    order.ID,
		EffectType: enums.SideEffectStockCommitted,
		Details:    fmt.Sprintf("items=%d reserved=%t", len(order.Items), order.InventoryReserved),
	})
	if err != nil {
		return err
	}
	wasReserved := order.InventoryReserved
	order.InventoryUpdated = true
	if !applied {
		return nil
	}

	commit := r.repo.CommitAvailable
	if wasReserved {
		commit = r.repo.CommitReserved
	}
	for _, item := range order.Items {
		r.adjustItem(ctx, order, item, "commit", commit)
	}
	return nil
}

// Release returns reserved quantities to the pool. Invoked on cancellation,
// and only when stock was reserved but never committed.
func (r *Reconciler) Release(ctx context.Context, order *models.Order) error {
	if !order.InventoryReserved || order.InventoryUpdated {
		return nil
	}

	applied, err := r.effects.Record(ctx, &models.SideEffectEvent{
		OrderID:    order.ID,
		EffectType: enums.SideEffectInventoryReleased,
		Details:    fmt.Sprintf("items=%d", len(order.Items)),
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	for _, item := range order.Items {
		r.adjustItem(ctx, order, item, "release", r.repo.Release)
	}
	return nil
}

type adjustFn func(ctx context.Context, productID uuid.UUID, qty int) error

func (r *Reconciler) adjustItem(ctx context.Context, order *models.Order, item models.OrderItem, op string, adjust adjustFn) {
	if item.ProductID == nil {
		return
	}
	product, err := r.repo.FindProduct(ctx, *item.ProductID)
	if err != nil {
		r.logItemFailure(ctx, order, item, op, err)
		return
	}
	if !product.TrackInventory {
		return
	}
	if err := adjust(ctx, *item.ProductID, item.Qty); err != nil {
		r.logItemFailure(ctx, order, item, op, err)
	}
}

func (r *Reconciler) logItemFailure(ctx context.Context, order *models.Order, item models.OrderItem, op string, err error) {
	logCtx := r.log.WithOrderID(ctx, order.ID.String())
	logCtx = r.log.WithFields(logCtx, map[string]any{
		"product_id": item.ProductID,
		"qty":        item.Qty,
		"op":         op,
	})
	r.log.Error(logCtx, "inventory adjustment failed", err)
}
