package sync

import (
	"context"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/google/uuid"
)

// Mutation helpers: each one edits a copy of the active document and
// funnels it through SaveMonth, so local-first persistence and the
// remote push behave identically for every kind of edit.

// TogglePaid flips the paid flag of one transaction.
func (e *Engine) TogglePaid(ctx context.Context, list domain.ListKey, id string) error {
	data := e.Current()
	if data == nil {
		return domain.ErrNotFound
	}
	tx := data.Find(list, id)
	if tx == nil {
		return domain.ErrNotFound
	}
	tx.Paid = !tx.Paid
	return e.SaveMonth(ctx, data)
}

// ToggleGroupPaid flips a whole expense group at once: if every member
// is paid the group becomes unpaid, otherwise everything becomes paid.
func (e *Engine) ToggleGroupPaid(ctx context.Context, list domain.ListKey, group string) error {
	data := e.Current()
	if data == nil {
		return domain.ErrNotFound
	}

	items := data.List(list)
	allPaid := true
	found := false
	for i := range items {
		if items[i].Group != group {
			continue
		}
		found = true
		if !items[i].Paid {
			allPaid = false
		}
	}
	if !found {
		return domain.ErrNotFound
	}

	for i := range items {
		if items[i].Group == group {
			items[i].Paid = !allPaid
		}
	}
	return e.SaveMonth(ctx, data)
}

// TogglePaidAll flips a set of transactions together by id, the way the
// debt cards settle all their member payments at once: when every listed
// transaction is already paid they all become unpaid, otherwise they all
// become paid. Ids that match nothing are ignored; if none match, the
// call fails with ErrNotFound.
func (e *Engine) TogglePaidAll(ctx context.Context, list domain.ListKey, ids []string) error {
	data := e.Current()
	if data == nil {
		return domain.ErrNotFound
	}

	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	items := data.List(list)
	allPaid := true
	found := false
	for i := range items {
		if !idSet[items[i].ID] {
			continue
		}
		found = true
		if !items[i].Paid {
			allPaid = false
		}
	}
	if !found {
		return domain.ErrNotFound
	}

	for i := range items {
		if idSet[items[i].ID] {
			items[i].Paid = !allPaid
		}
	}
	return e.SaveMonth(ctx, data)
}

// AddTransaction appends a transaction to the named list, assigning an
// id when the caller left it empty.
func (e *Engine) AddTransaction(ctx context.Context, list domain.ListKey, tx domain.Transaction) error {
	data := e.Current()
	if data == nil {
		return domain.ErrNotFound
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	data.SetList(list, append(data.List(list), tx))
	return e.SaveMonth(ctx, data)
}

// UpdateTransaction replaces the transaction with the same id.
func (e *Engine) UpdateTransaction(ctx context.Context, list domain.ListKey, tx domain.Transaction) error {
	data := e.Current()
	if data == nil {
		return domain.ErrNotFound
	}
	existing := data.Find(list, tx.ID)
	if existing == nil {
		return domain.ErrNotFound
	}
	*existing = tx
	return e.SaveMonth(ctx, data)
}

// DeleteTransaction removes the transaction with the given id.
func (e *Engine) DeleteTransaction(ctx context.Context, list domain.ListKey, id string) error {
	data := e.Current()
	if data == nil {
		return domain.ErrNotFound
	}

	items := data.List(list)
	kept := items[:0]
	removed := false
	for i := range items {
		if items[i].ID == id {
			removed = true
			continue
		}
		kept = append(kept, items[i])
	}
	if !removed {
		return domain.ErrNotFound
	}
	data.SetList(list, kept)
	return e.SaveMonth(ctx, data)
}
