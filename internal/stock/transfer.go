package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/zaloga/internal/inventory"
	"github.com/erazemk/zaloga/internal/model"
)

// TransferMode selects how a transfer keeps its two records consistent.
type TransferMode string

const (
	// ModeAtomic writes both records and the journal entry in one store
	// transaction.
	ModeAtomic TransferMode = "atomic"
	// ModeSaga writes the debit, then the credit, and reverses the debit
	// when the credit cannot be persisted.
	ModeSaga TransferMode = "saga"
)

// ParseTransferMode validates a configured mode name.
func ParseTransferMode(s string) (TransferMode, error) {
	switch m := TransferMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAtomic, ModeSaga:
		return m, nil
	case "":
		return ModeAtomic, nil
	}
	return "", fmt.Errorf("unknown transfer mode %q (want %s or %s)", s, ModeAtomic, ModeSaga)
}

// CompensationTimeout bounds the reversal of a debit. The reversal does not
// end when the caller's context is cancelled.
const CompensationTimeout = 10 * time.Second

// Transfer reasons.
const (
	ReasonTransfer             = "Stock transfer"
	ReasonTransferCompensation = "Transfer compensation"
)

// Transferred is the result of TransferStock.
type Transferred struct {
	// TransferID is empty when the journal entry could not be written.
	TransferID      string `json:"transfer_id,omitempty"`
	FromNewQuantity int    `json:"from_new_quantity"`
	ToNewQuantity   int    `json:"to_new_quantity"`
}

// TransferStock moves quantity units from one record to another record of
// the same product.
//
// Validation failures and a failed debit leave both records untouched. In
// saga mode a credit that cannot be persisted is reversed on the source and
// reported as ErrTransferCompensated; if the reversal fails as well the
// result is ErrTransferPartialFailure.
func (s *Service) TransferStock(ctx context.Context, fromID, toID string, quantity int, reason string) (*Transferred, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: transfer quantity must be positive, got %d", inventory.ErrInvalidQuantity, quantity)
	}
	if fromID == toID {
		return nil, fmt.Errorf("%w: %s", inventory.ErrSameLocation, fromID)
	}
	if strings.TrimSpace(reason) == "" {
		reason = ReasonTransfer
	}

	var (
		res *Transferred
		err error
	)
	if tx, ok := s.store.(inventory.Transactor); ok && s.mode == ModeAtomic {
		res, err = s.transferAtomic(ctx, tx, fromID, toID, quantity, reason)
	} else {
		res, err = s.transferSaga(ctx, fromID, toID, quantity, reason)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock transferred",
		"transfer_id", res.TransferID,
		"from_inventory_id", fromID,
		"to_inventory_id", toID,
		"quantity", quantity,
		"mode", string(s.mode),
	)
	return res, nil
}

// legs holds both records of a transfer with their mutations applied in memory.
type legs struct {
	from, to      *inventory.Record
	debit, credit []inventory.Event
}

func prepare(ctx context.Context, st inventory.Store, fromID, toID string, quantity int, reason string) (*legs, error) {
	from, err := st.GetByID(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := st.GetByID(ctx, toID)
	if err != nil {
		return nil, err
	}
	if from.ProductID() != to.ProductID() {
		return nil, fmt.Errorf("%w: %s holds %s, %s holds %s",
			inventory.ErrProductMismatch, fromID, from.ProductID(), toID, to.ProductID())
	}

	if from.Quantity() < quantity {
		return nil, fmt.Errorf("%w: %s holds %d, transfer needs %d",
			inventory.ErrInsufficientStock, fromID, from.Quantity(), quantity)
	}

	l := &legs{from: from, to: to}
	if l.debit, err = from.AdjustStock(-quantity, reason); err != nil {
		return nil, err
	}
	if l.credit, err = to.AdjustStock(quantity, creditReason(from)); err != nil {
		return nil, err
	}
	return l, nil
}

func creditReason(from *inventory.Record) string {
	return "Transfer from " + from.LocationID()
}

func journalEntry(ctx context.Context, l *legs, quantity int, reason string) *model.Transfer {
	return &model.Transfer{
		ProductID:       l.from.ProductID(),
		FromInventoryID: l.from.ID(),
		ToInventoryID:   l.to.ID(),
		FromLocationID:  l.from.LocationID(),
		ToLocationID:    l.to.LocationID(),
		Quantity:        quantity,
		Reason:          reason,
		TransferredBy:   actorFrom(ctx),
	}
}

func (s *Service) transferAtomic(ctx context.Context, tx inventory.Transactor, fromID, toID string, quantity int, reason string) (*Transferred, error) {
	for attempt := 0; ; attempt++ {
		var (
			l     *legs
			entry *model.Transfer
		)
		err := tx.WithinTx(ctx, func(tx inventory.Tx) error {
			var err error
			if l, err = prepare(ctx, tx, fromID, toID, quantity, reason); err != nil {
				return err
			}
			if err := tx.Update(ctx, l.from); err != nil {
				return err
			}
			if err := tx.Update(ctx, l.to); err != nil {
				return err
			}
			entry = journalEntry(ctx, l, quantity, reason)
			return tx.RecordTransfer(ctx, entry)
		})
		if errors.Is(err, inventory.ErrConcurrencyConflict) && attempt < s.maxRetries && ctx.Err() == nil {
			s.logger.Warn("retrying transfer after concurrency conflict",
				"from_inventory_id", fromID, "to_inventory_id", toID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.dispatch(ctx, l.debit)
		s.dispatch(ctx, l.credit)
		return &Transferred{
			TransferID:      entry.ID,
			FromNewQuantity: l.from.Quantity(),
			ToNewQuantity:   l.to.Quantity(),
		}, nil
	}
}

func (s *Service) transferSaga(ctx context.Context, fromID, toID string, quantity int, reason string) (*Transferred, error) {
	// Both legs are validated in memory before anything is written. A
	// conflicting debit write leaves nothing persisted, so the whole
	// preparation is repeated.
	var (
		l   *legs
		err error
	)
	for attempt := 0; ; attempt++ {
		if l, err = prepare(ctx, s.store, fromID, toID, quantity, reason); err != nil {
			return nil, err
		}
		if err = s.store.Update(ctx, l.from); err == nil {
			break
		}
		if !errors.Is(err, inventory.ErrConcurrencyConflict) || attempt >= s.maxRetries || ctx.Err() != nil {
			return nil, err
		}
		s.logger.Warn("retrying transfer after concurrency conflict",
			"from_inventory_id", fromID, "to_inventory_id", toID, "attempt", attempt+1)
	}
	s.dispatch(ctx, l.debit)

	to, credit, err := s.apply(ctx, s.store, toID, l.to, func(r *inventory.Record) ([]inventory.Event, error) {
		if r == l.to {
			return l.credit, nil
		}
		return r.AdjustStock(quantity, creditReason(l.from))
	})
	if err != nil {
		return nil, s.compensate(ctx, l.from, toID, quantity, err)
	}
	s.dispatch(ctx, credit)

	res := &Transferred{FromNewQuantity: l.from.Quantity(), ToNewQuantity: to.Quantity()}
	if journal, ok := s.store.(inventory.TransferLog); ok {
		entry := journalEntry(ctx, &legs{from: l.from, to: to}, quantity, reason)
		if err := journal.RecordTransfer(ctx, entry); err != nil {
			s.logger.Error("recording transfer", "from_inventory_id", fromID, "to_inventory_id", toID, "error", err)
		} else {
			res.TransferID = entry.ID
		}
	}
	return res, nil
}

// compensate reverses a persisted debit after the credit to toID failed with cause.
func (s *Service) compensate(ctx context.Context, from *inventory.Record, toID string, quantity int, cause error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CompensationTimeout)
	defer cancel()

	_, events, err := s.apply(ctx, s.store, from.ID(), nil, func(r *inventory.Record) ([]inventory.Event, error) {
		return r.AdjustStock(quantity, ReasonTransferCompensation)
	})
	if err != nil {
		s.logger.Error("transfer partially applied",
			"from_inventory_id", from.ID(),
			"to_inventory_id", toID,
			"quantity", quantity,
			"credit_error", cause,
			"compensation_error", err,
		)
		return fmt.Errorf("%w: %d units debited from %s, crediting %s: %v, compensating: %v",
			inventory.ErrTransferPartialFailure, quantity, from.ID(), toID, cause, err)
	}
	s.dispatch(ctx, events)

	s.logger.Warn("transfer compensated",
		"from_inventory_id", from.ID(),
		"to_inventory_id", toID,
		"quantity", quantity,
		"error", cause,
	)
	return fmt.Errorf("%w: crediting %s: %w", inventory.ErrTransferCompensated, toID, cause)
}
