package ledger

import (
	"context"
	"errors"
	"fmt"

	"tally/internal/models"
	"tally/internal/money"
	"tally/internal/repositories"
	"tally/internal/validation"

	"github.com/google/uuid"
)

// Transfer moves funds between two wallets inside one database
// transaction. Both rows are locked in ascending wallet-id order, so
// two opposing transfers between the same pair cannot deadlock. When
// the currencies differ the destination leg is converted through the
// rate source. Both legs are approved while the locks are held; a
// rejection on either leg rolls the whole transfer back.
func (s *Service) Transfer(ctx context.Context, fromID, toID uint, amount money.Money, opts Options) (*TransferResult, error) {
	if fromID == toID {
		return nil, ErrSelfTransfer
	}
	if err := validation.Amount(amount, s.cfg.Limits); err != nil {
		return nil, err
	}

	var result TransferResult
	err := s.store.ExecuteInTransaction(ctx, func(st repositories.Store) error {
		from, to, err := s.lockPair(ctx, st, fromID, toID)
		if err != nil {
			return err
		}
		if err := validation.WalletActive(from); err != nil {
			return fmt.Errorf("source wallet %d: %w", fromID, err)
		}
		if err := validation.WalletActive(to); err != nil {
			return fmt.Errorf("destination wallet %d: %w", toID, err)
		}
		if err := validation.Withdrawal(from, amount); err != nil {
			return err
		}

		converted, rate, err := s.converter.Convert(amount, from.Currency, to.Currency)
		if err != nil {
			return err
		}

		transferID := uuid.NewString()
		pair := from.Currency + "/" + to.Currency

		fromTxn, err := s.transferLeg(ctx, st, from, models.TypeWithdraw, amount, opts, models.JSON{
			"transfer_id":            transferID,
			"counterparty_wallet_id": to.ID,
			"currency_pair":          pair,
			"conversion_rate":        rate,
		}, fmt.Sprintf("Transfer to wallet %d", to.ID))
		if err != nil {
			return err
		}

		toTxn, err := s.transferLeg(ctx, st, to, models.TypeDeposit, converted, opts, models.JSON{
			"transfer_id":            transferID,
			"counterparty_wallet_id": from.ID,
			"currency_pair":          pair,
			"conversion_rate":        rate,
		}, fmt.Sprintf("Transfer from wallet %d", from.ID))
		if err != nil {
			return err
		}

		result = TransferResult{From: fromTxn, To: toTxn, Rate: rate}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, fromID)
	s.invalidate(ctx, toID)
	return &result, nil
}

// lockPair acquires both wallet rows in ascending id order and returns
// them as (from, to).
func (s *Service) lockPair(ctx context.Context, st repositories.Store, fromID, toID uint) (*models.Wallet, *models.Wallet, error) {
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}

	locked := make(map[uint]*models.Wallet, 2)
	for _, id := range []uint{first, second} {
		w, err := st.Wallets().GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrWalletNotFound) {
				return nil, nil, fmt.Errorf("wallet %d: %w", id, validation.ErrWalletNotFound)
			}
			return nil, nil, err
		}
		locked[id] = w
	}
	return locked[fromID], locked[toID], nil
}

// transferLeg creates one leg of the transfer and approves it within
// the held locks. A downgraded approval surfaces as ErrTransferFailed,
// rolling back both legs.
func (s *Service) transferLeg(ctx context.Context, st repositories.Store, w *models.Wallet, typ models.TransactionType, amount money.Money, opts Options, crossRef models.JSON, description string) (*models.Transaction, error) {
	legOpts := opts
	legOpts.AutoApprove = true
	if legOpts.Description == "" {
		legOpts.Description = description
	}
	legOpts.Meta = make(map[string]interface{}, len(opts.Meta)+len(crossRef))
	for k, v := range opts.Meta {
		legOpts.Meta[k] = v
	}
	for k, v := range crossRef {
		legOpts.Meta[k] = v
	}

	txn, err := s.newEntry(ctx, st, w, typ, amount, legOpts)
	if err != nil {
		return nil, err
	}

	ok, err := s.approvals.ApproveWithin(ctx, st, txn)
	if err != nil {
		return nil, err
	}
	if !ok {
		reason, _ := txn.Meta["rejection_reason"].(string)
		return nil, fmt.Errorf("%w: %s leg rejected: %s", ErrTransferFailed, typ, reason)
	}
	return txn, nil
}
