package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lifeledger/internal/amqp"
	"lifeledger/internal/core"
	"lifeledger/internal/log"
	"lifeledger/internal/stores"
	"lifeledger/internal/taxonomy"
)

// ClassifyStore is what the classify worker reads and patches.
type ClassifyStore interface {
	stores.LedgerStore
	stores.BankStore
}

// ClassifyWorker fills in the category of ledger and bank rows written
// without one, using the merchant classifier on the payee name.
type ClassifyWorker struct {
	store      ClassifyStore
	classifier *taxonomy.Classifier
	resolver   *taxonomy.Resolver
	logger     *log.Logger
}

func NewClassifyWorker(store ClassifyStore, logger *log.Logger) *ClassifyWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ClassifyWorker{
		store:      store,
		classifier: taxonomy.DefaultClassifier(),
		resolver:   taxonomy.NewResolver(taxonomy.Default()),
		logger:     logger.WithComponent(log.ComponentWorker),
	}
}

// needsCategory is true only for rows stored without any category. An
// explicit 기타 is a user choice and stays.
func needsCategory(category string) bool {
	return strings.TrimSpace(category) == ""
}

// HandleChange processes one change message. Deletes and sources other
// than ledger and bank are acknowledged without work. A record that is
// gone by the time the message arrives is not an error.
func (w *ClassifyWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	if msg.Op == amqp.OpDeleted {
		return nil
	}
	kind, raw, err := core.ParseRecordID(msg.ID)
	if err != nil {
		w.logger.WarnContext(ctx, "Ignoring change message with bad id", log.FieldRecordID, msg.ID, log.FieldError, err)
		return nil
	}

	var changed bool
	switch kind {
	case core.KindLedger:
		changed, err = w.classifyLedger(ctx, msg.UserID, raw)
	case core.KindBank:
		changed, err = w.classifyBank(ctx, msg.UserID, raw)
	default:
		return nil
	}
	if errors.Is(err, core.ErrNotFound) {
		w.logger.DebugContext(ctx, "Changed record no longer exists", log.FieldRecordID, msg.ID)
		return nil
	}
	if err != nil {
		return err
	}
	if changed {
		w.logger.InfoContext(ctx, "Classified record",
			log.FieldRecordID, msg.ID, log.FieldUserID, msg.UserID, log.FieldOperation, log.OpClassify)
	}
	return nil
}

func (w *ClassifyWorker) classifyLedger(ctx context.Context, userID, id string) (bool, error) {
	row, err := w.store.GetLedger(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if !needsCategory(row.Category) || strings.TrimSpace(row.Merchant) == "" {
		return false, nil
	}
	category := w.classifier.Classify(row.Merchant)
	if category == taxonomy.FallbackCategory {
		return false, nil
	}
	group := w.resolver.Resolve(category, "")
	row.Category = category
	row.CategoryGroup = string(group)
	// Ledger amounts carry the direction of their category.
	if group == taxonomy.GroupIncome {
		row.Amount = core.Abs(row.Amount)
	} else {
		row.Amount = -core.Abs(row.Amount)
	}
	if err := w.store.UpdateLedger(ctx, row); err != nil {
		return false, fmt.Errorf("update ledger %s: %w", id, err)
	}
	return true, nil
}

func (w *ClassifyWorker) classifyBank(ctx context.Context, userID, id string) (bool, error) {
	row, err := w.store.GetBankTransaction(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if !needsCategory(row.Category) {
		return false, nil
	}
	name := row.ReceiverName
	if row.TransactionType == core.BankDeposit {
		name = row.SenderName
	}
	if strings.TrimSpace(name) == "" {
		return false, nil
	}
	category := w.classifier.Classify(name)
	if category == taxonomy.FallbackCategory {
		return false, nil
	}
	if err := w.store.PatchBankTransaction(ctx, userID, id, stores.BankPatch{Category: &category}); err != nil {
		return false, fmt.Errorf("patch bank transaction %s: %w", id, err)
	}
	return true, nil
}

// Sweep classifies every uncategorised ledger and bank row of a user in
// w. It backs up the message path when messages were lost.
func (w *ClassifyWorker) Sweep(ctx context.Context, userID string, win core.Window) (int, error) {
	ledger, err := w.store.ListLedger(ctx, userID, win)
	if err != nil {
		return 0, fmt.Errorf("list ledger: %w", err)
	}
	bank, err := w.store.ListBankTransactions(ctx, userID, win)
	if err != nil {
		return 0, fmt.Errorf("list bank transactions: %w", err)
	}

	count, failed := 0, 0
	for _, r := range ledger {
		ok, err := w.classifyLedger(ctx, userID, r.ID)
		if err != nil {
			w.logger.ErrorContext(ctx, "Sweep failed on ledger row", log.FieldRecordID, r.ID, log.FieldError, err)
			failed++
			continue
		}
		if ok {
			count++
		}
	}
	for _, r := range bank {
		ok, err := w.classifyBank(ctx, userID, r.ID)
		if err != nil {
			w.logger.ErrorContext(ctx, "Sweep failed on bank row", log.FieldRecordID, r.ID, log.FieldError, err)
			failed++
			continue
		}
		if ok {
			count++
		}
	}

	w.logger.InfoContext(ctx, "Classification sweep completed",
		log.FieldUserID, userID, "total", len(ledger)+len(bank), "classified", count, "errors", failed)
	return count, nil
}
