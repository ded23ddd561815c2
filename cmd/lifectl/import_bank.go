package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lifeledger/internal/core"
	"lifeledger/internal/log"
	"lifeledger/internal/taxonomy"
)

func importBankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-bank FILE",
		Short: "Import a bank statement CSV",
		Long: `Import bank transactions from a CSV file with a header row. Recognised columns:

  date (required), time, type (deposit|withdrawal), amount (required),
  counterparty, bank, memo, balance

Korean headers 거래일, 시간, 구분, 금액, 거래처, 은행, 메모, 잔액 are accepted too.
When type is absent the sign of amount decides it. Counterparty names are
classified with the merchant table.`,
		Args: cobra.ExactArgs(1),
		RunE: runImportBank,
	}
	cmd.Flags().String("user", "", "user id; defaults to DEFAULT_USER_ID")
	cmd.Flags().String("bank", "", "bank name for rows without a bank column")
	cmd.Flags().Bool("dry-run", false, "parse and classify without writing")
	return cmd
}

var headerAliases = map[string]string{
	"date": "date", "거래일": "date", "거래일자": "date",
	"time": "time", "시간": "time", "거래시간": "time",
	"type": "type", "구분": "type",
	"amount": "amount", "금액": "amount", "거래금액": "amount",
	"counterparty": "counterparty", "거래처": "counterparty", "적요": "counterparty",
	"bank": "bank", "은행": "bank",
	"memo": "memo", "메모": "memo",
	"balance": "balance", "잔액": "balance",
}

// RowError reports a CSV line that could not be imported.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// parseBankCSV reads rows for userID. Bad lines are returned as RowErrors
// and do not stop the parse.
func parseBankCSV(r io.Reader, userID, defaultBank string) ([]core.BankTransactionRow, []error, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		if name, ok := headerAliases[key]; ok {
			cols[name] = i
		}
	}
	for _, required := range []string{"date", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("missing %q column", required)
		}
	}

	var rows []core.BankTransactionRow
	var rowErrs []error
	line := 1
	for {
		rec, err := cr.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: err})
			continue
		}
		get := func(name string) string {
			if i, ok := cols[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		row, err := bankRow(get, userID, defaultBank)
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: err})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func bankRow(get func(string) string, userID, defaultBank string) (core.BankTransactionRow, error) {
	date := get("date")
	if _, err := core.ParseDate(date); err != nil {
		return core.BankTransactionRow{}, err
	}
	clock := get("time")
	if len(clock) == 8 {
		clock = clock[:5]
	}
	if clock != "" && !core.ValidClock(clock) {
		return core.BankTransactionRow{}, fmt.Errorf("%w: time %q", core.ErrInvalidDate, get("time"))
	}
	amount, err := core.ParseAmount(get("amount"))
	if err != nil {
		return core.BankTransactionRow{}, fmt.Errorf("amount %q: %w", get("amount"), err)
	}

	var kind string
	switch strings.ToLower(get("type")) {
	case "deposit", "입금":
		kind = core.BankDeposit
	case "withdrawal", "출금":
		kind = core.BankWithdrawal
	case "":
		kind = core.BankDeposit
		if amount < 0 {
			kind = core.BankWithdrawal
		}
	default:
		return core.BankTransactionRow{}, fmt.Errorf("unknown transaction type %q", get("type"))
	}

	row := core.BankTransactionRow{
		UserID:          userID,
		TransactionDate: date,
		TransactionTime: clock,
		Amount:          core.Abs(amount),
		TransactionType: kind,
		BankName:        get("bank"),
		Memo:            get("memo"),
	}
	if row.BankName == "" {
		row.BankName = defaultBank
	}
	if b := get("balance"); b != "" {
		if row.BalanceAfter, err = core.ParseAmount(b); err != nil {
			return core.BankTransactionRow{}, fmt.Errorf("balance %q: %w", b, err)
		}
	}

	counterparty := get("counterparty")
	if kind == core.BankDeposit {
		row.SenderName = counterparty
	} else {
		row.ReceiverName = counterparty
	}
	if counterparty != "" {
		row.Category = taxonomy.Classify(counterparty)
	}
	return row, nil
}

func runImportBank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	user, err := userFlag(cmd)
	if err != nil {
		return err
	}
	bank, _ := cmd.Flags().GetString("bank")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rows, rowErrs, err := parseBankCSV(f, user, bank)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	for _, e := range rowErrs {
		logger.Warn("Skipping CSV line", log.FieldError, e)
	}

	if dryRun {
		for _, r := range rows {
			fmt.Printf("%s %s %-10s %12s %s [%s]\n", r.TransactionDate, r.TransactionTime, r.TransactionType,
				core.FormatWon(r.Amount), r.SenderName+r.ReceiverName, r.Category)
		}
		fmt.Printf("%d rows parsed, %d skipped (dry run)\n", len(rows), len(rowErrs))
		return nil
	}

	be, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = be.Cleanup() }()

	imported := 0
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("import interrupted after %d rows: %w", imported, err)
		}
		if _, err := be.Store.InsertBankTransaction(ctx, r); err != nil {
			return fmt.Errorf("import interrupted after %d rows: %w", imported, err)
		}
		imported++
	}
	logger.Info("Bank statement imported",
		log.FieldUserID, user, log.FieldCount, imported, log.FieldSkipped, len(rowErrs), "file", args[0])
	fmt.Printf("%d rows imported, %d skipped\n", imported, len(rowErrs))
	return nil
}
