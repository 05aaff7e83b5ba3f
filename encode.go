package taxlot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// EncodeTransaction writes a single transaction as one JSONL line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("could not marshal %s transaction: %w", tx.Type, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("could not write transaction: %w", err)
	}
	return nil
}

// EncodeJournal writes transactions as JSONL, in chronological order.
func EncodeJournal(w io.Writer, txs []Transaction) error {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, compareTxDates)
	for _, tx := range sorted {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// DecodeJournal decodes a stream of JSONL transaction records and returns
// them sorted chronologically (stable, so same-day records keep their
// journal order).
func DecodeJournal(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var record txRecord
		if err := json.Unmarshal(lineBytes, &record); err != nil {
			return nil, fmt.Errorf("could not decode journal line %q: %w", string(lineBytes), err)
		}
		if record.Type == "" {
			return nil, fmt.Errorf("could not identify transaction type in line %q", string(lineBytes))
		}
		txs = append(txs, record.transaction())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read journal: %w", err)
	}

	slices.SortStableFunc(txs, compareTxDates)
	return txs, nil
}

func compareTxDates(a, b Transaction) int {
	switch {
	case a.Date.Before(b.Date):
		return -1
	case a.Date.After(b.Date):
		return 1
	default:
		return 0
	}
}
