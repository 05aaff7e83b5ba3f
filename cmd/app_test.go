package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/taxlot"
)

// Helper function to create a temporary journal file
func createTempJournal(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	tmpfile, err := os.Create(filepath.Join(tmp, "test_journal.jsonl"))
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer tmpfile.Close()

	if _, err := tmpfile.WriteString(content); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	return tmpfile.Name()
}

// useJournal points the global journal flag at path for the test's duration.
func useJournal(t *testing.T, path string) {
	t.Helper()
	oldJournalFile := journalFile
	journalFile = &path
	t.Cleanup(func() { journalFile = oldJournalFile })
}

func TestLoadJournalMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist.jsonl")
	useJournal(t, missing)

	txs, err := LoadJournal()
	if err != nil {
		t.Fatalf("a missing journal is an empty journal, got error %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d transactions, want 0", len(txs))
	}
}

func TestReplayJournal(t *testing.T) {
	journal := `{"type":"buy","date":"2023-01-10","security":"AAPL","shares":10,"price":100,"currency":"USD"}
{"type":"buy","date":"2023-06-10","security":"AAPL","shares":10,"price":120,"currency":"USD"}
{"type":"sell","date":"2024-08-01","security":"AAPL","shares":15,"proceeds":2250,"currency":"USD","method":"fifo"}
`
	tmpJournal := createTempJournal(t, journal)
	useJournal(t, tmpJournal)

	txs, err := LoadJournal()
	if err != nil {
		t.Fatal(err)
	}
	replay, err := ReplayJournal(txs)
	if err != nil {
		t.Fatalf("ReplayJournal: %v", err)
	}

	inv := replay.Investments["AAPL"]
	if inv == nil {
		t.Fatal("no AAPL position after replay")
	}
	if !inv.Ledger().TotalRemainingShares().Equal(taxlot.Q(5)) {
		t.Errorf("remaining shares = %s, want 5", inv.Ledger().TotalRemainingShares())
	}
	if len(replay.Sales) != 1 {
		t.Fatalf("got %d sales, want 1", len(replay.Sales))
	}
	// FIFO: 1000 + 600 basis against 2250 proceeds
	if !replay.Sales[0].Result.TotalGain.Equal(taxlot.M(650, "USD")) {
		t.Errorf("TotalGain = %s, want 650 USD", replay.Sales[0].Result.TotalGain)
	}
}

func TestReplayJournalSpecificID(t *testing.T) {
	journal := `{"type":"buy","date":"2023-01-10","security":"AAPL","shares":10,"price":100,"currency":"USD"}
{"type":"buy","date":"2023-06-10","security":"AAPL","shares":10,"price":120,"currency":"USD"}
{"type":"sell","date":"2024-08-01","security":"AAPL","shares":5,"proceeds":750,"currency":"USD","method":"specific-id","lots":"1:5"}
`
	txs, err := taxlot.DecodeJournal(strings.NewReader(journal))
	if err != nil {
		t.Fatal(err)
	}
	replay, err := ReplayJournal(txs)
	if err != nil {
		t.Fatalf("ReplayJournal: %v", err)
	}

	// the designation names sequence 1, the June lot
	inv := replay.Investments["AAPL"]
	var remaining []string
	for lot := range inv.Ledger().ActiveLots() {
		remaining = append(remaining, lot.RemainingShares.String())
	}
	if len(remaining) != 2 || remaining[0] != "10" || remaining[1] != "5" {
		t.Errorf("remaining per lot = %v, want [10 5]", remaining)
	}
}

// TestReplayJournalWashSaleAfterSale replays the buy, loss sale, repurchase
// sequence in that order and checks that the disallowance still lands: the
// replacement arrives after the sale, so it is applied retroactively during
// the replay and the reported sale result reflects it.
func TestReplayJournalWashSaleAfterSale(t *testing.T) {
	journal := `{"type":"buy","date":"2024-01-02","security":"AAPL","shares":100,"price":50,"currency":"USD"}
{"type":"sell","date":"2024-02-11","security":"AAPL","shares":100,"proceeds":4000,"currency":"USD","method":"fifo"}
{"type":"buy","date":"2024-02-21","security":"AAPL","shares":100,"price":45,"currency":"USD"}
`
	txs, err := taxlot.DecodeJournal(strings.NewReader(journal))
	if err != nil {
		t.Fatal(err)
	}
	replay, err := ReplayJournal(txs)
	if err != nil {
		t.Fatalf("ReplayJournal: %v", err)
	}

	if len(replay.Sales) != 1 {
		t.Fatalf("got %d sales, want 1", len(replay.Sales))
	}
	result := replay.Sales[0].Result
	if !result.IsWashSale {
		t.Error("the loss sale should be flagged as a wash sale")
	}
	if !result.WashSaleDisallowedLoss.Equal(taxlot.M(1000, "USD")) {
		t.Errorf("WashSaleDisallowedLoss = %s, want 1000 USD", result.WashSaleDisallowedLoss)
	}

	// the replacement lot carries the disallowed loss
	inv := replay.Investments["AAPL"]
	var replacement *taxlot.TaxLot
	for lot := range inv.Ledger().ActiveLots() {
		replacement = lot
	}
	if replacement == nil {
		t.Fatal("no open replacement lot after replay")
	}
	if !replacement.CostBasis.Equal(taxlot.M(5500, "USD")) {
		t.Errorf("replacement basis = %s, want 4500 + 1000 disallowed", replacement.CostBasis)
	}
}

func TestReplayJournalBadSell(t *testing.T) {
	journal := `{"type":"sell","date":"2024-08-01","security":"AAPL","shares":5,"proceeds":750,"currency":"USD","method":"fifo"}
`
	txs, err := taxlot.DecodeJournal(strings.NewReader(journal))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ReplayJournal(txs); err == nil {
		t.Error("selling with no lots should fail the replay")
	}
}

func TestParseDesignation(t *testing.T) {
	inv := taxlot.NewInvestment("AAPL", taxlot.FIFO, false)
	lot0, err := inv.RecordBuy(taxlot.MustParseDate("2024-01-02"), taxlot.Q(10), taxlot.M(100, "USD"), taxlot.M(0, "USD"))
	if err != nil {
		t.Fatal(err)
	}
	lot1, err := inv.RecordBuy(taxlot.MustParseDate("2024-02-01"), taxlot.Q(10), taxlot.M(110, "USD"), taxlot.M(0, "USD"))
	if err != nil {
		t.Fatal(err)
	}

	selection, err := ParseDesignation(inv, "0:3, 1:5")
	if err != nil {
		t.Fatalf("ParseDesignation: %v", err)
	}
	if !selection[lot0.ID].Equal(taxlot.Q(3)) {
		t.Errorf("selection[lot0] = %s, want 3", selection[lot0.ID])
	}
	if !selection[lot1.ID].Equal(taxlot.Q(5)) {
		t.Errorf("selection[lot1] = %s, want 5", selection[lot1.ID])
	}

	for _, bad := range []string{"", "0", "x:5", "0:x", "9:5"} {
		if _, err := ParseDesignation(inv, bad); err == nil {
			t.Errorf("ParseDesignation(%q): expected an error", bad)
		}
	}
}
