package taxlot

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestJournalRoundTrip(t *testing.T) {
	txs := []Transaction{
		NewBuy(day(2023, time.January, 10), "AAPL", Q(10), USD(100), USD(4.95), "lot-1"),
		NewDividendReinvestment(day(2023, time.March, 15), "AAPL", Q(0.5), USD(110), "lot-2"),
		NewSplit(day(2024, time.June, 3), "AAPL", Q(2)),
		NewSell(day(2024, time.August, 1), "AAPL", Q(15), USD(2250), FIFO),
		NewMerger(day(2024, time.December, 1), "AAPL", "NEWCO", Q(1.5), USD(2), USD(12)),
	}

	var buf bytes.Buffer
	if err := EncodeJournal(&buf, txs); err != nil {
		t.Fatalf("EncodeJournal: %v", err)
	}

	got, err := DecodeJournal(&buf)
	if err != nil {
		t.Fatalf("DecodeJournal: %v", err)
	}
	if len(got) != len(txs) {
		t.Fatalf("decoded %d transactions, want %d", len(got), len(txs))
	}
	for i, want := range txs {
		g := got[i]
		if g.Type != want.Type || g.SecurityID != want.SecurityID || g.Date != want.Date {
			t.Errorf("tx[%d] = %s %s %v, want %s %s %v", i, g.Type, g.SecurityID, g.Date, want.Type, want.SecurityID, want.Date)
		}
		if !g.Shares.Equal(want.Shares) {
			t.Errorf("tx[%d].Shares = %s, want %s", i, g.Shares, want.Shares)
		}
		if !g.Ratio.Equal(want.Ratio) {
			t.Errorf("tx[%d].Ratio = %s, want %s", i, g.Ratio, want.Ratio)
		}
		if g.LotID != want.LotID {
			t.Errorf("tx[%d].LotID = %q, want %q", i, g.LotID, want.LotID)
		}
		if g.Method != want.Method {
			t.Errorf("tx[%d].Method = %q, want %q", i, g.Method, want.Method)
		}
		if g.NewSecurityID != want.NewSecurityID {
			t.Errorf("tx[%d].NewSecurityID = %q, want %q", i, g.NewSecurityID, want.NewSecurityID)
		}
	}

	// monetary fields keep their value and currency
	if !got[0].PricePerShare.Equal(USD(100)) || !got[0].Fees.Equal(USD(4.95)) {
		t.Errorf("buy money fields = %s / %s, want 100 USD / 4.95 USD", got[0].PricePerShare, got[0].Fees)
	}
	if !got[3].Proceeds.Equal(USD(2250)) {
		t.Errorf("sell proceeds = %s, want 2250 USD", got[3].Proceeds)
	}
	if !got[4].CashPerShare.Equal(USD(2)) || !got[4].PricePerShare.Equal(USD(12)) {
		t.Errorf("merger money fields = %s / %s, want 2 USD / 12 USD", got[4].CashPerShare, got[4].PricePerShare)
	}
}

func TestEncodeJournalChronological(t *testing.T) {
	txs := []Transaction{
		NewBuy(day(2024, time.March, 1), "AAPL", Q(10), USD(100), USD(0), "lot-2"),
		NewBuy(day(2024, time.January, 2), "AAPL", Q(10), USD(90), USD(0), "lot-1"),
	}

	var buf bytes.Buffer
	if err := EncodeJournal(&buf, txs); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "2024-01-02") {
		t.Errorf("first line should be the earliest record, got %s", lines[0])
	}
}

func TestDecodeJournalErrors(t *testing.T) {
	if _, err := DecodeJournal(strings.NewReader("not json\n")); err == nil {
		t.Errorf("malformed line: expected an error")
	}
	if _, err := DecodeJournal(strings.NewReader(`{"date":"2024-01-02","security":"AAPL"}` + "\n")); err == nil {
		t.Errorf("missing type: expected an error")
	}
	got, err := DecodeJournal(strings.NewReader("\n\n"))
	if err != nil || len(got) != 0 {
		t.Errorf("blank lines: got (%v, %v), want empty journal", got, err)
	}
}

func TestDecodeJournalSortsByDate(t *testing.T) {
	journal := strings.Join([]string{
		`{"type":"sell","date":"2024-06-03","security":"AAPL","shares":5,"proceeds":750,"currency":"USD","method":"fifo"}`,
		`{"type":"buy","date":"2024-01-02","security":"AAPL","shares":10,"price":100,"currency":"USD"}`,
	}, "\n")

	got, err := DecodeJournal(strings.NewReader(journal))
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Type != TxBuy || got[1].Type != TxSell {
		t.Errorf("journal not chronological after decode: [%s %s]", got[0].Type, got[1].Type)
	}
}
