package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BrightLiao/PokerAnalysis/internal/model"
)

// ParseLedger reads the companion ledger CSV. Required columns are
// player_nickname, player_id, buy_in and buy_out; stack, net and the session
// timestamps are optional.
func ParseLedger(path string) ([]model.LedgerEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parser: open ledger: %w", err)
	}
	defer f.Close()
	return ReadLedger(f)
}

// ReadLedger parses ledger rows from a stream.
func ReadLedger(r io.Reader) ([]model.LedgerEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"player_nickname", "player_id"} {
		if _, ok := cols[required]; !ok {
			return nil, &ParseError{Line: 1, Err: fmt.Errorf("ledger missing %s column", required)}
		}
	}

	get := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	num := func(record []string, name string) float64 {
		v, _ := strconv.ParseFloat(get(record, name), 64)
		return v
	}

	var entries []model.LedgerEntry
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		entries = append(entries, model.LedgerEntry{
			Nickname:     get(record, "player_nickname"),
			PlayerID:     get(record, "player_id"),
			SessionStart: get(record, "session_start_at"),
			SessionEnd:   get(record, "session_end_at"),
			BuyIn:        num(record, "buy_in"),
			BuyOut:       num(record, "buy_out"),
			Stack:        num(record, "stack"),
			Net:          num(record, "net"),
		})
	}
	return entries, nil
}

// LedgerTotals folds per-session rows into per-player totals. The session
// count is the number of ledger rows for the player; the final stack is the
// last non-zero stack seen.
func LedgerTotals(entries []model.LedgerEntry) map[string]model.LedgerTotals {
	totals := make(map[string]model.LedgerTotals)
	for _, e := range entries {
		key := e.PlayerKey()
		t := totals[key]
		t.Nickname = e.Nickname
		t.PlayerID = e.PlayerID
		t.BuyIn += e.BuyIn
		t.BuyOut += e.BuyOut
		t.Net += e.Net
		t.Sessions++
		if e.Stack > 0 {
			t.FinalStack = e.Stack
		}
		totals[key] = t
	}
	return totals
}

// VerifyZeroSum checks that the ledger-side net amounts cancel out across
// all players within epsilon.
func VerifyZeroSum(totals map[string]model.LedgerTotals, epsilon float64) (bool, float64) {
	sum := 0.0
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sum += totals[k].Net
	}
	return math.Abs(sum) <= epsilon, sum
}
