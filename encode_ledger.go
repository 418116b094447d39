package moneyhero

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// EncodeTransaction writes tx as a single JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction %q: %w", tx.ID, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeHistory writes the history of s in JSONL format, by ascending date.
// Transactions of the same day keep their insertion order.
func EncodeHistory(w io.Writer, s *PlayerState) error {
	for tx := range s.Chronological() {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// DecodeHistory reads transactions in JSONL format. Blank lines are skipped.
// Decoded transactions are not validated.
func DecodeHistory(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal([]byte(text), &tx); err != nil {
			return nil, fmt.Errorf("format error on line %d %q: %w", line, text, err)
		}
		if tx.Type != Income && tx.Type != Expense {
			return nil, fmt.Errorf("format error on line %d: unknown type %q", line, tx.Type)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read history: %w", err)
	}
	return txs, nil
}
