package bank

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// SchemaVersion is the version of the canonical snapshot schema. Older files
// are converted by the migrate tool, the decoder never guesses.
const SchemaVersion = 2

// Meta describes a snapshot.
type Meta struct {
	Schema  int       `json:"schema"`
	Install string    `json:"install,omitempty"`
	Saved   time.Time `json:"saved,omitzero"`
}

// Snapshot is the full entity set of a bank, as loaded and saved by a Store.
type Snapshot struct {
	Meta    Meta
	Records []Record
}

// NewSnapshot returns an empty snapshot of the current schema.
func NewSnapshot() *Snapshot {
	return &Snapshot{Meta: Meta{Schema: SchemaVersion}}
}

// EncodeRecord writes rec as a single JSON line, table first.
func EncodeRecord(w io.Writer, rec Record) error {
	line, err := MarshalRecord(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write %s %q: %w", rec.Table(), rec.Key(), err)
	}
	return nil
}

// MarshalRecord returns the canonical JSON object of rec.
func MarshalRecord(rec Record) ([]byte, error) {
	b, err := newTableLine(rec.Table().String()).Row(rec).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s %q: %w", rec.Table(), rec.Key(), err)
	}
	return b, nil
}

// UnmarshalRecord decodes a record of a known table from its JSON object. The
// table field, if any, is ignored.
func UnmarshalRecord(table Table, data []byte) (Record, error) {
	var (
		rec Record
		err error
	)
	switch table {
	case CustomerTable:
		var v Customer
		err = json.Unmarshal(data, &v)
		rec = v
	case AccountTable:
		var v Account
		err = json.Unmarshal(data, &v)
		rec = v
	case TransactionTable:
		var v Transaction
		err = json.Unmarshal(data, &v)
		rec = v
	case TransferTable:
		var v Transfer
		err = json.Unmarshal(data, &v)
		rec = v
	case ChequeTable:
		var v Cheque
		err = json.Unmarshal(data, &v)
		rec = v
	case LoanTable:
		var v Loan
		err = json.Unmarshal(data, &v)
		rec = v
	case PaymentTable:
		var v LoanPayment
		err = json.Unmarshal(data, &v)
		rec = v
	case AuditTable:
		var v AuditEntry
		err = json.Unmarshal(data, &v)
		rec = v
	default:
		return nil, fmt.Errorf("unknown table %v", table)
	}
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", table, err)
	}
	if rec.Key() == "" {
		return nil, fmt.Errorf("%s record without identifier", table)
	}
	return rec, nil
}

// EncodeSnapshot writes the meta line and then every record in JSONL format.
func EncodeSnapshot(w io.Writer, snap *Snapshot) error {
	line, err := newTableLine("meta").Row(snap.Meta).Bytes()
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot meta: %w", err)
	}
	if _, err := w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write snapshot meta: %w", err)
	}
	for _, rec := range snap.Records {
		if err := EncodeRecord(w, rec); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSnapshot reads a JSONL snapshot. The first line must be the meta line
// of the current schema.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var snap *Snapshot
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Table string `json:"table"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify table: %w", lineNo, err)
		}

		if snap == nil {
			if identifier.Table != "meta" {
				return nil, fmt.Errorf("line %d: snapshot must start with a meta line, got %q", lineNo, identifier.Table)
			}
			snap = &Snapshot{}
			if err := json.Unmarshal(lineBytes, &snap.Meta); err != nil {
				return nil, fmt.Errorf("line %d: invalid meta: %w", lineNo, err)
			}
			if snap.Meta.Schema != SchemaVersion {
				return nil, fmt.Errorf("snapshot schema %d is not supported (want %d), run the migrate tool", snap.Meta.Schema, SchemaVersion)
			}
			continue
		}

		table, err := ParseTable(identifier.Table)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rec, err := UnmarshalRecord(table, lineBytes)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		snap.Records = append(snap.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	if snap == nil {
		return NewSnapshot(), nil
	}
	return snap, nil
}
