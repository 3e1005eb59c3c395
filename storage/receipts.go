package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	_ "modernc.org/sqlite"
)

// Receipt records the auxiliary fields of one successful estimate: the
// identifiers and hashes the backend returns alongside the justification.
type Receipt struct {
	ID            string
	Query         string
	Justification string
	BackendUUID   string
	PDFHash       string
	TxHash        string
	PDFURL        string
	PDFPath       string
	CreatedAt     time.Time
}

type ReceiptLedger struct {
	db *sql.DB
}

var ErrReceiptNotFound = errors.New("receipt not found")

// OpenReceiptLedger opens (and creates if needed) the ledger database at path.
func OpenReceiptLedger(path string) (*ReceiptLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ledger := &ReceiptLedger{db: db}

	if err := ledger.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return ledger, nil
}

func (rl *ReceiptLedger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS receipts (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		justification TEXT NOT NULL,
		backend_uuid TEXT,
		pdf_hash TEXT,
		tx_hash TEXT,
		pdf_url TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_receipts_created_at ON receipts(created_at);
	`

	if _, err := rl.db.Exec(schema); err != nil {
		return err
	}

	if err := rl.migrateSchema(); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}

// migrateSchema adds pdf_path to ledgers created before reports were saved locally
func (rl *ReceiptLedger) migrateSchema() error {
	hasPDFPath, err := rl.columnExists("receipts", "pdf_path")
	if err != nil {
		return fmt.Errorf("failed to check for pdf_path column: %w", err)
	}
	if !hasPDFPath {
		if _, err := rl.db.Exec(`ALTER TABLE receipts ADD COLUMN pdf_path TEXT DEFAULT ''`); err != nil {
			return fmt.Errorf("failed to add pdf_path column: %w", err)
		}
	}
	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info
func (rl *ReceiptLedger) columnExists(tableName, columnName string) (bool, error) {
	rows, err := rl.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid          int
			name         string
			dataType     string
			notNull      int
			defaultValue interface{}
			pk           int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Record stores r, assigning an ID and timestamp when they are unset.
// The stored receipt is returned.
func (rl *ReceiptLedger) Record(r Receipt) (Receipt, error) {
	if r.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Receipt{}, fmt.Errorf("failed to generate receipt id: %w", err)
		}
		r.ID = id.String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	query := `
	INSERT OR REPLACE INTO receipts (id, query, justification, backend_uuid, pdf_hash, tx_hash, pdf_url, pdf_path, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := rl.db.Exec(query,
		r.ID,
		r.Query,
		r.Justification,
		r.BackendUUID,
		r.PDFHash,
		r.TxHash,
		r.PDFURL,
		r.PDFPath,
		r.CreatedAt.UTC(),
	)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to record receipt: %w", err)
	}
	return r, nil
}

const receiptColumns = `id, query, justification, backend_uuid, pdf_hash, tx_hash, pdf_url, pdf_path, created_at`

func (rl *ReceiptLedger) Load(id string) (*Receipt, error) {
	row := rl.db.QueryRow(`SELECT `+receiptColumns+` FROM receipts WHERE id = ?`, id)
	r, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List returns receipts newest first. limit <= 0 returns all of them.
func (rl *ReceiptLedger) List(limit int) ([]Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := rl.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *r)
	}
	return receipts, rows.Err()
}

// Search fuzzy-matches query against the recorded queries, best match first.
func (rl *ReceiptLedger) Search(query string) ([]Receipt, error) {
	all, err := rl.List(0)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}

	targets := make([]string, len(all))
	for i, r := range all {
		targets[i] = r.Query
	}

	matches := fuzzy.Find(query, targets)
	out := make([]Receipt, len(matches))
	for i, match := range matches {
		out[i] = all[match.Index]
	}
	return out, nil
}

func (rl *ReceiptLedger) Close() error {
	return rl.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*Receipt, error) {
	var (
		r                                          Receipt
		backendUUID, pdfHash, txHash, pdfURL, path sql.NullString
	)
	err := row.Scan(
		&r.ID,
		&r.Query,
		&r.Justification,
		&backendUUID,
		&pdfHash,
		&txHash,
		&pdfURL,
		&path,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.BackendUUID = backendUUID.String
	r.PDFHash = pdfHash.String
	r.TxHash = txHash.String
	r.PDFURL = pdfURL.String
	r.PDFPath = path.String
	return &r, nil
}
