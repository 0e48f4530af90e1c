package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mwantia/docstore/data"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (CGO_ENABLED=0 compatible)
)

// SQLiteDriver persists the collection in a SQLite database while keeping
// the whole-document contract: SaveAll replaces every row in one
// transaction and Backup copies the records table wholesale into a backup
// table, overwriting the previous snapshot.
type SQLiteDriver struct {
	mu sync.Mutex
	db *sql.DB

	dbPath string
	name   string
}

// NewSQLiteDriver creates a SQLite-backed driver.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewSQLiteDriver(dbPath, name string) (*SQLiteDriver, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	driver := &SQLiteDriver{
		db:     db,
		dbPath: dbPath,
		name:   name,
	}

	if err := driver.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return driver, nil
}

// initSchema creates the database schema.
func (sd *SQLiteDriver) initSchema() error {
	schema := fmt.Sprintf(`
	-- Primary document, one row per record
	CREATE TABLE IF NOT EXISTS %[1]q (
		id TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);

	-- Backup snapshot, overwritten wholesale on each backup
	CREATE TABLE IF NOT EXISTS %[2]q (
		id TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);

	-- Single-row marker distinguishing "no backup yet" from an empty one
	CREATE TABLE IF NOT EXISTS %[3]q (
		taken_at INTEGER NOT NULL
	);`, sd.recordsTable(), sd.backupTable(), sd.markerTable())

	_, err := sd.db.Exec(schema)
	return err
}

func (sd *SQLiteDriver) recordsTable() string {
	return sd.name + "_records"
}

func (sd *SQLiteDriver) backupTable() string {
	return sd.name + "_backup"
}

func (sd *SQLiteDriver) markerTable() string {
	return sd.name + "_backup_state"
}

// Name returns the identifier name defined for this driver.
func (*SQLiteDriver) Name() string {
	return "sqlite"
}

// Open is part of the lifecycle behaviour and gets called when opening this driver.
func (sd *SQLiteDriver) Open(ctx context.Context) error {
	return sd.db.PingContext(ctx)
}

// Close is part of the lifecycle behaviour and gets called when closing this driver.
func (sd *SQLiteDriver) Close(ctx context.Context) error {
	return sd.db.Close()
}

// LoadAll reads every record row and parses it into the collection.
func (sd *SQLiteDriver) LoadAll(ctx context.Context) (data.Collection, error) {
	sd.mu.Lock()
	defer sd.mu.Unlock()

	return sd.readTable(ctx, sd.recordsTable())
}

// SaveAll replaces all record rows within one transaction.
func (sd *SQLiteDriver) SaveAll(ctx context.Context, col data.Collection) error {
	sd.mu.Lock()
	defer sd.mu.Unlock()

	tx, err := sd.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %q", sd.recordsTable())); err != nil {
		return err
	}

	insert := fmt.Sprintf("INSERT INTO %q (id, doc) VALUES (?, ?)", sd.recordsTable())
	for id, rec := range col {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to serialize record %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, insert, id, string(doc)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Backup copies the records table into the backup table.
func (sd *SQLiteDriver) Backup(ctx context.Context) (string, error) {
	sd.mu.Lock()
	defer sd.mu.Unlock()

	tx, err := sd.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	statements := []string{
		fmt.Sprintf("DELETE FROM %q", sd.backupTable()),
		fmt.Sprintf("INSERT INTO %q SELECT id, doc FROM %q", sd.backupTable(), sd.recordsTable()),
		fmt.Sprintf("DELETE FROM %q", sd.markerTable()),
		fmt.Sprintf("INSERT INTO %q (taken_at) VALUES (unixepoch())", sd.markerTable()),
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return sd.dbPath + "#" + sd.backupTable(), nil
}

// Restore reads the backup table.
func (sd *SQLiteDriver) Restore(ctx context.Context) (data.Collection, error) {
	sd.mu.Lock()
	defer sd.mu.Unlock()

	var count int
	row := sd.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %q", sd.markerTable()))
	if err := row.Scan(&count); err != nil {
		return nil, err
	}

	if count == 0 {
		return nil, data.ErrBackupMissing
	}

	return sd.readTable(ctx, sd.backupTable())
}

func (sd *SQLiteDriver) readTable(ctx context.Context, table string) (data.Collection, error) {
	rows, err := sd.db.QueryContext(ctx, fmt.Sprintf("SELECT id, doc FROM %q", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	col := data.Collection{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}

		rec := data.Record{}
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("%w: record %s: %v", data.ErrCorruptData, id, err)
		}

		col[id] = rec
	}

	return col, rows.Err()
}
