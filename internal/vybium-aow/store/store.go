// Package store persists event chains in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	_ "modernc.org/sqlite"

	"github.com/vybium/vybium-aow/internal/vybium-aow/chain"
	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
)

var log = logging.Logger("store")

// ErrNotFound is returned when no chain has the requested id
var ErrNotFound = errors.New("chain not found")

// ChainInfo describes a stored chain without its events
type ChainInfo struct {
	ID        string
	Modulus   *big.Int
	Alpha     *big.Int
	Events    int
	CreatedAt time.Time
}

// Store is a SQLite chain store
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dsn
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chains (
			id TEXT PRIMARY KEY,
			modulus TEXT NOT NULL,
			alpha TEXT NOT NULL,
			genesis TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			chain_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			data BLOB,
			previous_hash BLOB,
			hash BLOB,
			iterations INTEGER NOT NULL,
			PRIMARY KEY (chain_id, position),
			FOREIGN KEY (chain_id) REFERENCES chains(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chains_created ON chains(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// SaveChain stores a snapshot of c under a new id
func (s *Store) SaveChain(ctx context.Context, c *chain.EventChain) (string, error) {
	id := uuid.NewString()
	events := c.Events()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chains (id, modulus, alpha, genesis, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, c.Field().Modulus().String(), c.Alpha().String(), c.Genesis().Big().String(), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert chain: %w", err)
	}

	for _, e := range events {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (chain_id, position, data, previous_hash, hash, iterations) VALUES (?, ?, ?, ?, ?, ?)`,
			id, int64(e.Timestamp), e.Data, e.PreviousHash, e.Hash, int64(e.Iterations))
		if err != nil {
			return "", fmt.Errorf("failed to insert event %d: %w", e.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit chain: %w", err)
	}

	log.Debugf("saved chain %s with %d events", id, len(events))
	return id, nil
}

// LoadChain restores the chain stored under id. field must have the stored
// modulus; a nil field is rebuilt from the stored one.
func (s *Store) LoadChain(ctx context.Context, id string, field *core.Field) (*chain.EventChain, error) {
	var modulusStr, alphaStr, genesisStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT modulus, alpha, genesis FROM chains WHERE id = ?`, id).
		Scan(&modulusStr, &alphaStr, &genesisStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chain: %w", err)
	}

	modulus, err := parseBig("modulus", modulusStr)
	if err != nil {
		return nil, err
	}
	alpha, err := parseBig("alpha", alphaStr)
	if err != nil {
		return nil, err
	}
	genesis, err := parseBig("genesis", genesisStr)
	if err != nil {
		return nil, err
	}

	if field == nil {
		field, err = core.NewField(modulus)
		if err != nil {
			return nil, fmt.Errorf("stored modulus: %w", err)
		}
	} else if field.Modulus().Cmp(modulus) != 0 {
		return nil, fmt.Errorf("chain %s uses modulus %s, not %s", id, modulus, field.Modulus())
	}

	events, err := s.getEvents(ctx, id)
	if err != nil {
		return nil, err
	}

	return chain.Restore(field, alpha, field.NewElement(genesis), events), nil
}

func (s *Store) getEvents(ctx context.Context, id string) ([]chain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, data, previous_hash, hash, iterations
		 FROM events WHERE chain_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []chain.Event
	for rows.Next() {
		var e chain.Event
		var position, iterations int64
		if err := rows.Scan(&position, &e.Data, &e.PreviousHash, &e.Hash, &iterations); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Timestamp = uint64(position)
		e.Iterations = uint64(iterations)
		events = append(events, e)
	}

	return events, rows.Err()
}

// ListChains returns every stored chain, newest first
func (s *Store) ListChains(ctx context.Context) ([]ChainInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.modulus, c.alpha, c.created_at, COUNT(e.position)
		 FROM chains c LEFT JOIN events e ON e.chain_id = c.id
		 GROUP BY c.id
		 ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chains: %w", err)
	}
	defer rows.Close()

	var infos []ChainInfo
	for rows.Next() {
		var info ChainInfo
		var modulusStr, alphaStr string
		if err := rows.Scan(&info.ID, &modulusStr, &alphaStr, &info.CreatedAt, &info.Events); err != nil {
			return nil, fmt.Errorf("failed to scan chain: %w", err)
		}
		if info.Modulus, err = parseBig("modulus", modulusStr); err != nil {
			return nil, err
		}
		if info.Alpha, err = parseBig("alpha", alphaStr); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	return infos, rows.Err()
}

// DeleteChain removes a chain and its events
func (s *Store) DeleteChain(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE chain_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM chains WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chain: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return tx.Commit()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func parseBig(name, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("stored %s %q is not a decimal integer", name, s)
	}
	return v, nil
}
