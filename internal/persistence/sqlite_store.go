package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/petrijr/wizard/pkg/api"
)

// ExpiryHook runs for each record an expiry sweep is about to delete.
// Wizard types that reserve external resources use it to release them.
type ExpiryHook func(ctx context.Context, wizardName, id string, data map[string]any)

// DatabaseRepository is a Repository backed by a relational table through
// database/sql. It expects a *sql.DB using a SQLite driver (for example
// "modernc.org/sqlite"); the caller imports the driver:
//
//	import _ "modernc.org/sqlite"
//
// Identities are auto-increment integers. Every save touches updated_at,
// which DeleteExpired uses as the expiry cutoff. Deleting a missing
// record is a no-op; deleting an identity owned by a different wizard
// type fails with ErrWizardNotFound.
type DatabaseRepository struct {
	db       *sql.DB
	onExpiry ExpiryHook
}

var _ api.ExpiringRepository = (*DatabaseRepository)(nil)

// DatabaseOption configures a DatabaseRepository.
type DatabaseOption func(*DatabaseRepository)

// WithExpiryHook registers a hook invoked for every record DeleteExpired
// removes.
func WithExpiryHook(hook ExpiryHook) DatabaseOption {
	return func(r *DatabaseRepository) { r.onExpiry = hook }
}

// NewDatabaseRepository initializes the wizards table in the given
// database and returns a new DatabaseRepository.
func NewDatabaseRepository(db *sql.DB, opts ...DatabaseOption) (*DatabaseRepository, error) {
	r := &DatabaseRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.initSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *DatabaseRepository) initSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS wizards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			wizard TEXT NOT NULL,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	)
	return err
}

func (r *DatabaseRepository) SaveData(ctx context.Context, w api.WizardRef, data map[string]any) error {
	if w.ID() == "" {
		return r.create(ctx, w, data)
	}
	return r.update(ctx, w, data)
}

func (r *DatabaseRepository) create(ctx context.Context, w api.WizardRef, data map[string]any) error {
	blob, err := encodeData(data)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO wizards (wizard, data, updated_at) VALUES (?, ?, ?)`,
		w.Name(), blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert wizard: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert wizard: %w", err)
	}
	w.SetID(strconv.FormatInt(id, 10))
	return nil
}

func (r *DatabaseRepository) update(ctx context.Context, w api.WizardRef, data map[string]any) error {
	stored, err := r.LoadData(ctx, w)
	if err != nil {
		return err
	}

	blob, err := encodeData(mergeData(stored, data))
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE wizards SET data = ?, updated_at = ? WHERE id = ? AND wizard = ?`,
		blob, time.Now().Unix(), w.ID(), w.Name(),
	)
	if err != nil {
		return fmt.Errorf("update wizard: %w", err)
	}
	return nil
}

func (r *DatabaseRepository) LoadData(ctx context.Context, w api.WizardRef) (map[string]any, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM wizards WHERE id = ? AND wizard = ?`,
		w.ID(), w.Name(),
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.ErrWizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load wizard: %w", err)
	}
	return decodeData(blob)
}

func (r *DatabaseRepository) DeleteWizard(ctx context.Context, w api.WizardRef) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wizards WHERE id = ? AND wizard = ?`,
		w.ID(), w.Name(),
	)
	if err != nil {
		return fmt.Errorf("delete wizard: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete wizard: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing record (no-op) from an identity that
		// belongs to another wizard type.
		var exists bool
		err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM wizards WHERE id = ?)`, w.ID(),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("delete wizard: %w", err)
		}
		if exists {
			return api.ErrWizardNotFound
		}
		return nil
	}

	w.SetID("")
	return nil
}

// DeleteExpired removes every record last touched before the cutoff,
// running the expiry hook for each one first. It returns the number of
// deleted records.
func (r *DatabaseRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	cutoff := before.Unix()

	if r.onExpiry != nil {
		rows, err := r.db.QueryContext(ctx,
			`SELECT id, wizard, data FROM wizards WHERE updated_at <= ?`, cutoff,
		)
		if err != nil {
			return 0, fmt.Errorf("sweep wizards: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id     int64
				wizard string
				blob   []byte
			)
			if err := rows.Scan(&id, &wizard, &blob); err != nil {
				return 0, fmt.Errorf("sweep wizards: %w", err)
			}
			data, err := decodeData(blob)
			if err != nil {
				return 0, err
			}
			r.onExpiry(ctx, wizard, strconv.FormatInt(id, 10), data)
		}
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("sweep wizards: %w", err)
		}
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wizards WHERE updated_at <= ?`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("sweep wizards: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep wizards: %w", err)
	}
	return int(affected), nil
}
