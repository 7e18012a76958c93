package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/bydmon/internal/battery"
	"codeberg.org/mutker/bydmon/internal/errors"
	"codeberg.org/mutker/bydmon/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

const defaultDirPerm = 0o755

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(dbPath string) (Repository, error) {
	errFactory := errors.New()

	if dbPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing history repository at: %s", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func (r *sqliteRepository) Store(ctx context.Context, snapshot *battery.Snapshot) error {
	errFactory := errors.New()

	if !snapshot.Valid() {
		return errFactory.New(ErrInvalidRecord)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	globals, err := json.Marshal(snapshot.Globals)
	if err != nil {
		return errFactory.Wrap(ErrEncodeGlobals, err)
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO history (
            timestamp, serial_number,
            soc, soh, battery_voltage, output_voltage,
            current, power, max_temperature, min_temperature,
            error_number, towers, globals
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            serial_number = excluded.serial_number,
            soc = excluded.soc,
            soh = excluded.soh,
            battery_voltage = excluded.battery_voltage,
            output_voltage = excluded.output_voltage,
            current = excluded.current,
            power = excluded.power,
            max_temperature = excluded.max_temperature,
            min_temperature = excluded.min_temperature,
            error_number = excluded.error_number,
            towers = excluded.towers,
            globals = excluded.globals
    `,
		time.Now().Unix(),
		snapshot.SerialNumber(),
		globalFloat(snapshot, "soc"),
		globalFloat(snapshot, "soh"),
		globalFloat(snapshot, "battery_voltage"),
		globalFloat(snapshot, "output_voltage"),
		globalFloat(snapshot, "current"),
		globalFloat(snapshot, "power"),
		globalFloat(snapshot, "max_temperature"),
		globalFloat(snapshot, "min_temperature"),
		globalFloat(snapshot, "error_number"),
		len(snapshot.Towers),
		string(globals),
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}

// globalFloat returns the scalar as a nullable column value.
func globalFloat(snapshot *battery.Snapshot, key string) any {
	value, ok := snapshot.Global(key)
	if !ok {
		return nil
	}

	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return nil
	}
}
