package history

import (
	"database/sql"

	"codeberg.org/mutker/bydmon/internal/errors"
)

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS history (
            timestamp INTEGER PRIMARY KEY,
            serial_number TEXT,
            soc REAL,
            soh REAL,
            battery_voltage REAL,
            output_voltage REAL,
            current REAL,
            power REAL,
            max_temperature REAL,
            min_temperature REAL,
            error_number INTEGER,
            towers INTEGER,
            globals TEXT
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrStorageInit, err)
	}

	return nil
}
