package storage

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"jobwatch/internal/core/domain"
)

type SQLiteWatchRepository struct {
	db *sql.DB
}

func NewSQLiteWatchRepository(dbPath string) (*SQLiteWatchRepository, error) {
	log.Printf("[DEBUG] SQLiteWatchRepository - opening database: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	repo := &SQLiteWatchRepository{db: db}

	if err := repo.initSchema(); err != nil {
		return nil, err
	}

	log.Printf("[DEBUG] SQLiteWatchRepository - database initialized successfully")
	return repo, nil
}

func (r *SQLiteWatchRepository) initSchema() error {
	log.Printf("[DEBUG] SQLiteWatchRepository - initializing schema")

	schema := `
CREATE TABLE IF NOT EXISTS watches (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    operation_id TEXT NOT NULL,
    recipients TEXT NOT NULL,    -- JSON array
    notify_states TEXT NULL,     -- JSON array, NULL means all states
    schedule TEXT NOT NULL,
    status TEXT NOT NULL,
    last_run DATETIME NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_watches_status ON watches(status);
CREATE INDEX IF NOT EXISTS idx_watches_operation_id ON watches(operation_id);
CREATE INDEX IF NOT EXISTS idx_watches_created_at ON watches(created_at);
`

	if _, err := r.db.Exec(schema); err != nil {
		log.Printf("[DEBUG] SQLiteWatchRepository - schema initialization failed: %v", err)
		return err
	}

	log.Printf("[DEBUG] SQLiteWatchRepository - schema initialized successfully")
	return nil
}

func (r *SQLiteWatchRepository) Save(watch domain.Watch) error {
	log.Printf("[DEBUG] SQLiteWatchRepository.Save - saving watch: %s", watch.ID)

	recipients, err := json.Marshal(watch.Recipients)
	if err != nil {
		return err
	}

	var notifyStates sql.NullString
	if watch.NotifyStates != nil {
		encoded, err := json.Marshal(watch.NotifyStates)
		if err != nil {
			return err
		}
		notifyStates = sql.NullString{String: string(encoded), Valid: true}
	}

	var lastRun sql.NullString
	if watch.LastRun != nil {
		lastRun = sql.NullString{String: watch.LastRun.UTC().Format(time.RFC3339), Valid: true}
	}

	query := `
		INSERT OR REPLACE INTO watches (id, name, operation_id, recipients, notify_states, schedule, status, last_run, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE((SELECT created_at FROM watches WHERE id = ?), CURRENT_TIMESTAMP)
		)
	`

	_, err = r.db.Exec(query, watch.ID, watch.Name, watch.OperationID, string(recipients), notifyStates,
		string(watch.Schedule), string(watch.Status), lastRun, watch.ID)
	if err != nil {
		log.Printf("[DEBUG] SQLiteWatchRepository.Save - database error: %v", err)
		return err
	}

	log.Printf("[DEBUG] SQLiteWatchRepository.Save - watch saved successfully: %s", watch.ID)
	return nil
}

func (r *SQLiteWatchRepository) FindByID(id string) (domain.Watch, error) {
	log.Printf("[DEBUG] SQLiteWatchRepository.FindByID - searching for watch: %s", id)

	query := `
		SELECT id, name, operation_id, recipients, notify_states, schedule, status, last_run, created_at
		FROM watches
		WHERE id = ?
	`

	watch, err := scanWatch(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[DEBUG] SQLiteWatchRepository.FindByID - watch not found: %s", id)
			return domain.Watch{}, domain.ErrWatchNotFound
		}
		log.Printf("[DEBUG] SQLiteWatchRepository.FindByID - database error: %v", err)
		return domain.Watch{}, err
	}

	return watch, nil
}

func (r *SQLiteWatchRepository) FindAll() ([]domain.Watch, error) {
	log.Printf("[DEBUG] SQLiteWatchRepository.FindAll - retrieving all watches")

	query := `
		SELECT id, name, operation_id, recipients, notify_states, schedule, status, last_run, created_at
		FROM watches
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		log.Printf("[DEBUG] SQLiteWatchRepository.FindAll - database error: %v", err)
		return nil, err
	}
	defer rows.Close()

	var watches []domain.Watch
	for rows.Next() {
		watch, err := scanWatch(rows)
		if err != nil {
			log.Printf("[DEBUG] SQLiteWatchRepository.FindAll - scan error: %v", err)
			return nil, err
		}
		watches = append(watches, watch)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Printf("[DEBUG] SQLiteWatchRepository.FindAll - found %d watches", len(watches))
	return watches, nil
}

func (r *SQLiteWatchRepository) Delete(id string) error {
	log.Printf("[DEBUG] SQLiteWatchRepository.Delete - deleting watch: %s", id)

	result, err := r.db.Exec(`DELETE FROM watches WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrWatchNotFound
	}

	return nil
}

func (r *SQLiteWatchRepository) Close() error {
	return r.db.Close()
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWatch(row rowScanner) (domain.Watch, error) {
	var watch domain.Watch
	var recipientsJSON string
	var notifyStatesJSON sql.NullString
	var lastRunStr sql.NullString
	var createdAtStr string

	err := row.Scan(&watch.ID, &watch.Name, &watch.OperationID, &recipientsJSON, &notifyStatesJSON,
		&watch.Schedule, &watch.Status, &lastRunStr, &createdAtStr)
	if err != nil {
		return domain.Watch{}, err
	}

	if err := json.Unmarshal([]byte(recipientsJSON), &watch.Recipients); err != nil {
		return domain.Watch{}, err
	}

	if notifyStatesJSON.Valid {
		if err := json.Unmarshal([]byte(notifyStatesJSON.String), &watch.NotifyStates); err != nil {
			return domain.Watch{}, err
		}
	}

	if lastRunStr.Valid {
		if parsedTime, err := time.Parse(time.RFC3339, lastRunStr.String); err == nil {
			watch.LastRun = &parsedTime
		}
	}

	if parsedTime, err := parseStoredTime(createdAtStr); err == nil {
		watch.CreatedAt = parsedTime
	}

	return watch, nil
}

// parseStoredTime accepts the formats SQLite and Postgres drivers hand back
func parseStoredTime(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, &time.ParseError{Layout: time.RFC3339, Value: value}
}
