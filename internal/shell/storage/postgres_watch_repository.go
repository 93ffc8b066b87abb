package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	postgresmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"jobwatch/internal/core/domain"
)

type PostgresWatchRepository struct {
	db *sql.DB
}

// NewPostgresWatchRepository connects to Postgres and applies the file
// migrations under migrationsPath before serving queries.
func NewPostgresWatchRepository(connStr, migrationsPath string) (*PostgresWatchRepository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	repo := &PostgresWatchRepository{db: db}

	if err := repo.runMigrations(migrationsPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("[DEBUG] PostgresWatchRepository - database initialized successfully")
	return repo, nil
}

func (r *PostgresWatchRepository) runMigrations(migrationsPath string) error {
	driver, err := postgresmigrate.WithInstance(r.db, &postgresmigrate.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	log.Printf("[DEBUG] PostgresWatchRepository - migrations applied")
	return nil
}

func (r *PostgresWatchRepository) Save(watch domain.Watch) error {
	log.Printf("[DEBUG] PostgresWatchRepository.Save - saving watch: %s", watch.ID)

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

	var lastRun sql.NullTime
	if watch.LastRun != nil {
		lastRun = sql.NullTime{Time: watch.LastRun.UTC(), Valid: true}
	}

	query := `
		INSERT INTO watches (id, name, operation_id, recipients, notify_states, schedule, status, last_run)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			operation_id = EXCLUDED.operation_id,
			recipients = EXCLUDED.recipients,
			notify_states = EXCLUDED.notify_states,
			schedule = EXCLUDED.schedule,
			status = EXCLUDED.status,
			last_run = EXCLUDED.last_run
	`

	_, err = r.db.Exec(query, watch.ID, watch.Name, watch.OperationID, string(recipients), notifyStates,
		string(watch.Schedule), string(watch.Status), lastRun)
	if err != nil {
		log.Printf("[DEBUG] PostgresWatchRepository.Save - database error: %v", err)
		return err
	}

	return nil
}

func (r *PostgresWatchRepository) FindByID(id string) (domain.Watch, error) {
	query := `
		SELECT id, name, operation_id, recipients, notify_states, schedule, status, last_run, created_at
		FROM watches
		WHERE id = $1
	`

	watch, err := r.scanWatch(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Watch{}, domain.ErrWatchNotFound
		}
		log.Printf("[DEBUG] PostgresWatchRepository.FindByID - database error: %v", err)
		return domain.Watch{}, err
	}

	return watch, nil
}

func (r *PostgresWatchRepository) FindAll() ([]domain.Watch, error) {
	query := `
		SELECT id, name, operation_id, recipients, notify_states, schedule, status, last_run, created_at
		FROM watches
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		log.Printf("[DEBUG] PostgresWatchRepository.FindAll - database error: %v", err)
		return nil, err
	}
	defer rows.Close()

	var watches []domain.Watch
	for rows.Next() {
		watch, err := r.scanWatch(rows)
		if err != nil {
			return nil, err
		}
		watches = append(watches, watch)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return watches, nil
}

func (r *PostgresWatchRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM watches WHERE id = $1`, id)
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

func (r *PostgresWatchRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresWatchRepository) scanWatch(row rowScanner) (domain.Watch, error) {
	var watch domain.Watch
	var recipientsJSON string
	var notifyStatesJSON sql.NullString
	var lastRun sql.NullTime
	var createdAt time.Time

	err := row.Scan(&watch.ID, &watch.Name, &watch.OperationID, &recipientsJSON, &notifyStatesJSON,
		&watch.Schedule, &watch.Status, &lastRun, &createdAt)
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

	if lastRun.Valid {
		t := lastRun.Time
		watch.LastRun = &t
	}
	watch.CreatedAt = createdAt

	return watch, nil
}
