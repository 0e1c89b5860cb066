package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

const searchHistoryColumns = "id, sequence, query, kind, provider, results, created_at, updated_at"

// SearchHistoryRepository implements [models.Repository] for [models.SearchRecord] persistence.
type SearchHistoryRepository struct {
	db *sql.DB
}

// NewSearchHistoryRepository creates a new [SearchHistoryRepository] with the given database connection
func NewSearchHistoryRepository(db *sql.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// Create inserts a new record with generated ID and sequence
func (r *SearchHistoryRepository) Create(record *models.SearchRecord) error {
	record.SetID(shared.GenerateID())
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "search_history")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	record.SetSequence(sequence)

	query := `
		INSERT INTO search_history (id, sequence, query, kind, provider, results, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, record.ID(), sequence, record.Query(), string(record.Kind()), record.Provider(),
		record.Results(), record.CreatedAt(), record.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert search record: %w", err)
	}

	return nil
}

// RecordSearch stores one executed search.
func (r *SearchHistoryRepository) RecordSearch(query string, kind models.Kind, provider string, results int) error {
	return r.Create(models.NewSearchRecord(0, query, kind, provider, results))
}

// Get retrieves a record by ID
func (r *SearchHistoryRepository) Get(id string) (*models.SearchRecord, error) {
	row := r.db.QueryRow("SELECT "+searchHistoryColumns+" FROM search_history WHERE id = ?", id)

	record, err := scanSearchRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &shared.NotFoundError{Resource: "search record", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query search record: %w", err)
	}

	return record, nil
}

// Update rewrites the result count of an existing record
func (r *SearchHistoryRepository) Update(record *models.SearchRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	record.SetUpdatedAt(now)

	result, err := r.db.Exec("UPDATE search_history SET results = ?, updated_at = ? WHERE id = ?", record.Results(), now, record.ID())
	if err != nil {
		return fmt.Errorf("failed to update search record: %w", err)
	}

	return requireRow(result, record.ID())
}

// Delete removes a record by ID
func (r *SearchHistoryRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM search_history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete search record: %w", err)
	}

	return requireRow(result, id)
}

// List retrieves records newest first.
//
// Supported criteria: "query" (substring match), "kind", "provider" and "limit".
func (r *SearchHistoryRepository) List(criteria map[string]any) ([]*models.SearchRecord, error) {
	query := "SELECT " + searchHistoryColumns + " FROM search_history WHERE 1 = 1"
	args := []any{}

	if q, ok := criteria["query"].(string); ok && q != "" {
		query += " AND query LIKE ?"
		args = append(args, "%"+q+"%")
	}

	if kind, ok := criteria["kind"].(models.Kind); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, string(kind))
	}

	if provider, ok := criteria["provider"].(string); ok && provider != "" {
		query += " AND provider = ?"
		args = append(args, provider)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	var records []*models.SearchRecord
	for rows.Next() {
		record, err := scanSearchRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Clear deletes every record and returns how many were removed. Sequence numbers keep counting.
func (r *SearchHistoryRepository) Clear() (int64, error) {
	result, err := r.db.Exec("DELETE FROM search_history")
	if err != nil {
		return 0, fmt.Errorf("failed to clear search history: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSearchRecord(row rowScanner) (*models.SearchRecord, error) {
	var (
		id        string
		sequence  int
		query     string
		kind      string
		provider  string
		results   int
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &sequence, &query, &kind, &provider, &results, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	record := models.NewSearchRecord(sequence, query, models.Kind(kind), provider, results)
	record.SetID(id)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	return record, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &shared.NotFoundError{Resource: "search record", ID: id}
	}
	return nil
}

var _ models.Repository[*models.SearchRecord] = (*SearchHistoryRepository)(nil)
