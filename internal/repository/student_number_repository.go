package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/participation-sync-api/internal/dto"
)

// StudentNumberRepository caches SIS student numbers in the reporting
// database so bulk enrichment only hits the platform for unseen students.
type StudentNumberRepository struct {
	db *sqlx.DB
}

// NewStudentNumberRepository constructs the repository.
func NewStudentNumberRepository(db *sqlx.DB) *StudentNumberRepository {
	return &StudentNumberRepository{db: db}
}

// FindNumbers returns the known student id → number mappings for the ids.
func (r *StudentNumberRepository) FindNumbers(ctx context.Context, studentIDs []int64) (map[int64]string, error) {
	if len(studentIDs) == 0 {
		return map[int64]string{}, nil
	}

	query, args, err := sqlx.In(`SELECT student_id, student_number FROM student_info_dimensions WHERE student_id IN (?)`, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("build student number query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []struct {
		StudentID     int64  `db:"student_id"`
		StudentNumber string `db:"student_number"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find student numbers: %w", err)
	}

	found := make(map[int64]string, len(rows))
	for _, row := range rows {
		found[row.StudentID] = row.StudentNumber
	}
	return found, nil
}

// InsertNumbers stores newly resolved mappings in one multi-row insert.
// Conflicts are ignored: a concurrent stage run may have inserted the same
// student already.
func (r *StudentNumberRepository) InsertNumbers(ctx context.Context, pairs []dto.StudentNumberPair) error {
	if len(pairs) == 0 {
		return nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for i, pair := range pairs {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
		args = append(args, pair.StudentID, pair.StudentNumber)
	}

	query := fmt.Sprintf(
		`INSERT INTO student_info_dimensions (student_id, student_number) VALUES %s ON CONFLICT (student_id) DO NOTHING`,
		strings.Join(placeholders, ", "),
	)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert student numbers: %w", err)
	}
	return nil
}
