package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	"github.com/noah-isme/participation-sync-api/internal/sis"
	"github.com/noah-isme/participation-sync-api/pkg/batch"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

type studentNumberStore interface {
	FindNumbers(ctx context.Context, studentIDs []int64) (map[int64]string, error)
	InsertNumbers(ctx context.Context, pairs []dto.StudentNumberPair) error
}

type studentReader interface {
	GetStudent(ctx context.Context, studentID int64) (sis.Record, error)
}

// StudentNumberService enriches student ids with their SIS student numbers.
// Known mappings come from the reporting database in one bulk read; misses
// fan out to the platform in bounded chunks and are written back.
type StudentNumberService struct {
	repo      studentNumberStore
	sis       studentReader
	chunkSize int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentNumberService constructs the service.
func NewStudentNumberService(repo studentNumberStore, sisClient studentReader, chunkSize int, validate *validator.Validate, logger *zap.Logger) *StudentNumberService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentNumberService{repo: repo, sis: sisClient, chunkSize: chunkSize, validator: validate, logger: logger}
}

// Resolve returns a student number for every requested id.
func (s *StudentNumberService) Resolve(ctx context.Context, req dto.StudentNumbersRequest) (*dto.StudentNumbersResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student numbers request")
	}

	known, err := s.repo.FindNumbers(ctx, req.StudentIDs)
	if err != nil {
		return nil, err
	}

	var misses []int64
	for _, id := range req.StudentIDs {
		if _, ok := known[id]; !ok {
			misses = append(misses, id)
		}
	}

	var fetched []dto.StudentNumberPair
	if len(misses) > 0 {
		fetched, err = batch.Process(ctx, misses, s.chunkSize, s.logger, func(ctx context.Context, studentID int64) (dto.StudentNumberPair, error) {
			record, err := s.sis.GetStudent(ctx, studentID)
			if err != nil {
				return dto.StudentNumberPair{}, err
			}
			number, ok := record.String("studentNumber")
			if !ok || number == "" {
				return dto.StudentNumberPair{}, appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("student %d has no student number", studentID))
			}
			return dto.StudentNumberPair{StudentID: studentID, StudentNumber: number}, nil
		})
		if err != nil {
			return nil, err
		}
		if err := s.repo.InsertNumbers(ctx, fetched); err != nil {
			return nil, err
		}
		s.logger.Info("student_numbers_fetched", zap.Int("misses", len(misses)))
	}

	numbers := make([]dto.StudentNumberPair, 0, len(req.StudentIDs))
	for _, pair := range fetched {
		known[pair.StudentID] = pair.StudentNumber
	}
	for _, id := range req.StudentIDs {
		numbers = append(numbers, dto.StudentNumberPair{StudentID: id, StudentNumber: known[id]})
	}
	return &dto.StudentNumbersResponse{Numbers: numbers}, nil
}
