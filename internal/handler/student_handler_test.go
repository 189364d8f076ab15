package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	appErrors "github.com/noah-isme/participation-sync-api/pkg/errors"
)

type rosterListerMock struct {
	resp *dto.StudentsResponse
	err  error
}

func (m *rosterListerMock) List(context.Context, dto.StudentsRequest) (*dto.StudentsResponse, error) {
	return m.resp, m.err
}

type numberResolverMock struct {
	resp *dto.StudentNumbersResponse
	err  error
}

func (m *numberResolverMock) Resolve(context.Context, dto.StudentNumbersRequest) (*dto.StudentNumbersResponse, error) {
	return m.resp, m.err
}

func TestStudentListSuccess(t *testing.T) {
	handler := NewStudentHandler(&rosterListerMock{resp: &dto.StudentsResponse{
		Students:            []dto.RosterEntry{{StudentID: 10, StudentEnrollmentPeriodID: 200, SchoolStatusID: 5}},
		PromotableStatusIDs: []int{5},
	}}, &numberResolverMock{})

	rec := postJSON(t, "/sync/students", handler.List, dto.StudentsRequest{PromotableStatusCodes: []string{"PS"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.StudentsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Students, 1)
	assert.Equal(t, int64(200), envelope.Data.Students[0].StudentEnrollmentPeriodID)
	assert.Equal(t, []int{5}, envelope.Data.PromotableStatusIDs)
}

func TestStudentListValidationFailure(t *testing.T) {
	handler := NewStudentHandler(&rosterListerMock{err: appErrors.ErrValidation}, &numberResolverMock{})

	rec := postJSON(t, "/sync/students", handler.List, dto.StudentsRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentNumbersSuccess(t *testing.T) {
	handler := NewStudentHandler(&rosterListerMock{}, &numberResolverMock{resp: &dto.StudentNumbersResponse{
		Numbers: []dto.StudentNumberPair{{StudentID: 10, StudentNumber: "A-100"}},
	}})

	rec := postJSON(t, "/sync/students/numbers", handler.Numbers, dto.StudentNumbersRequest{StudentIDs: []int64{10}})

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.StudentNumbersResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Numbers, 1)
	assert.Equal(t, "A-100", envelope.Data.Numbers[0].StudentNumber)
}

func TestStudentNumbersUpstreamFailure(t *testing.T) {
	handler := NewStudentHandler(&rosterListerMock{}, &numberResolverMock{err: appErrors.ErrUpstream})

	rec := postJSON(t, "/sync/students/numbers", handler.Numbers, dto.StudentNumbersRequest{StudentIDs: []int64{10}})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
