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

type alertAssemblerMock struct {
	noCourses  *dto.AlertResponse
	missing    *dto.AlertResponse
	err        error
	lastMethod string
}

func (m *alertAssemblerMock) NoRegisteredCourses(context.Context, dto.AlertRequest) (*dto.AlertResponse, error) {
	m.lastMethod = "no_courses"
	return m.noCourses, m.err
}

func (m *alertAssemblerMock) MissingAttendance(context.Context, dto.AlertRequest) (*dto.AlertResponse, error) {
	m.lastMethod = "missing"
	return m.missing, m.err
}

func TestNoRegisteredCoursesAlertSuccess(t *testing.T) {
	mock := &alertAssemblerMock{noCourses: &dto.AlertResponse{Alerts: []dto.AlertEntry{{
		StudentID:     10,
		StudentNumber: "A-100",
		StudentName:   "Jordan Smith",
		ProfileLink:   "https://sis.example.edu/#/students/10",
	}}}}
	handler := NewAlertHandler(mock)

	rec := postJSON(t, "/sync/alerts/no-registered-courses", handler.NoRegisteredCourses, dto.AlertRequest{
		Students: []dto.AlertStudent{{StudentID: 10}},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no_courses", mock.lastMethod)
	var envelope struct {
		Data dto.AlertResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Alerts, 1)
	assert.Equal(t, "A-100", envelope.Data.Alerts[0].StudentNumber)
	assert.Empty(t, envelope.Data.Alerts[0].Courses)
}

func TestMissingAttendanceAlertSuccess(t *testing.T) {
	mock := &alertAssemblerMock{missing: &dto.AlertResponse{Alerts: []dto.AlertEntry{{
		StudentID: 10,
		Courses:   []string{"ClassSectionId #30 - ENG101"},
	}}}}
	handler := NewAlertHandler(mock)

	rec := postJSON(t, "/sync/alerts/missing-attendance", handler.MissingAttendance, dto.AlertRequest{
		Students: []dto.AlertStudent{{StudentID: 10, Sections: []int64{30}}},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "missing", mock.lastMethod)
	var envelope struct {
		Data dto.AlertResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Alerts, 1)
	assert.Equal(t, []string{"ClassSectionId #30 - ENG101"}, envelope.Data.Alerts[0].Courses)
}

func TestAlertUpstreamFailure(t *testing.T) {
	handler := NewAlertHandler(&alertAssemblerMock{err: appErrors.ErrUpstream})

	rec := postJSON(t, "/sync/alerts/no-registered-courses", handler.NoRegisteredCourses, dto.AlertRequest{
		Students: []dto.AlertStudent{{StudentID: 10}},
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAlertMalformedBody(t *testing.T) {
	handler := NewAlertHandler(&alertAssemblerMock{})

	rec := postJSON(t, "/sync/alerts/missing-attendance", handler.MissingAttendance, []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
