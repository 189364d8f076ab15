package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/dto"
	"github.com/noah-isme/participation-sync-api/internal/sis"
)

type alertStudentsMock struct{}

func (m *alertStudentsMock) GetStudent(_ context.Context, studentID int64) (sis.Record, error) {
	return sis.Record{
		"firstName":     json.RawMessage(`"Dana"`),
		"lastName":      json.RawMessage(`"Whitfield"`),
		"studentNumber": json.RawMessage(`"S-0010"`),
	}, nil
}

type labelerMock struct{}

func (m *labelerMock) SectionLabels(_ context.Context, ids []int64) ([]string, error) {
	labels := make([]string, 0, len(ids))
	for range ids {
		labels = append(labels, "ClassSectionId #42 - MATH101")
	}
	return labels, nil
}

func TestNoRegisteredCoursesAlert(t *testing.T) {
	svc := NewAlertService(&alertStudentsMock{}, &labelerMock{}, "https://sis.example.edu/", nil, zap.NewNop())

	resp, err := svc.NoRegisteredCourses(context.Background(), dto.AlertRequest{
		Students: []dto.AlertStudent{{StudentID: 10}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 1)
	alert := resp.Alerts[0]
	assert.Equal(t, "Dana Whitfield", alert.StudentName)
	assert.Equal(t, "S-0010", alert.StudentNumber)
	assert.Equal(t, "https://sis.example.edu/#/students/10", alert.ProfileLink)
	assert.Empty(t, alert.Courses)
}

func TestMissingAttendanceAlertLabelsSections(t *testing.T) {
	svc := NewAlertService(&alertStudentsMock{}, &labelerMock{}, "https://sis.example.edu", nil, zap.NewNop())

	resp, err := svc.MissingAttendance(context.Background(), dto.AlertRequest{
		Students: []dto.AlertStudent{{StudentID: 10, Sections: []int64{42}}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, []string{"ClassSectionId #42 - MATH101"}, resp.Alerts[0].Courses)
}

func TestAlertValidatesRequest(t *testing.T) {
	svc := NewAlertService(&alertStudentsMock{}, &labelerMock{}, "https://sis.example.edu", nil, zap.NewNop())

	_, err := svc.NoRegisteredCourses(context.Background(), dto.AlertRequest{})
	require.Error(t, err)
}
