package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/participation-sync-api/internal/models"
)

type attendanceSourceMock struct {
	meetings map[int64][]models.CourseMeeting
	err      error
}

func (m *attendanceSourceMock) AttendanceDetail(_ context.Context, studentCourseID, _ int64, _, _ string) ([]models.CourseMeeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.meetings[studentCourseID], nil
}

func statusCodes() models.CourseStatusCodes {
	return models.CourseStatusCodes{Completed: "C", Scheduled: "S", Dropped: "D"}
}

func TestEligibleCoursesFiltersStatusAndExclusions(t *testing.T) {
	courses := []models.StudentCourse{
		{ID: 1, ClassSectionID: 10, Status: "C"},
		{ID: 2, ClassSectionID: 20, Status: "S"},
		{ID: 3, ClassSectionID: 30, Status: "D", DropDate: strPtr("2024-01-10T00:00:00")},
		{ID: 4, ClassSectionID: 40, Status: "W"},
		{ID: 5, ClassSectionID: 50, Status: "S"},
	}
	excluded := map[int64]struct{}{50: {}}

	eligible := EligibleCourses(courses, statusCodes(), excluded)

	require.Len(t, eligible, 3)
	assert.Equal(t, int64(1), eligible[0].StudentCourseID)
	assert.Equal(t, int64(2), eligible[1].StudentCourseID)
	assert.Equal(t, int64(3), eligible[2].StudentCourseID)
	require.NotNil(t, eligible[2].DropDate)
}

func TestComputePicksEarliestDateAcrossCourses(t *testing.T) {
	source := &attendanceSourceMock{meetings: map[int64][]models.CourseMeeting{
		1: {
			{AttendanceDate: "2024-01-12T00:00:00", AttendedMinutes: minutes(45), Status: "P"},
		},
		2: {
			{AttendanceDate: "2024-01-09T00:00:00", AttendedMinutes: minutes(45), Status: "P"},
			{AttendanceDate: "2024-01-16T00:00:00", AttendedMinutes: minutes(45), Status: "P"},
		},
	}}
	svc := NewActivationService(source, NewAttendanceResolver("X"), zap.NewNop())

	courses := []models.CourseRef{
		{StudentCourseID: 1, ClassSectionID: 10},
		{StudentCourseID: 2, ClassSectionID: 20},
	}
	ead, missing, err := svc.Compute(context.Background(), courses, "2024-01-20T10:00:00", "2024-01-01", "2024-03-01")

	require.NoError(t, err)
	assert.Equal(t, "2024-01-09T23:59:59", ead)
	assert.Empty(t, missing)
}

func TestComputeNoValidMeetingsReturnsEmpty(t *testing.T) {
	source := &attendanceSourceMock{meetings: map[int64][]models.CourseMeeting{
		1: {
			{AttendanceDate: "2024-01-12T00:00:00", AttendedMinutes: minutes(0), Status: "P"},
		},
	}}
	svc := NewActivationService(source, NewAttendanceResolver("X"), zap.NewNop())

	ead, missing, err := svc.Compute(context.Background(), []models.CourseRef{{StudentCourseID: 1, ClassSectionID: 10}}, "2024-01-20T10:00:00", "2024-01-01", "2024-03-01")

	require.NoError(t, err)
	assert.Empty(t, ead)
	assert.Empty(t, missing)
}

func TestComputeCollectsMissingAttendanceSections(t *testing.T) {
	source := &attendanceSourceMock{meetings: map[int64][]models.CourseMeeting{
		1: {
			{AttendanceDate: "2024-01-08T00:00:00", AttendedMinutes: nil, Status: "P"},
		},
		2: {
			{AttendanceDate: "2024-01-09T00:00:00", AttendedMinutes: minutes(30), Status: "P"},
		},
	}}
	svc := NewActivationService(source, NewAttendanceResolver("X"), zap.NewNop())

	courses := []models.CourseRef{
		{StudentCourseID: 1, ClassSectionID: 10},
		{StudentCourseID: 2, ClassSectionID: 20},
	}
	ead, missing, err := svc.Compute(context.Background(), courses, "2024-01-20T10:00:00", "2024-01-01", "2024-03-01")

	require.NoError(t, err)
	assert.Equal(t, "2024-01-08T23:59:59", ead)
	assert.Equal(t, []int64{10}, missing)
}

func TestComputeDropDateNeverContributes(t *testing.T) {
	source := &attendanceSourceMock{meetings: map[int64][]models.CourseMeeting{
		1: {
			{AttendanceDate: "2024-01-10T00:00:00", AttendedMinutes: minutes(45), Status: "P"},
			{AttendanceDate: "2024-01-12T00:00:00", AttendedMinutes: minutes(45), Status: "P"},
		},
	}}
	svc := NewActivationService(source, NewAttendanceResolver("X"), zap.NewNop())

	courses := []models.CourseRef{{StudentCourseID: 1, ClassSectionID: 10, DropDate: strPtr("2024-01-10T00:00:00")}}
	ead, _, err := svc.Compute(context.Background(), courses, "2024-01-20T10:00:00", "2024-01-01", "2024-03-01")

	require.NoError(t, err)
	assert.Empty(t, ead)
}

func TestComputePropagatesFetchFailure(t *testing.T) {
	source := &attendanceSourceMock{err: assert.AnError}
	svc := NewActivationService(source, NewAttendanceResolver("X"), zap.NewNop())

	_, _, err := svc.Compute(context.Background(), []models.CourseRef{{StudentCourseID: 1, ClassSectionID: 10}}, "2024-01-20T10:00:00", "2024-01-01", "2024-03-01")
	require.Error(t, err)
}
