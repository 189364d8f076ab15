package models

import (
	"encoding/json"
)

// Extended-property names the SIS uses for the participation window.
const (
	PropFirstParticipation = "First Date of Student Participation"
	PropLastParticipation  = "Last Date of Student Participation"
)

// ExtendedProperty is one entry of the enrollment record's property bag.
type ExtendedProperty struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

// EnrollmentRecord is one student enrollment period as returned by the SIS.
// Only the fields the sync touches are typed; everything else the platform
// sends is carried through untouched so a save never narrows the record.
type EnrollmentRecord struct {
	ID                     int64              `json:"id"`
	StudentID              int64              `json:"studentId"`
	SchoolStatusID         int                `json:"schoolStatusId"`
	ActualStartDate        *string            `json:"actualStartDate"`
	SchoolStatusChangeDate *string            `json:"schoolStatusChangeDate"`
	ExtendedProperties     []ExtendedProperty `json:"extendedProperties"`

	rest map[string]json.RawMessage
}

var enrollmentKnownKeys = []string{
	"id", "studentId", "schoolStatusId", "actualStartDate", "schoolStatusChangeDate", "extendedProperties",
}

// UnmarshalJSON splits the payload into typed fields and the untouched rest.
func (r *EnrollmentRecord) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type alias EnrollmentRecord
	var typed alias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	*r = EnrollmentRecord(typed)

	for _, key := range enrollmentKnownKeys {
		delete(raw, key)
	}
	r.rest = raw
	return nil
}

// MarshalJSON merges the typed fields back over the preserved rest.
func (r EnrollmentRecord) MarshalJSON() ([]byte, error) {
	merged := make(map[string]interface{}, len(r.rest)+len(enrollmentKnownKeys))
	for k, v := range r.rest {
		merged[k] = v
	}
	merged["id"] = r.ID
	merged["studentId"] = r.StudentID
	merged["schoolStatusId"] = r.SchoolStatusID
	merged["actualStartDate"] = r.ActualStartDate
	merged["schoolStatusChangeDate"] = r.SchoolStatusChangeDate
	merged["extendedProperties"] = r.ExtendedProperties
	return json.Marshal(merged)
}

// ExtendedProperty returns the value of the named property, nil when the
// property is absent or null.
func (r *EnrollmentRecord) ExtendedProperty(name string) *string {
	for _, prop := range r.ExtendedProperties {
		if prop.Name == name {
			return prop.Value
		}
	}
	return nil
}

// SetExtendedProperty overwrites the named property in place and reports
// whether the property existed.
func (r *EnrollmentRecord) SetExtendedProperty(name, value string) bool {
	for i := range r.ExtendedProperties {
		if r.ExtendedProperties[i].Name == name {
			v := value
			r.ExtendedProperties[i].Value = &v
			return true
		}
	}
	return false
}

// FirstParticipation is the persisted FDP, nil when never set.
func (r *EnrollmentRecord) FirstParticipation() *string {
	return r.ExtendedProperty(PropFirstParticipation)
}

// LastParticipation is the persisted LDP, nil when never set.
func (r *EnrollmentRecord) LastParticipation() *string {
	return r.ExtendedProperty(PropLastParticipation)
}

// EnrollmentPeriodSummary is the OData list shape of an enrollment period.
type EnrollmentPeriodSummary struct {
	ID             int64 `json:"Id"`
	StudentID      int64 `json:"StudentId"`
	SchoolStatusID int   `json:"SchoolStatusId"`
}

// SchoolStatus is one coarse status definition from the SIS.
type SchoolStatus struct {
	ID   int    `json:"Id"`
	Code string `json:"Code"`
}
