package sis

import (
	"encoding/json"
)

// Record is a field-preserving view of a SIS command payload. Write-back
// flows read a handful of fields and overwrite even fewer; everything else
// must round-trip untouched.
type Record map[string]json.RawMessage

// Clone returns a shallow copy safe for independent mutation of top-level keys.
func (r Record) Clone() Record {
	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

// Int64 reads an integer field. ok is false when absent, null or non-numeric.
func (r Record) Int64(key string) (int64, bool) {
	raw, exists := r[key]
	if !exists {
		return 0, false
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// Int reads an integer field as int.
func (r Record) Int(key string) (int, bool) {
	v, ok := r.Int64(key)
	return int(v), ok
}

// String reads a string field. ok is false when absent, null or non-string.
func (r Record) String(key string) (string, bool) {
	raw, exists := r[key]
	if !exists {
		return "", false
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return "", false
	}
	return *v, true
}

// Set marshals the value into the record, replacing any existing field.
func (r Record) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r[key] = raw
	return nil
}

// SetNull sets the field to an explicit JSON null.
func (r Record) SetNull(key string) {
	r[key] = json.RawMessage("null")
}

// Delete removes the field entirely.
func (r Record) Delete(key string) {
	delete(r, key)
}
