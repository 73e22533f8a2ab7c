package models

import "time"

// UnassignedID is the id carried by a record the store has never seen.
const UnassignedID = 0

// Record is one person on the roster.
// The store assigns ID; application code only ever builds transient records.
type Record struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Secret string `json:"secret" yaml:"secret"`
}

// NewRecord builds a transient record.
func NewRecord(name, secret string) Record {
	return Record{ID: UnassignedID, Name: name, Secret: secret}
}

// IsTransient reports whether the record still waits for a store-assigned id.
func (r Record) IsTransient() bool {
	return r.ID == UnassignedID
}

// LogEntry is one line of the operator audit trail.
type LogEntry struct {
	ID      int       `json:"id" yaml:"id"`
	Date    time.Time `json:"date" yaml:"date"`
	Message string    `json:"message" yaml:"message"`
}

// CreateRecordRequest carries the fields for staging a new record.
type CreateRecordRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100,recordname"`
	Secret string `json:"secret" validate:"required,min=1,max=200"`
}

// UpdateRecordRequest carries replacement values for a persisted record.
type UpdateRecordRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100,recordname"`
	Secret string `json:"secret" validate:"required,min=1,max=200"`
}
