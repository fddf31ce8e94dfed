package models

import (
	"time"

	"cis/internal/lifecycle"
)

// Operation describes one SCTID request. SCTID is required for Register,
// Deprecate, Release and Publish; Generate and Reserve allocate a new one.
type Operation struct {
	Namespace      int64      `json:"namespace"`
	PartitionID    string     `json:"partitionId"`
	SCTID          string     `json:"sctid,omitempty"`
	SystemID       string     `json:"systemId,omitempty"`
	AutoSysID      bool       `json:"autoSysId,omitempty"`
	Author         string     `json:"author,omitempty"`
	Software       string     `json:"software,omitempty"`
	Comment        string     `json:"comment,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	JobID          *int64     `json:"jobId,omitempty"`
}

// Key returns the counter the operation allocates from.
func (o Operation) Key() PartitionKey {
	return PartitionKey{Namespace: o.Namespace, PartitionID: o.PartitionID}
}

// ApplyTo stamps the operation's audit metadata on rec.
func (o Operation) ApplyTo(rec *SCTIDRecord, status lifecycle.Status, now time.Time) {
	rec.Status = status
	rec.Author = o.Author
	rec.Software = o.Software
	rec.Comment = o.Comment
	if o.ExpirationDate != nil {
		rec.ExpirationDate = o.ExpirationDate
	}
	if o.JobID != nil {
		rec.JobID = o.JobID
	}
	rec.ModifiedAt = now
}

// SchemeOperation describes a batch of scheme identifier requests.
//
// For generation, Quantity identifiers are allocated; SystemIDs, when given,
// must have Quantity entries and bind each allocated identifier. For
// register and update, SchemeIDs lists the identifiers to act on and
// SystemIDs optionally pairs a system id with each.
type SchemeOperation struct {
	Scheme         string     `json:"scheme"`
	Quantity       int        `json:"quantity,omitempty"`
	SchemeIDs      []string   `json:"schemeIds,omitempty"`
	SystemIDs      []string   `json:"systemIds,omitempty"`
	AutoSysID      bool       `json:"autoSysId,omitempty"`
	Author         string     `json:"author,omitempty"`
	Software       string     `json:"software,omitempty"`
	Comment        string     `json:"comment,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	JobID          *int64     `json:"jobId,omitempty"`
}

// SystemIDAt returns the system id paired with item i, or "".
func (o SchemeOperation) SystemIDAt(i int) string {
	if i < len(o.SystemIDs) {
		return o.SystemIDs[i]
	}
	return ""
}

func (o SchemeOperation) ApplyTo(rec *SchemeIDRecord, status lifecycle.Status, now time.Time) {
	rec.Status = status
	rec.Author = o.Author
	rec.Software = o.Software
	rec.Comment = o.Comment
	if o.ExpirationDate != nil {
		rec.ExpirationDate = o.ExpirationDate
	}
	if o.JobID != nil {
		rec.JobID = o.JobID
	}
	rec.ModifiedAt = now
}

// SCTIDFilter narrows Query. Zero-valued fields do not filter.
type SCTIDFilter struct {
	Namespace   *int64
	PartitionID string
	Status      lifecycle.Status
	SystemID    string
	Author      string
	JobID       *int64
}

// Matches reports whether rec satisfies every set field.
func (f SCTIDFilter) Matches(rec *SCTIDRecord) bool {
	if f.Namespace != nil && rec.Namespace != *f.Namespace {
		return false
	}
	if f.PartitionID != "" && rec.PartitionID != f.PartitionID {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if f.SystemID != "" && rec.SystemID != f.SystemID {
		return false
	}
	if f.Author != "" && rec.Author != f.Author {
		return false
	}
	if f.JobID != nil && (rec.JobID == nil || *rec.JobID != *f.JobID) {
		return false
	}
	return true
}
