package models

import (
	"fmt"
	"time"

	"cis/internal/lifecycle"
)

// SCTIDRecord tracks one SNOMED CT identifier.
//
// Invariants:
//   - SCTID, Sequence, Namespace, PartitionID and CheckDigit never change after creation
//   - Status changes only through lifecycle.Transition
//   - SystemID, when non-empty, is unique within Namespace
//   - Records are never deleted
type SCTIDRecord struct {
	SCTID          string           `json:"sctid"`
	Sequence       int64            `json:"sequence"`
	Namespace      int64            `json:"namespace"`
	PartitionID    string           `json:"partitionId"`
	CheckDigit     int              `json:"checkDigit"`
	SystemID       string           `json:"systemId"`
	Status         lifecycle.Status `json:"status"`
	Author         string           `json:"author"`
	Software       string           `json:"software"`
	Comment        string           `json:"comment"`
	ExpirationDate *time.Time       `json:"expirationDate,omitempty"`
	JobID          *int64           `json:"jobId,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	ModifiedAt     time.Time        `json:"modified_at"`
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (r *SCTIDRecord) Clone() *SCTIDRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.ExpirationDate != nil {
		t := *r.ExpirationDate
		c.ExpirationDate = &t
	}
	if r.JobID != nil {
		j := *r.JobID
		c.JobID = &j
	}
	return &c
}

// SchemeIDRecord tracks one identifier of an alternate scheme.
// Same invariants as SCTIDRecord with SystemID unique per Scheme.
type SchemeIDRecord struct {
	Scheme         string           `json:"scheme"`
	SchemeID       string           `json:"schemeId"`
	Sequence       *int64           `json:"sequence,omitempty"`
	CheckDigit     *int             `json:"checkDigit,omitempty"`
	SystemID       string           `json:"systemId"`
	Status         lifecycle.Status `json:"status"`
	Author         string           `json:"author"`
	Software       string           `json:"software"`
	Comment        string           `json:"comment"`
	ExpirationDate *time.Time       `json:"expirationDate,omitempty"`
	JobID          *int64           `json:"jobId,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	ModifiedAt     time.Time        `json:"modified_at"`
}

func (r *SchemeIDRecord) Clone() *SchemeIDRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Sequence != nil {
		s := *r.Sequence
		c.Sequence = &s
	}
	if r.CheckDigit != nil {
		d := *r.CheckDigit
		c.CheckDigit = &d
	}
	if r.ExpirationDate != nil {
		t := *r.ExpirationDate
		c.ExpirationDate = &t
	}
	if r.JobID != nil {
		j := *r.JobID
		c.JobID = &j
	}
	return &c
}

// PartitionKey identifies one allocation counter.
type PartitionKey struct {
	Namespace   int64
	PartitionID string
}

// LockKey is the KeyedLock key guarding the counter.
func (k PartitionKey) LockKey() string {
	return fmt.Sprintf("sctid:%d:%s", k.Namespace, k.PartitionID)
}

func (k PartitionKey) String() string {
	return fmt.Sprintf("%d/%s", k.Namespace, k.PartitionID)
}

// PartitionCounter holds the last issued sequence of a partition.
type PartitionCounter struct {
	Namespace   int64
	PartitionID string
	Sequence    int64
}

func (c PartitionCounter) Key() PartitionKey {
	return PartitionKey{Namespace: c.Namespace, PartitionID: c.PartitionID}
}

// SchemeCursor holds the last generated identifier of a scheme. An empty
// IDBase means nothing has been generated yet.
type SchemeCursor struct {
	Scheme string
	IDBase string
}

// SchemeLockKey is the KeyedLock key guarding a scheme's cursor.
func SchemeLockKey(scheme string) string {
	return "scheme:" + scheme
}

// Namespace is registry metadata used to enrich check reports.
type Namespace struct {
	Namespace        int64  `json:"namespace"`
	OrganizationName string `json:"organizationName"`
	Email            string `json:"email"`
}
