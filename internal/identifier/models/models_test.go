package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cis/internal/lifecycle"
	dErrors "cis/pkg/domain-errors"
)

func TestSCTIDFilterMatches(t *testing.T) {
	ns := int64(1000003)
	job := int64(7)
	rec := &SCTIDRecord{
		SCTID:       "11000003104",
		Namespace:   ns,
		PartitionID: "10",
		Status:      lifecycle.StatusAssigned,
		SystemID:    "sys-1",
		Author:      "alice",
		JobID:       &job,
	}

	assert.True(t, SCTIDFilter{}.Matches(rec))
	assert.True(t, SCTIDFilter{Namespace: &ns, PartitionID: "10", Status: lifecycle.StatusAssigned}.Matches(rec))
	assert.True(t, SCTIDFilter{JobID: &job, Author: "alice"}.Matches(rec))

	other := int64(0)
	assert.False(t, SCTIDFilter{Namespace: &other}.Matches(rec))
	assert.False(t, SCTIDFilter{Status: lifecycle.StatusAvailable}.Matches(rec))
	assert.False(t, SCTIDFilter{SystemID: "sys-2"}.Matches(rec))
	missing := int64(8)
	assert.False(t, SCTIDFilter{JobID: &missing}.Matches(rec))
}

func TestCloneIsDeep(t *testing.T) {
	exp := time.Now()
	job := int64(1)
	rec := &SCTIDRecord{SCTID: "138875005", ExpirationDate: &exp, JobID: &job}
	c := rec.Clone()
	*c.JobID = 2
	c.Status = lifecycle.StatusPublished
	assert.Equal(t, int64(1), *rec.JobID)
	assert.Empty(t, rec.Status)

	seq := int64(3)
	srec := &SchemeIDRecord{SchemeID: "00003", Sequence: &seq}
	sc := srec.Clone()
	*sc.Sequence = 4
	assert.Equal(t, int64(3), *srec.Sequence)
}

func TestOperationApplyTo(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &SCTIDRecord{SCTID: "138875005", Comment: "old"}
	Operation{Author: "bob", Software: "curl", Comment: "new"}.ApplyTo(rec, lifecycle.StatusReserved, now)

	assert.Equal(t, lifecycle.StatusReserved, rec.Status)
	assert.Equal(t, "bob", rec.Author)
	assert.Equal(t, "curl", rec.Software)
	assert.Equal(t, "new", rec.Comment)
	assert.Equal(t, now, rec.ModifiedAt)
}

func TestBatchError(t *testing.T) {
	cause := dErrors.New(dErrors.CodeInternal, "disk full")
	err := error(&BatchError{Committed: []string{"00001", "00002"}, Failed: "00003", Err: cause})

	var be *BatchError
	assert.True(t, errors.As(err, &be))
	assert.Equal(t, []string{"00001", "00002"}, be.CommittedValues())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Contains(t, err.Error(), "00003")
}

func TestLockKeys(t *testing.T) {
	assert.Equal(t, "sctid:0:00", PartitionKey{PartitionID: "00"}.LockKey())
	assert.Equal(t, "scheme:CTV3ID", SchemeLockKey("CTV3ID"))
	assert.Equal(t, PartitionKey{Namespace: 1, PartitionID: "10"}, PartitionCounter{Namespace: 1, PartitionID: "10", Sequence: 5}.Key())
}
