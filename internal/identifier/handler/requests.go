package handler

import (
	"strings"
	"time"

	"cis/internal/identifier/models"
	dErrors "cis/pkg/domain-errors"
)

const (
	maxBatchSize   = 10000
	maxFieldLength = 255
)

// SCTIDRequest is the body of POST /sct/{action}.
type SCTIDRequest struct {
	Namespace      int64      `json:"namespace"`
	PartitionID    string     `json:"partitionId"`
	SCTID          string     `json:"sctid"`
	SystemID       string     `json:"systemId"`
	AutoSysID      bool       `json:"autoSysId"`
	Author         string     `json:"author"`
	Software       string     `json:"software"`
	Comment        string     `json:"comment"`
	ExpirationDate *time.Time `json:"expirationDate"`
	JobID          *int64     `json:"jobId"`
}

// Validate trims the request and enforces transport limits. Identifier
// structure is checked by the service.
func (r *SCTIDRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.PartitionID = strings.TrimSpace(r.PartitionID)
	r.SCTID = strings.TrimSpace(r.SCTID)
	r.SystemID = strings.TrimSpace(r.SystemID)
	r.Author = strings.TrimSpace(r.Author)
	r.Software = strings.TrimSpace(r.Software)
	for name, v := range map[string]string{"systemId": r.SystemID, "author": r.Author, "software": r.Software} {
		if len(v) > maxFieldLength {
			return dErrors.New(dErrors.CodeValidation, name+" must be at most 255 characters")
		}
	}
	return nil
}

func (r *SCTIDRequest) Operation(software string) models.Operation {
	if r.Software != "" {
		software = r.Software
	}
	return models.Operation{
		Namespace:      r.Namespace,
		PartitionID:    r.PartitionID,
		SCTID:          r.SCTID,
		SystemID:       r.SystemID,
		AutoSysID:      r.AutoSysID,
		Author:         r.Author,
		Software:       software,
		Comment:        r.Comment,
		ExpirationDate: r.ExpirationDate,
		JobID:          r.JobID,
	}
}

// NamespaceRequest is the body of POST /sct/namespaces.
type NamespaceRequest struct {
	ID               *int64 `json:"namespace"`
	OrganizationName string `json:"organizationName"`
	Email            string `json:"email"`
}

func (r *NamespaceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.ID == nil {
		return dErrors.New(dErrors.CodeValidation, "namespace is required")
	}
	r.OrganizationName = strings.TrimSpace(r.OrganizationName)
	r.Email = strings.TrimSpace(r.Email)
	if r.OrganizationName == "" {
		return dErrors.New(dErrors.CodeValidation, "organizationName is required")
	}
	if len(r.OrganizationName) > maxFieldLength || len(r.Email) > maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, "organizationName and email must be at most 255 characters")
	}
	return nil
}

func (r *NamespaceRequest) Namespace() models.Namespace {
	return models.Namespace{
		Namespace:        *r.ID,
		OrganizationName: r.OrganizationName,
		Email:            r.Email,
	}
}

// PregenerateRequest is the body of POST /sct/pregenerate and
// POST /scheme/{scheme}/pregenerate.
type PregenerateRequest struct {
	Namespace   int64  `json:"namespace"`
	PartitionID string `json:"partitionId"`
	Quantity    int    `json:"quantity"`
}

func (r *PregenerateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.PartitionID = strings.TrimSpace(r.PartitionID)
	if r.Quantity <= 0 || r.Quantity > maxBatchSize {
		return dErrors.New(dErrors.CodeValidation, "quantity must be between 1 and 10000")
	}
	return nil
}

// SchemeRequest is the body of the /scheme/{scheme}/* mutations.
type SchemeRequest struct {
	Quantity       int        `json:"quantity"`
	SchemeIDs      []string   `json:"schemeIds"`
	SystemIDs      []string   `json:"systemIds"`
	AutoSysID      bool       `json:"autoSysId"`
	Author         string     `json:"author"`
	Software       string     `json:"software"`
	Comment        string     `json:"comment"`
	ExpirationDate *time.Time `json:"expirationDate"`
	JobID          *int64     `json:"jobId"`
}

func (r *SchemeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Quantity < 0 || r.Quantity > maxBatchSize {
		return dErrors.New(dErrors.CodeValidation, "quantity must be between 1 and 10000")
	}
	if len(r.SchemeIDs) > maxBatchSize || len(r.SystemIDs) > maxBatchSize {
		return dErrors.New(dErrors.CodeValidation, "at most 10000 identifiers per request")
	}
	for i := range r.SchemeIDs {
		r.SchemeIDs[i] = strings.TrimSpace(r.SchemeIDs[i])
	}
	for i := range r.SystemIDs {
		r.SystemIDs[i] = strings.TrimSpace(r.SystemIDs[i])
	}
	r.Author = strings.TrimSpace(r.Author)
	r.Software = strings.TrimSpace(r.Software)
	return nil
}

func (r *SchemeRequest) Operation(schemeName, software string) models.SchemeOperation {
	if r.Software != "" {
		software = r.Software
	}
	return models.SchemeOperation{
		Scheme:         schemeName,
		Quantity:       r.Quantity,
		SchemeIDs:      r.SchemeIDs,
		SystemIDs:      r.SystemIDs,
		AutoSysID:      r.AutoSysID,
		Author:         r.Author,
		Software:       software,
		Comment:        r.Comment,
		ExpirationDate: r.ExpirationDate,
		JobID:          r.JobID,
	}
}

// splitList parses a comma separated query parameter.
func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return strings.Split(v, ",")
}
