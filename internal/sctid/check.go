package sctid

import (
	"fmt"
	"strconv"
	"strings"
)

// Report describes the outcome of checking a candidate SCTID. It is filled
// as far as the input allows even when the identifier is invalid.
type Report struct {
	SCTID                 string `json:"sctid"`
	Sequence              *int64 `json:"sequence"`
	Namespace             *int64 `json:"namespace"`
	PartitionID           string `json:"partitionId"`
	ComponentType         string `json:"componentType"`
	CheckDigit            *int   `json:"checkDigit"`
	Valid                 bool   `json:"isSCTIDValid"`
	ErrorMessage          string `json:"errorMessage"`
	NamespaceOrganization string `json:"namespaceOrganization"`
	NamespaceContactEmail string `json:"namespaceContactEmail"`
}

// Check validates id and reports every problem it finds. Namespace
// organization fields are left empty; callers with access to a namespace
// registry fill them in.
func Check(id string) Report {
	r := Report{SCTID: id}
	var errs []string

	switch {
	case id == "" || !isDigits(id):
		r.ErrorMessage = "SctId is not a number."
		return r
	case len(id) < MinLength:
		r.ErrorMessage = "SctId length is less than 6 digits."
		return r
	case len(id) > MaxLength:
		r.ErrorMessage = "SctId length is greater than 18 digits."
		return r
	}

	valid := IsValid(id)
	if !valid {
		errs = append(errs, "SctId is not valid.")
	}

	partition, _ := Partition(id)
	r.PartitionID = partition
	partitionOK := ValidPartition(partition)
	if !partitionOK {
		errs = append(errs, fmt.Sprintf("Partition Id %s is not valid.", partition))
		valid = false
	}

	cd := int(id[len(id)-1] - '0')
	r.CheckDigit = &cd
	if !valid && partitionOK {
		if expected, err := ComputeCheckDigit(id[:len(id)-1]); err == nil && expected != cd {
			errs = append(errs, fmt.Sprintf("Check digit should be %d.", expected))
		}
	}

	if IsExtensionPartition(partition) {
		if len(id) > 10 {
			if seq, err := strconv.ParseInt(id[:len(id)-10], 10, 64); err == nil {
				r.Sequence = &seq
			}
			ns, _ := strconv.ParseInt(id[len(id)-10:len(id)-3], 10, 64)
			r.Namespace = &ns
			if ns == 0 && partitionOK {
				errs = append(errs, "PartitionId first digit is '1', it identifies an extension SCTID, but no namespace could be identified")
				valid = false
			}
		} else {
			errs = append(errs, "PartitionId first digit is '1', it identifies an extension SCTID, but no namespace could be identified")
		}
	} else {
		if seq, err := strconv.ParseInt(id[:len(id)-3], 10, 64); err == nil {
			r.Sequence = &seq
		}
		var ns int64
		r.Namespace = &ns
	}

	if r.Sequence == nil || r.Namespace == nil {
		valid = false
	}
	if r.Sequence != nil && id[0] == '0' && sequenceDigits(id, partition) > 1 {
		errs = append(errs, "SctId sequence has leading zeros.")
		valid = false
	}

	if valid {
		if *r.Namespace == 0 {
			r.ComponentType = "Core "
		} else {
			r.ComponentType = "Extension "
		}
		r.ComponentType += componentTypes[partition[1]]
	}

	r.Valid = valid
	r.ErrorMessage = strings.Join(errs, " ")
	return r
}

// sequenceDigits is the length of the sequence portion of id.
func sequenceDigits(id, partition string) int {
	if IsExtensionPartition(partition) {
		return len(id) - 10
	}
	return len(id) - 3
}
