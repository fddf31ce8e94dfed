package sctid

import (
	"fmt"
	"slices"
	"strconv"

	dErrors "cis/pkg/domain-errors"
)

const (
	MinLength = 6
	MaxLength = 18

	// MinNamespace and MaxNamespace bound extension namespaces, which always
	// occupy exactly seven digits.
	MinNamespace = 1000000
	MaxNamespace = 9999999
)

// Structure holds the fields encoded in an SCTID.
type Structure struct {
	Sequence    int64
	Namespace   int64
	PartitionID string
	CheckDigit  int
}

// IsExtension reports whether the partition carries a namespace.
func (s Structure) IsExtension() bool {
	return IsExtensionPartition(s.PartitionID)
}

var componentTypes = map[byte]string{
	'0': "concept Id",
	'1': "description Id",
	'2': "relationship Id",
	'3': "subset Id (RF1)",
	'4': "mapset Id (RF1)",
	'5': "target Id (RF1)",
}

// ValidPartition reports whether p is one of the twelve partition codes
// 00-05 (core) and 10-15 (extension).
func ValidPartition(p string) bool {
	if len(p) != 2 {
		return false
	}
	if p[0] != '0' && p[0] != '1' {
		return false
	}
	_, ok := componentTypes[p[1]]
	return ok
}

// Partition codes in allocation order.
var (
	CorePartitions      = []string{"00", "01", "02", "03", "04", "05"}
	ExtensionPartitions = []string{"10", "11", "12", "13", "14", "15"}
)

// PartitionsFor returns the partitions identifiers of namespace are issued
// from: the core set for namespace 0, the extension set otherwise.
func PartitionsFor(namespace int64) []string {
	if namespace == 0 {
		return slices.Clone(CorePartitions)
	}
	return slices.Clone(ExtensionPartitions)
}

// MinSequence returns the smallest sequence that composes to an identifier of
// at least MinLength digits in partition p.
func MinSequence(p string) int64 {
	if IsExtensionPartition(p) {
		return 0
	}
	return 100
}

// IsExtensionPartition reports whether p marks an extension identifier.
func IsExtensionPartition(p string) bool {
	return len(p) == 2 && p[0] == '1'
}

// Partition returns the two digits immediately preceding the check digit.
func Partition(id string) (string, error) {
	if len(id) < 3 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "SctId is too short to hold a partition.")
	}
	return id[len(id)-3 : len(id)-1], nil
}

// Parse validates id and extracts its structural fields. Every failure is a
// CodeInvalidInput error whose message says what is wrong.
func Parse(id string) (Structure, error) {
	if id == "" || !isDigits(id) {
		return Structure{}, dErrors.New(dErrors.CodeInvalidInput, "SctId is not a number.")
	}
	if len(id) < MinLength {
		return Structure{}, dErrors.New(dErrors.CodeInvalidInput, "SctId length is less than 6 digits.")
	}
	if len(id) > MaxLength {
		return Structure{}, dErrors.New(dErrors.CodeInvalidInput, "SctId length is greater than 18 digits.")
	}

	partition, _ := Partition(id)
	if !ValidPartition(partition) {
		return Structure{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("Partition Id %s is not valid.", partition))
	}

	s := Structure{
		PartitionID: partition,
		CheckDigit:  int(id[len(id)-1] - '0'),
	}

	var sequence string
	if IsExtensionPartition(partition) {
		if len(id) <= 10 {
			return Structure{}, dErrors.New(dErrors.CodeInvalidInput,
				"PartitionId first digit is '1', it identifies an extension SCTID, but no namespace could be identified")
		}
		ns, _ := strconv.ParseInt(id[len(id)-10:len(id)-3], 10, 64)
		if ns == 0 {
			return Structure{}, dErrors.New(dErrors.CodeInvalidInput,
				"PartitionId first digit is '1', it identifies an extension SCTID, but no namespace could be identified")
		}
		s.Namespace = ns
		sequence = id[:len(id)-10]
	} else {
		sequence = id[:len(id)-3]
	}

	// Compose never pads the sequence, so a padded one would alias another id.
	if len(sequence) > 1 && sequence[0] == '0' {
		return Structure{}, dErrors.New(dErrors.CodeInvalidInput, "SctId sequence has leading zeros.")
	}
	seq, err := strconv.ParseInt(sequence, 10, 64)
	if err != nil {
		return Structure{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "SctId sequence is not a number.")
	}
	s.Sequence = seq

	cd, _ := ComputeCheckDigit(id[:len(id)-1])
	if cd != s.CheckDigit {
		return Structure{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("SctId is not valid. Check digit should be %d.", cd))
	}
	return s, nil
}

// Compose builds the SCTID for sequence in the given namespace and partition,
// appending the Verhoeff check digit. Core partitions require namespace 0 and
// extension partitions a seven-digit namespace, so Parse(Compose(...)) always
// recovers the inputs.
func Compose(namespace int64, partitionID string, sequence int64) (string, error) {
	if !ValidPartition(partitionID) {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("Partition Id %s is not valid.", partitionID))
	}
	if sequence < 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "sequence must not be negative")
	}
	if sequence < MinSequence(partitionID) {
		return "", dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("sequence %d would produce an SctId shorter than %d digits", sequence, MinLength))
	}

	base := strconv.FormatInt(sequence, 10)
	switch {
	case namespace == 0:
		if IsExtensionPartition(partitionID) {
			return "", dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("partition %s requires an extension namespace", partitionID))
		}
	case namespace < MinNamespace || namespace > MaxNamespace:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("namespace %d is not a seven digit namespace", namespace))
	default:
		if !IsExtensionPartition(partitionID) {
			return "", dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("partition %s is a core partition and cannot carry namespace %d", partitionID, namespace))
		}
		base += strconv.FormatInt(namespace, 10)
	}
	base += partitionID

	if len(base)+1 > MaxLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "sequence is too large for an 18 digit SctId")
	}
	cd, err := ComputeCheckDigit(base)
	if err != nil {
		return "", err
	}
	return base + strconv.Itoa(cd), nil
}
