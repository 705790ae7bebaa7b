// Package roster holds the batch-admission core for bulk CSV operations:
// header validation, row normalization, duplicate/capacity planning and
// check-in batch handling. Everything here is a pure computation over its
// inputs; persistence belongs to the caller.
package roster

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Errors that abort an entire batch before any row is processed
var (
	ErrSchemaMismatch = errors.New("csv header does not match the expected schema")
	ErrBadEncoding    = errors.New("csv payload is not valid UTF-8")
)

// RegistrationHeader is the exact header row required for bulk registration uploads
var RegistrationHeader = []string{"first_name", "last_name", "email", "phone_number", "event_id"}

// CheckInHeader is the exact header row required for bulk check-in uploads
var CheckInHeader = []string{"email"}

// Candidate is a normalized registration row awaiting admission
type Candidate struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	EventID     uint
}

// NormalizeEmail trims surrounding whitespace and lower-cases an email
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateHeader compares a header row against the expected one.
// The comparison is exact: same fields, same order, same case.
func ValidateHeader(got, want []string) error {
	if len(got) != len(want) {
		return ErrSchemaMismatch
	}
	for i := range want {
		if got[i] != want[i] {
			return ErrSchemaMismatch
		}
	}
	return nil
}

// ParseRegistrationRow normalizes one raw CSV record into a candidate.
// A row that does not unpack to exactly five fields, or whose event_id does
// not parse as a non-negative integer, is reported as skippable; skips never
// abort the batch.
func ParseRegistrationRow(record []string) (Candidate, bool) {
	if len(record) != len(RegistrationHeader) {
		return Candidate{}, false
	}

	eventID, err := strconv.ParseUint(strings.TrimSpace(record[4]), 10, 32)
	if err != nil {
		return Candidate{}, false
	}

	return Candidate{
		FirstName:   record[0],
		LastName:    record[1],
		Email:       NormalizeEmail(record[2]),
		PhoneNumber: record[3],
		EventID:     uint(eventID),
	}, true
}

// ReadRegistrationBatch parses a bulk registration CSV payload. The header
// must match RegistrationHeader exactly; malformed data rows are skipped
// silently and only well-formed candidates are returned, in input order.
// The skipped count is surfaced for observability only, never to callers of
// the API.
func ReadRegistrationBatch(data []byte) ([]Candidate, int, error) {
	reader, err := open(data, RegistrationHeader)
	if err != nil {
		return nil, 0, err
	}

	var batch []Candidate
	var skipped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, skip and continue with the next one
			skipped++
			continue
		}
		candidate, ok := ParseRegistrationRow(record)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, candidate)
	}
	return batch, skipped, nil
}

// ReadCheckInBatch parses a bulk check-in CSV payload. The header must be
// exactly "email"; emails are normalized and returned in input order,
// duplicates included.
func ReadCheckInBatch(data []byte) ([]string, error) {
	reader, err := open(data, CheckInHeader)
	if err != nil {
		return nil, err
	}

	var emails []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(record) < 1 {
			continue
		}
		emails = append(emails, NormalizeEmail(record[0]))
	}
	return emails, nil
}

// open validates encoding and header and positions a reader on the first
// data row. A missing header row counts as a schema mismatch.
func open(data []byte, want []string) (*csv.Reader, error) {
	if !utf8.Valid(data) {
		return nil, ErrBadEncoding
	}

	reader := csv.NewReader(bytes.NewReader(data))
	// Arity is checked per operation, not by the reader
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, ErrSchemaMismatch
	}
	if err := ValidateHeader(header, want); err != nil {
		return nil, err
	}
	return reader, nil
}
