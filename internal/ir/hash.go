package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRecord    = "semmeta/record/v1"
	DomainRecordSet = "semmeta/recordset/v1"
	DomainChange    = "semmeta/change/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordHash computes the content hash of a derived record.
// Two records hash equal exactly when Metadata.Equal holds.
func RecordHash(md Metadata) (string, error) {
	canonical, err := MarshalCanonical(md)
	if err != nil {
		return "", fmt.Errorf("RecordHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// RecordSetHash computes the digest of a whole record set. Order does not
// matter: the record hashes are sorted before hashing, so an engine's
// GetAll and a journal replay of the same state digest equal.
func RecordSetHash(records []Metadata) (string, error) {
	hashes := make([]string, 0, len(records))
	for _, md := range records {
		h, err := RecordHash(md)
		if err != nil {
			return "", fmt.Errorf("RecordSetHash: %s: %w", md.UID.ItemName, err)
		}
		hashes = append(hashes, h)
	}
	slices.Sort(hashes)
	return hashWithDomain(DomainRecordSet, []byte(strings.Join(hashes, "\n"))), nil
}

// ChangeID computes the content-addressed ID of a journaled change.
// The ID field of c is ignored; seq, source, kind and both records are
// covered.
func ChangeID(c Change) (string, error) {
	c.ID = ""
	canonical, err := MarshalCanonical(c)
	if err != nil {
		return "", fmt.Errorf("ChangeID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainChange, canonical), nil
}

// MustChangeID is like ChangeID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustChangeID(c Change) string {
	id, err := ChangeID(c)
	if err != nil {
		panic(err)
	}
	return id
}
