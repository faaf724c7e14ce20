package tablefile

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainRecords is the domain prefix for record checksums.
// Version suffix enables future algorithm migration.
const DomainRecords = "salesdb/records/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Checksum returns the checksum over compact record encodings.
func Checksum(records [][]byte) string {
	var joined []byte
	for i, rec := range records {
		if i > 0 {
			joined = append(joined, '\n')
		}
		joined = append(joined, rec...)
	}
	return hashWithDomain(DomainRecords, joined)
}
