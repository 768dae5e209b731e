// Package issuance defines the record produced each time a document number
// is handed out.
package issuance

import (
	"time"

	"github.com/xraph/docseq/id"
)

// Issuance is one issued document number.
type Issuance struct {
	ID         id.IssuanceID `json:"id"`
	Series     string        `json:"series"`
	TenantID   string        `json:"tenant_id,omitempty"`
	Key        string        `json:"key"` // storage key, includes the tenant for scoped series
	Prefix     string        `json:"prefix"`
	Ordinal    int64         `json:"ordinal"`
	EntityCode string        `json:"entity_code,omitempty"`
	Number     string        `json:"number"`
	IssuedAt   time.Time     `json:"issued_at"`
}

// Preview is the advisory result of a peek. It reserves nothing.
type Preview struct {
	Series   string `json:"series"`
	TenantID string `json:"tenant_id,omitempty"`
	Key      string `json:"key"`
	Ordinal  int64  `json:"ordinal"`
	Number   string `json:"number"`
}
