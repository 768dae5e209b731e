package counter

import (
	"regexp"
	"time"
)

// MaxKeyLength bounds series keys, including any tenant suffix.
const MaxKeyLength = 128

// TenantSeparator joins a series key and a tenant ID into a storage key.
const TenantSeparator = ":"

var (
	keyPattern    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:\-]*$`)
	prefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,7}$`)
)

// Counter is the persisted last-issued ordinal of one series.
type Counter struct {
	Key         string    `json:"key"`
	Prefix      string    `json:"prefix"`
	Sequence    int64     `json:"sequence"`
	LastUpdated time.Time `json:"last_updated"`
}

// Next returns the ordinal the next increment would issue.
func (c *Counter) Next() int64 {
	if c == nil {
		return 1
	}
	return c.Sequence + 1
}

// Series describes how a class of documents is numbered.
type Series struct {
	Key          string `json:"key"           mapstructure:"key"           yaml:"key"`
	Prefix       string `json:"prefix"        mapstructure:"prefix"        yaml:"prefix"`
	PadWidth     int    `json:"pad_width"     mapstructure:"pad_width"     yaml:"pad_width"`
	TenantScoped bool   `json:"tenant_scoped" mapstructure:"tenant_scoped" yaml:"tenant_scoped"`
	EntityCode   bool   `json:"entity_code"   mapstructure:"entity_code"   yaml:"entity_code"`
}

// StorageKey returns the counter key for this series. Tenant-scoped
// series get one counter per tenant ("receipt:t_42"); an empty tenantID
// falls back to the global counter.
func (s Series) StorageKey(tenantID string) string {
	if !s.TenantScoped || tenantID == "" {
		return s.Key
	}
	return s.Key + TenantSeparator + tenantID
}

// Well-known series keys.
const (
	KeyReceipt         = "receipt"
	KeyPayment         = "payment"
	KeyQuotation       = "quotation"
	KeyPurchaseInvoice = "purchaseInvoice"
	KeyInvoice         = "invoice"
	KeySalesOrder      = "salesOrder"
)

// DefaultSeries returns the built-in series definitions.
func DefaultSeries() []Series {
	return []Series{
		{Key: KeyReceipt, Prefix: "RC"},
		{Key: KeyPayment, Prefix: "PAY"},
		{Key: KeyQuotation, Prefix: "QT", EntityCode: true},
		{Key: KeyPurchaseInvoice, Prefix: "PI"},
		{Key: KeyInvoice, Prefix: "INV"},
		{Key: KeySalesOrder, Prefix: "SO"},
	}
}

// ValidKey reports whether key is acceptable as a counter key.
func ValidKey(key string) bool {
	return key != "" && len(key) <= MaxKeyLength && keyPattern.MatchString(key)
}

// ValidPrefix reports whether prefix is a short upper-case code.
func ValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}
