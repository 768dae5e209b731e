package docseq

import (
	"github.com/xraph/docseq/counter"
	"github.com/xraph/docseq/issuance"
)

// Re-export common types for convenience so users don't have to import
// the counter and issuance packages.

// Series is re-exported from the counter package.
type Series = counter.Series

// Counter is re-exported from the counter package.
type Counter = counter.Counter

// Issuance is re-exported from the issuance package.
type Issuance = issuance.Issuance

// Re-export series keys
const (
	KeyReceipt         = counter.KeyReceipt
	KeyPayment         = counter.KeyPayment
	KeyQuotation       = counter.KeyQuotation
	KeyPurchaseInvoice = counter.KeyPurchaseInvoice
	KeyInvoice         = counter.KeyInvoice
	KeySalesOrder      = counter.KeySalesOrder
)

// DefaultSeries is re-exported from the counter package.
var DefaultSeries = counter.DefaultSeries
