package docseq

import "github.com/xraph/docseq/id"

// ID is the primary identifier type for docseq records.
type ID = id.ID

// Prefix identifies the record type encoded in a TypeID.
type Prefix = id.Prefix
