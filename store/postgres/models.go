package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/docseq/counter"
)

type counterModel struct {
	grove.BaseModel `grove:"table:docseq_counters"`

	Key         string    `grove:"key,pk"`
	Prefix      string    `grove:"prefix"`
	Sequence    int64     `grove:"sequence"`
	LastUpdated time.Time `grove:"last_updated"`
}

func fromCounterModel(m *counterModel) *counter.Counter {
	return &counter.Counter{
		Key:         m.Key,
		Prefix:      m.Prefix,
		Sequence:    m.Sequence,
		LastUpdated: m.LastUpdated,
	}
}
