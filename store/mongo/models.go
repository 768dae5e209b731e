package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/docseq/counter"
)

type counterModel struct {
	grove.BaseModel `grove:"table:docseq_counters"`

	Key         string    `grove:"id,pk"       bson:"_id"`
	Prefix      string    `grove:"prefix"      bson:"prefix"`
	Sequence    int64     `grove:"sequence"    bson:"sequence"`
	LastUpdated time.Time `grove:"lastUpdated" bson:"lastUpdated"`
}

func fromCounterModel(m *counterModel) *counter.Counter {
	return &counter.Counter{
		Key:         m.Key,
		Prefix:      m.Prefix,
		Sequence:    m.Sequence,
		LastUpdated: m.LastUpdated,
	}
}
