package entity

import "time"

type Fingerprint struct {
	Fp        string
	Mode      string
	RunId     *string
	Insights  []*StoredInsight
	CreatedAt time.Time
}

type StoredInsight struct {
	Id          string
	Fingerprint string
	Lane        string
	Position    int
	Kind        string
	Content     string
	Ts          int64
}
