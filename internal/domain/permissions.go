package domain

import "time"

// HealthPermissions records which sample types a user shared with the app.
type HealthPermissions struct {
	UserID    string       `bson:"userId" json:"userId"`
	Granted   []SampleType `bson:"granted" json:"granted"`
	UpdatedAt time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// Allows reports whether t was granted.
func (p HealthPermissions) Allows(t SampleType) bool {
	for _, g := range p.Granted {
		if g == t {
			return true
		}
	}
	return false
}
