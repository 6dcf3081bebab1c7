package domain

import "time"

// Timestamps carries creation and modification times. Embedded in every
// persisted entity that can change after creation.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (t *Timestamps) InitTimestamps() {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Touch updates UpdatedAt to now.
func (t *Timestamps) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
