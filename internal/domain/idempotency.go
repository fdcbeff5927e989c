// Package domain defines the core persistence models for the application.
package domain

import "time"

// Idempotency records a previously processed unsafe request, keyed by
// (actor_id, scope, key). It lets clients retry POSTs - the request-response
// endpoint in particular, where a flaky rural connection makes duplicate
// submits common - without re-executing side effects.
//
// Scope identifies the semantic operation (e.g. "respond:42" for answering
// request 42); ResultID points at the row the original request produced.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	ActorID   uint      `gorm:"not null;uniqueIndex:ux_actor_scope_key,priority:1"`
	Scope     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_actor_scope_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_actor_scope_key,priority:3"`
	ResultID  uint      `gorm:"not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	ExpiresAt time.Time `gorm:"index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
