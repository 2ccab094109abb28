package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionRequestCreate = "COURSE_REQUEST_CREATE"
	AuditActionRequestDecide = "COURSE_REQUEST_DECIDE"
	AuditActionRequestCancel = "COURSE_REQUEST_CANCEL"
	AuditActionCourseCreate  = "COURSE_CREATE"
	AuditActionCourseUpdate  = "COURSE_UPDATE"
	AuditActionCourseDelete  = "COURSE_DELETE"
	AuditActionLogin         = "LOGIN"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    *string   `db:"actor_id" json:"actor_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   *string   `db:"entity_id" json:"entity_id,omitempty"`
	Detail     []byte    `db:"detail" json:"detail,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
