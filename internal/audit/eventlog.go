// Package audit appends domain events (submissions, reference approvals,
// verification changes) to an append-only log table.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

const (
	EventTestSubmitted      = "TestSubmitted"
	EventReferenceApproved  = "ReferenceApproved"
	EventQuestionVerified   = "QuestionVerified"
	EventQuestionUnverified = "QuestionUnverified"
)

// Recorder receives domain events. Recording is best-effort: failures are
// logged, never propagated into the request path.
type Recorder interface {
	Record(ctx context.Context, typ, key string, data any)
}

type EventLog struct {
	db     *sql.DB
	siteID string
}

func NewEventLog(db *sql.DB, siteID string) *EventLog {
	if siteID == "" {
		siteID = "local"
	}
	return &EventLog{db: db, siteID: siteID}
}

func (l *EventLog) Record(ctx context.Context, typ, key string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("audit: marshal %s/%s: %v", typ, key, err)
		return
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at) VALUES ($1,$2,$3,$4,$5)`,
		l.siteID, typ, key, string(payload), time.Now().Unix())
	if err != nil {
		log.Printf("audit: append %s/%s: %v", typ, key, err)
	}
}

// Nop is the recorder used in degraded mode when no database is around.
type Nop struct{}

func (Nop) Record(context.Context, string, string, any) {}
