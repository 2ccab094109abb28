package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-advising/advising-api/internal/models"
	"github.com/campus-advising/advising-api/pkg/jobs"
)

// auditRecorder is the write side of the audit trail. Recording is best
// effort; failures are logged, never surfaced to callers.
type auditRecorder interface {
	Record(ctx context.Context, log models.AuditLog)
}

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditService records audit events asynchronously through a worker queue so
// the request path never waits on the audit sink.
type AuditService struct {
	repo   auditRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditService constructs the service and its backing queue. Call Start
// before recording and Stop on shutdown.
func NewAuditService(repo auditRepository, cfg jobs.QueueConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, logger: logger}
	s.queue = jobs.NewQueue("audit", s.handle, cfg)
	return s
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues an audit event. The event is stamped and persisted by a
// background worker; an enqueue failure only produces a warning.
func (s *AuditService) Record(ctx context.Context, log models.AuditLog) {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	err := s.queue.Enqueue(jobs.Job{ID: log.ID, Type: log.Action, Payload: log})
	if err != nil {
		s.logger.Warn("failed to enqueue audit event",
			zap.String("action", log.Action), zap.Error(err))
	}
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	log, ok := job.Payload.(models.AuditLog)
	if !ok {
		s.logger.Warn("unexpected audit payload type", zap.String("job_id", job.ID))
		return nil
	}
	return s.repo.Create(ctx, &log)
}

// Detail marshals arbitrary context into the audit detail column. Marshal
// failures degrade to nil rather than blocking the event.
func Detail(v interface{}) []byte {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
