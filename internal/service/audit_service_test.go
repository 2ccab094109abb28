package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-advising/advising-api/internal/models"
	"github.com/campus-advising/advising-api/pkg/jobs"
)

type mockAuditSink struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (m *mockAuditSink) Create(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

func TestAuditServicePersistsAsynchronously(t *testing.T) {
	sink := &mockAuditSink{}
	svc := NewAuditService(sink, jobs.QueueConfig{Workers: 1}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	actor := "user-1"
	svc.Record(context.Background(), models.AuditLog{
		ActorID:    &actor,
		Action:     models.AuditActionRequestCreate,
		EntityType: "course_request",
	})

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 10*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.NotEmpty(t, sink.logs[0].ID)
	assert.False(t, sink.logs[0].CreatedAt.IsZero())
	assert.Equal(t, models.AuditActionRequestCreate, sink.logs[0].Action)
}

func TestAuditDetailMarshalsContext(t *testing.T) {
	raw := Detail(map[string]string{"course_id": "course-1"})
	assert.Contains(t, string(raw), "course-1")
	assert.Nil(t, Detail(nil))
}
