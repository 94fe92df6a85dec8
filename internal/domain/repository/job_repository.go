package repository

import (
	"time"

	"github.com/labelhub/labelhub-api/internal/domain/entity"
)

// JobRepository persiste jobs diferidos durables (scheduler).
type JobRepository interface {
	Schedule(job *entity.ScheduledJob) error
	// ClaimDue devuelve hasta limit jobs vencidos y no ejecutados, saltando
	// los que otro proceso tenga bloqueados (FOR UPDATE SKIP LOCKED).
	ClaimDue(now time.Time, limit int) ([]*entity.ScheduledJob, error)
	MarkDone(id string) error
}
