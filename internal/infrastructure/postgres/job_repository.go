package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo implementación del puerto JobRepository sobre PostgreSQL.
// El payload se guarda como JSONB.
type JobRepo struct {
	q Querier
}

// NewJobRepository construye el adaptador de jobs programados.
func NewJobRepository(q Querier) *JobRepo {
	return &JobRepo{q: q}
}

// Schedule inserta un job pendiente.
func (r *JobRepo) Schedule(job *entity.ScheduledJob) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO scheduled_jobs (id, kind, run_at, payload, done, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.Kind, job.RunAt, job.Payload, job.Done, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scheduled job: %w", err)
	}
	return nil
}

// ClaimDue devuelve hasta limit jobs vencidos sin ejecutar. SKIP LOCKED evita
// que dos instancias del scheduler reclamen el mismo job.
func (r *JobRepo) ClaimDue(now time.Time, limit int) ([]*entity.ScheduledJob, error) {
	query := `
		SELECT id, kind, run_at, payload, done, created_at
		FROM scheduled_jobs
		WHERE done = false AND run_at <= $1
		ORDER BY run_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim due jobs: %w", err)
	}
	defer rows.Close()
	var jobs []*entity.ScheduledJob
	for rows.Next() {
		var j entity.ScheduledJob
		if err := rows.Scan(&j.ID, &j.Kind, &j.RunAt, &j.Payload, &j.Done, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan scheduled job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

// MarkDone marca el job como ejecutado.
func (r *JobRepo) MarkDone(id string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE scheduled_jobs SET done = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}
	return nil
}
