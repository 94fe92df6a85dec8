// Package scheduler ejecuta jobs diferidos durables (tabla scheduled_jobs).
// Reemplaza los timers en memoria: un auto-logout programado sobrevive
// reinicios del proceso y un backlog vencido se drena al arrancar.
package scheduler

import (
	"context"
	"time"

	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
	"github.com/labelhub/labelhub-api/pkg/logger"
)

// HandlerFunc ejecuta un job reclamado. Debe ser idempotente: el scheduler
// garantiza at-least-once, no exactly-once.
type HandlerFunc func(ctx context.Context, job *entity.ScheduledJob) error

// Scheduler sondea la tabla de jobs cada pollInterval y despacha los
// vencidos a sus handlers por kind.
type Scheduler struct {
	jobs         repository.JobRepository
	handlers     map[string]HandlerFunc
	pollInterval time.Duration
	batchSize    int
	log          *logger.Logger
}

// New construye el scheduler sin handlers registrados.
func New(jobs repository.JobRepository, pollInterval time.Duration, batchSize int, log *logger.Logger) *Scheduler {
	return &Scheduler{
		jobs:         jobs,
		handlers:     make(map[string]HandlerFunc),
		pollInterval: pollInterval,
		batchSize:    batchSize,
		log:          log,
	}
}

// Register asocia un handler a un kind de job. Llamar antes de Run.
func (s *Scheduler) Register(kind string, fn HandlerFunc) {
	s.handlers[kind] = fn
}

// Run sondea hasta que el contexto se cancele. Hace un primer tick inmediato
// para drenar el backlog acumulado durante un reinicio.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler detenido")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	due, err := s.jobs.ClaimDue(time.Now(), s.batchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduler: fallo reclamando jobs vencidos")
		return
	}
	for _, job := range due {
		s.dispatch(ctx, job)
	}
}

func (s *Scheduler) dispatch(ctx context.Context, job *entity.ScheduledJob) {
	fn, ok := s.handlers[job.Kind]
	if !ok {
		// Kind desconocido: se marca done para no reintentarlo en cada tick.
		s.log.Warn().Str("job_id", job.ID).Str("kind", job.Kind).Msg("scheduler: kind sin handler")
		if err := s.jobs.MarkDone(job.ID); err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID).Msg("scheduler: fallo marcando job huérfano")
		}
		return
	}
	if err := fn(ctx, job); err != nil {
		// El job queda pendiente y se reintenta en el próximo tick.
		s.log.Error().Err(err).Str("job_id", job.ID).Str("kind", job.Kind).Msg("scheduler: handler falló")
		return
	}
	if err := s.jobs.MarkDone(job.ID); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("scheduler: fallo marcando job ejecutado")
	}
}

// SessionCloser es el subconjunto de AccountRepository que necesita el
// handler de auto-logout.
type SessionCloser interface {
	SetLoggedIn(id string, loggedIn bool, lastDevice string) error
}

// AutoLogoutHandler apaga is_logged_in de la cuenta cuando expira su token.
// Idempotente: apagar una sesión ya apagada no tiene efecto.
func AutoLogoutHandler(accounts SessionCloser, log *logger.Logger) HandlerFunc {
	return func(ctx context.Context, job *entity.ScheduledJob) error {
		accountID := job.Payload["account_id"]
		if accountID == "" {
			log.Warn().Str("job_id", job.ID).Msg("auto-logout sin account_id en payload")
			return nil
		}
		if err := accounts.SetLoggedIn(accountID, false, ""); err != nil {
			return err
		}
		log.Info().Str("account_id", accountID).Msg("auto-logout ejecutado")
		return nil
	}
}
