package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/pkg/logger"
)

// fakeJobRepo repo en memoria para los tests del scheduler.
type fakeJobRepo struct {
	mu   sync.Mutex
	jobs []*entity.ScheduledJob
}

func (f *fakeJobRepo) Schedule(job *entity.ScheduledJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeJobRepo) ClaimDue(now time.Time, limit int) ([]*entity.ScheduledJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []*entity.ScheduledJob
	for _, j := range f.jobs {
		if !j.Done && !j.RunAt.After(now) {
			due = append(due, j)
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

func (f *fakeJobRepo) MarkDone(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == id {
			j.Done = true
			return nil
		}
	}
	return errors.New("job no encontrado")
}

func (f *fakeJobRepo) isDone(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == id {
			return j.Done
		}
	}
	return false
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func dueJob(id, kind string) *entity.ScheduledJob {
	return &entity.ScheduledJob{
		ID:        id,
		Kind:      kind,
		RunAt:     time.Now().Add(-time.Second),
		Payload:   map[string]string{"account_id": "acc-1"},
		CreatedAt: time.Now().Add(-time.Minute),
	}
}

func TestTickDispatchesDueJobs(t *testing.T) {
	repo := &fakeJobRepo{}
	require.NoError(t, repo.Schedule(dueJob("j1", "test_kind")))
	// Job futuro: no debe despacharse todavía
	future := dueJob("j2", "test_kind")
	future.RunAt = time.Now().Add(time.Hour)
	require.NoError(t, repo.Schedule(future))

	var handled []string
	s := New(repo, time.Minute, 10, testLogger())
	s.Register("test_kind", func(ctx context.Context, job *entity.ScheduledJob) error {
		handled = append(handled, job.ID)
		return nil
	})

	s.tick(context.Background())

	assert.Equal(t, []string{"j1"}, handled)
	assert.True(t, repo.isDone("j1"))
	assert.False(t, repo.isDone("j2"))
}

func TestTickKeepsFailedJobPending(t *testing.T) {
	repo := &fakeJobRepo{}
	require.NoError(t, repo.Schedule(dueJob("j1", "test_kind")))

	calls := 0
	s := New(repo, time.Minute, 10, testLogger())
	s.Register("test_kind", func(ctx context.Context, job *entity.ScheduledJob) error {
		calls++
		if calls == 1 {
			return errors.New("transitorio")
		}
		return nil
	})

	s.tick(context.Background())
	assert.False(t, repo.isDone("j1"), "el job fallido debe quedar pendiente")

	s.tick(context.Background())
	assert.True(t, repo.isDone("j1"), "el reintento debe completarlo")
	assert.Equal(t, 2, calls)
}

func TestTickMarksUnknownKindDone(t *testing.T) {
	repo := &fakeJobRepo{}
	require.NoError(t, repo.Schedule(dueJob("j1", "kind_desconocido")))

	s := New(repo, time.Minute, 10, testLogger())
	s.tick(context.Background())

	assert.True(t, repo.isDone("j1"), "un kind sin handler no debe reintentarse")
}

// fakeAccountSessions implementación mínima para el handler de auto-logout.
type fakeAccountSessions struct {
	loggedOut []string
}

func (f *fakeAccountSessions) SetLoggedIn(id string, loggedIn bool, lastDevice string) error {
	if !loggedIn {
		f.loggedOut = append(f.loggedOut, id)
	}
	return nil
}

func TestAutoLogoutHandler(t *testing.T) {
	sessions := &fakeAccountSessions{}
	h := AutoLogoutHandler(sessions, testLogger())

	err := h(context.Background(), dueJob("j1", entity.JobKindAutoLogout))
	require.NoError(t, err)
	assert.Equal(t, []string{"acc-1"}, sessions.loggedOut)
}

func TestAutoLogoutHandlerMissingPayload(t *testing.T) {
	sessions := &fakeAccountSessions{}
	h := AutoLogoutHandler(sessions, testLogger())

	job := dueJob("j1", entity.JobKindAutoLogout)
	job.Payload = map[string]string{}
	err := h(context.Background(), job)
	require.NoError(t, err, "payload incompleto se ignora sin reintentos")
	assert.Empty(t, sessions.loggedOut)
}
