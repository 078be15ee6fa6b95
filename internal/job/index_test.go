package job_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"jobboard/internal/apperr"
	"jobboard/internal/job"
	"jobboard/internal/models"
	"jobboard/internal/store"
)

// failingStore fails every query.
type failingStore struct {
	*store.Memory
}

var errBoom = errors.New("boom")

func (failingStore) QueryJobs(context.Context, *job.Criteria) ([]models.Job, error) {
	return nil, errBoom
}

func (failingStore) IncrementViews(context.Context, uuid.UUID) error {
	return errBoom
}

func TestIndexQuery(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	x := job.NewIndex(m)

	m.CreateJob(ctx, &models.Job{Title: "A", IsActive: true})
	m.CreateJob(ctx, &models.Job{Title: "B", IsActive: false})

	jobs, err := x.Query(ctx, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "A" {
		t.Errorf("Query = %v, want only the active job", jobs)
	}

	jobs, err = job.NewIndex(failingStore{m}).Query(ctx, &job.Criteria{Empty: true})
	if err != nil || len(jobs) != 0 {
		t.Errorf("Empty criteria = %v, %v; want no jobs and no store call", jobs, err)
	}

	_, err = job.NewIndex(failingStore{m}).Query(ctx, &job.Criteria{})
	if !errors.Is(err, errBoom) {
		t.Errorf("Query err = %v, want wrapped store error", err)
	}
}

func TestIndexGet(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	x := job.NewIndex(m)

	active, _ := m.CreateJob(ctx, &models.Job{Title: "A", IsActive: true})
	gone, _ := m.CreateJob(ctx, &models.Job{Title: "B", IsActive: false})

	got, err := x.Get(ctx, active.ID)
	if err != nil || got.Title != "A" {
		t.Errorf("Get(active) = %v, %v", got, err)
	}

	for _, id := range []uuid.UUID{gone.ID, uuid.New()} {
		if _, err := x.Get(ctx, id); apperr.CodeOf(err) != apperr.CodeNotFound {
			t.Errorf("Get(%s) err = %v, want not_found", id, err)
		}
	}
}

func TestIndexCounters(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	x := job.NewIndex(m)

	j, _ := m.CreateJob(ctx, &models.Job{Title: "A", IsActive: true})
	x.RecordView(ctx, j.ID)
	x.RecordView(ctx, j.ID)
	if err := x.RecordApplication(ctx, j.ID); err != nil {
		t.Fatalf("RecordApplication: %v", err)
	}

	got, _ := x.Get(ctx, j.ID)
	if got.ViewsCount != 2 || got.ApplicationsCount != 1 {
		t.Errorf("counters = %d views, %d applications", got.ViewsCount, got.ApplicationsCount)
	}

	if err := x.RecordApplication(ctx, uuid.New()); apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Errorf("RecordApplication(unknown) err = %v", err)
	}

	// A failing view counter is logged and swallowed.
	job.NewIndex(failingStore{m}).RecordView(ctx, j.ID)
}
