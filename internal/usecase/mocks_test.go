package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/scrapeflow/internal/entity"
)

type mockDedupRepo struct {
	mu        sync.Mutex
	submitted map[string]bool
	isErr     error
}

func newMockDedupRepo() *mockDedupRepo {
	return &mockDedupRepo{submitted: make(map[string]bool)}
}

func (m *mockDedupRepo) MarkSubmitted(_ context.Context, url string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted[url] = true
	return nil
}

func (m *mockDedupRepo) IsSubmitted(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isErr != nil {
		return false, m.isErr
	}
	return m.submitted[url], nil
}

func (m *mockDedupRepo) Clear(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.submitted, url)
	return nil
}

type mockQueueRepo struct {
	mu   sync.Mutex
	jobs []*entity.ScrapeJob
}

func (m *mockQueueRepo) Push(_ context.Context, job *entity.ScrapeJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockQueueRepo) Pop(_ context.Context) (*entity.ScrapeJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.jobs) == 0 {
		return nil, redis.Nil
	}
	job := m.jobs[0]
	m.jobs = m.jobs[1:]
	return job, nil
}

func (m *mockQueueRepo) Size(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.jobs)), nil
}

type mockRunRepo struct {
	mu    sync.Mutex
	saved []*entity.WorkflowRun
}

func (m *mockRunRepo) Save(_ context.Context, run *entity.WorkflowRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, run)
	return nil
}

func (m *mockRunRepo) FindLatestByURL(_ context.Context, url string) (*entity.WorkflowRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *entity.WorkflowRun
	for _, run := range m.saved {
		if run.URL != url {
			continue
		}
		if latest == nil || run.FinishedAt.After(latest.FinishedAt) {
			latest = run
		}
	}
	return latest, nil
}

type mockFailedJobRepo struct {
	mu     sync.Mutex
	byURL  map[string]*entity.FailedJob
	delErr error
}

func newMockFailedJobRepo() *mockFailedJobRepo {
	return &mockFailedJobRepo{byURL: make(map[string]*entity.FailedJob)}
}

func (m *mockFailedJobRepo) SaveOrUpdate(_ context.Context, job *entity.FailedJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byURL[job.URL] = job
	return nil
}

func (m *mockFailedJobRepo) FindByURL(_ context.Context, url string) (*entity.FailedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byURL[url], nil
}

func (m *mockFailedJobRepo) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.byURL, url)
	return nil
}

type mockScraper struct {
	mu    sync.Mutex
	calls int
	fn    func(attempt int) (*entity.PageData, error)
}

func (m *mockScraper) Scrape(_ context.Context, url string) (*entity.PageData, error) {
	m.mu.Lock()
	m.calls++
	attempt := m.calls
	m.mu.Unlock()
	return m.fn(attempt)
}

func (m *mockScraper) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
