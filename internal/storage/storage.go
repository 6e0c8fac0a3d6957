package storage

import (
	"sort"
	"sync"

	"github.com/lehigh-university-libraries/recordmatcher/internal/matcher"
)

// JobStore keeps match results in memory, keyed by job ID.
type JobStore struct {
	jobs map[string]*matcher.Result
	mu   sync.RWMutex
}

func New() *JobStore {
	return &JobStore{
		jobs: make(map[string]*matcher.Result),
	}
}

func (s *JobStore) Get(jobID string) (*matcher.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	return job, exists
}

func (s *JobStore) Set(jobID string, job *matcher.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = job
}

// GetAll returns every stored job ordered by job ID.
func (s *JobStore) GetAll() []*matcher.Result {
	s.mu.RLock()
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]*matcher.Result, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.jobs[id])
	}
	s.mu.RUnlock()
	return result
}

func (s *JobStore) Delete(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.jobs[jobID]
	delete(s.jobs, jobID)
	return exists
}
