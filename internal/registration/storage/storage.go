package storage

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/ywel/mrz/internal/registration/domain"
)

// JobStore provides in-memory storage for scan jobs. Document images are
// processed in RAM only and zeroed after use; jobs are automatically
// cleaned up after a TTL.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ScanJob
	ttl  time.Duration
}

// NewJobStore creates a new in-memory job store with the given TTL
func NewJobStore(ttl time.Duration) *JobStore {
	s := &JobStore{
		jobs: make(map[string]*domain.ScanJob),
		ttl:  ttl,
	}
	go s.cleanupLoop()
	return s
}

// GenerateJobID creates a cryptographically random job ID
func GenerateJobID() string {
	b := make([]byte, 16)
	rand.Read(b)
	const hex = "0123456789abcdef"
	id := make([]byte, 32)
	for i, v := range b {
		id[i*2] = hex[v>>4]
		id[i*2+1] = hex[v&0x0f]
	}
	return string(id)
}

// Store stores a scan job. The job is copied so the caller's pointer
// never aliases store-owned state.
func (s *JobStore) Store(job *domain.ScanJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = cloneJob(job)
}

// Get retrieves a snapshot of a scan job by ID. A copy is returned so
// callers can read and marshal it while the owning goroutine keeps
// updating the stored job.
func (s *JobStore) Get(jobID string) *domain.ScanJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	return cloneJob(job)
}

// cloneJob deep-copies a job so no caller shares memory with the stored
// one. Must be called with the store lock held.
func cloneJob(job *domain.ScanJob) *domain.ScanJob {
	clone := *job
	if job.Warnings != nil {
		clone.Warnings = append([]string(nil), job.Warnings...)
	}
	if job.Record != nil {
		record := *job.Record
		if job.Record.FieldConfidence != nil {
			record.FieldConfidence = make(map[string]domain.Confidence, len(job.Record.FieldConfidence))
			for k, v := range job.Record.FieldConfidence {
				record.FieldConfidence[k] = v
			}
		}
		clone.Record = &record
	}
	return &clone
}

// Update updates an existing scan job
func (s *JobStore) Update(jobID string, update func(*domain.ScanJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		update(job)
	}
}

// Delete removes a job from the store
func (s *JobStore) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

// ZeroBytes overwrites a byte slice with zeros for secure deletion.
// This prevents sensitive document image data from lingering in memory.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// cleanupLoop periodically removes expired jobs
func (s *JobStore) cleanupLoop() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for range ticker.C {
		s.cleanup()
	}
}

func (s *JobStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
