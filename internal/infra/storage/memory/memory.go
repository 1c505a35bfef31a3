package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stateofclarity/refinery/internal/core/domain"
	"github.com/stateofclarity/refinery/internal/infra/storage"
)

// MemoryStorage backs the repositories for tests and db-less runs.
type MemoryStorage struct {
	briefs  map[string]*domain.Brief
	logs    []*domain.ExecutionLog
	credits map[string][]*domain.CreditTransaction
	mu      sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		briefs:  make(map[string]*domain.Brief),
		credits: make(map[string][]*domain.CreditTransaction),
	}
}

// -----------------------------------------------------------------------------
// Brief Repository
// -----------------------------------------------------------------------------

type BriefRepo struct {
	store *MemoryStorage
}

func NewBriefRepo(store *MemoryStorage) *BriefRepo {
	return &BriefRepo{store: store}
}

func (r *BriefRepo) Save(ctx context.Context, brief *domain.Brief) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *brief
	if copied.Status == "" {
		copied.Status = domain.BriefStatusDraft
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	copied.UpdatedAt = time.Now()
	r.store.briefs[brief.ID] = &copied
	return nil
}

func (r *BriefRepo) GetByID(ctx context.Context, id string) (*domain.Brief, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	brief, ok := r.store.briefs[id]
	if !ok {
		return nil, storage.ErrBriefNotFound
	}
	copied := *brief
	return &copied, nil
}

func (r *BriefRepo) ClaimNext(ctx context.Context) (*domain.Brief, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var oldest *domain.Brief
	for _, b := range r.store.briefs {
		if b.Status != domain.BriefStatusDraft {
			continue
		}
		if oldest == nil || b.CreatedAt.Before(oldest.CreatedAt) {
			oldest = b
		}
	}
	if oldest == nil {
		return nil, nil
	}
	oldest.Status = domain.BriefStatusRefining
	oldest.UpdatedAt = time.Now()
	copied := *oldest
	return &copied, nil
}

func (r *BriefRepo) Finish(
	ctx context.Context,
	id string,
	status domain.BriefStatus,
	score float64,
	attempts int,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	brief, ok := r.store.briefs[id]
	if !ok {
		return storage.ErrBriefNotFound
	}
	brief.Status = status
	brief.Score = score
	brief.Attempts = attempts
	brief.UpdatedAt = time.Now()
	return nil
}

// -----------------------------------------------------------------------------
// Execution Log Repository
// -----------------------------------------------------------------------------

type ExecutionLogRepo struct {
	store *MemoryStorage
}

func NewExecutionLogRepo(store *MemoryStorage) *ExecutionLogRepo {
	return &ExecutionLogRepo{store: store}
}

func (r *ExecutionLogRepo) Insert(ctx context.Context, entry *domain.ExecutionLog) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *entry
	if copied.ID == "" {
		copied.ID = uuid.NewString()
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	r.store.logs = append(r.store.logs, &copied)
	return copied.ID, nil
}

// Logs returns a snapshot of all inserted log entries.
func (s *MemoryStorage) Logs() []*domain.ExecutionLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ExecutionLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// -----------------------------------------------------------------------------
// Credit Repository
// -----------------------------------------------------------------------------

type CreditRepo struct {
	store *MemoryStorage
}

func NewCreditRepo(store *MemoryStorage) *CreditRepo {
	return &CreditRepo{store: store}
}

func (r *CreditRepo) Refund(ctx context.Context, tx *domain.CreditTransaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *tx
	if copied.ID == "" {
		copied.ID = uuid.NewString()
	}
	copied.CreatedAt = time.Now()
	r.store.credits[tx.BriefID] = append(r.store.credits[tx.BriefID], &copied)
	return nil
}

func (r *CreditRepo) TotalRefunded(ctx context.Context, briefID string) (float64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var total float64
	for _, tx := range r.store.credits[briefID] {
		total += tx.Amount
	}
	return total, nil
}
