package service

import (
	"log"
	"sync"
	"time"

	"github.com/smmonirhasan92/man2man-sub004/internal/models"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
)

// AuditService is a best-effort side channel: entries go into a bounded
// queue drained by a background goroutine. A full queue drops the entry and
// a failed insert is only logged; audit problems must never roll back or
// block a financial transaction.
type AuditService struct {
	repo    *repository.AuditLogRepository
	queue   chan *models.AuditLog
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

func NewAuditService(repo *repository.AuditLogRepository) *AuditService {
	s := &AuditService{
		repo:  repo,
		queue: make(chan *models.AuditLog, 1024),
	}
	s.wg.Add(1)
	go s.flush()
	return s
}

// Log enqueues an audit entry without blocking. Safe on a nil receiver so
// callers never have to care whether auditing is wired.
func (s *AuditService) Log(userID *uint, action, resource, resourceID, metadata string) {
	if s == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
	select {
	case s.queue <- entry:
	default:
		log.Printf("[audit] queue full, dropping %s %s/%s", action, resource, resourceID)
	}
}

func (s *AuditService) flush() {
	defer s.wg.Done()
	for entry := range s.queue {
		if err := s.repo.Create(entry); err != nil {
			log.Printf("[audit] write failed for %s: %v", entry.Action, err)
		}
	}
}

// Close drains the queue and stops the flusher. Called on shutdown.
func (s *AuditService) Close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.closeMu.Unlock()
	s.wg.Wait()
}
