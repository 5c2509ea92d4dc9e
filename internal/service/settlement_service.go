package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/models"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
)

var (
	ErrAgentNotFound            = errors.New("agent not found")
	ErrInsufficientAgentBalance = errors.New("insufficient agent balance")
	ErrUnauthorizedAgent        = errors.New("withdrawal is assigned to a different agent")
	ErrNotPending               = errors.New("transaction is not pending agent action")
	ErrInvalidAmount            = errors.New("amount must be positive")
)

// SettlementService orchestrates agent-to-user deposits and user-to-agent
// withdrawal acceptance as paired atomic balance mutations plus audit
// records. Everything money-related runs inside one db.Transaction: either
// both wallets move and both records land, or nothing does.
type SettlementService struct {
	db     *gorm.DB
	wallet *repository.WalletRepository
	txRepo *repository.TransactionRepository
	users  *repository.UserRepository
	audit  *AuditService
	events Notifier
}

// Notifier pushes wallet events to connected clients. Best effort only.
type Notifier interface {
	NotifyUser(userID uint, event string, payload any)
}

func NewSettlementService(
	db *gorm.DB,
	wallet *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	users *repository.UserRepository,
	audit *AuditService,
	events Notifier,
) *SettlementService {
	return &SettlementService{
		db:     db,
		wallet: wallet,
		txRepo: txRepo,
		users:  users,
		audit:  audit,
		events: events,
	}
}

// ProcessDeposit settles an agent selling balance to a user: debit the
// agent's agent balance (guarded), credit the user's main balance, and write
// the two cross-referenced transaction records. Returns the user-side record.
func (s *SettlementService) ProcessDeposit(ctx context.Context, agentID, userID uint, amountCents int64) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	pairRef := uuid.New().String()
	var userTx *models.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallets := s.wallet.WithTx(tx)
		txs := s.txRepo.WithTx(tx)

		if err := wallets.Debit(agentID, domain.BalanceAgent, amountCents); err != nil {
			if errors.Is(err, repository.ErrWalletNotFound) {
				return ErrAgentNotFound
			}
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return ErrInsufficientAgentBalance
			}
			return err
		}
		if err := wallets.Credit(userID, domain.BalanceMain, amountCents); err != nil {
			return err
		}

		aID := agentID
		userTx = &models.Transaction{
			UserID:      userID,
			Type:        domain.TxTypeDeposit,
			AmountCents: amountCents,
			Balance:     domain.BalanceMain,
			Status:      domain.TxStatusCompleted,
			AgentID:     &aID,
			Reference:   pairRef,
			Description: fmt.Sprintf("Deposit via agent %d", agentID),
		}
		if err := txs.Create(userTx); err != nil {
			return err
		}
		agentTx := &models.Transaction{
			UserID:        agentID,
			Type:          domain.TxTypeAgentSell,
			AmountCents:   -amountCents,
			Balance:       domain.BalanceAgent,
			Status:        domain.TxStatusCompleted,
			CounterpartID: &userTx.ID,
			Reference:     pairRef,
			Description:   fmt.Sprintf("Balance sold to user %d", userID),
		}
		if err := txs.Create(agentTx); err != nil {
			return err
		}
		return txs.SetCounterpart(userTx.ID, agentTx.ID)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(&agentID, "agent.deposit", "transaction", fmt.Sprint(userTx.ID),
		fmt.Sprintf(`{"user_id":%d,"amount_cents":%d}`, userID, amountCents))
	if s.events != nil {
		s.events.NotifyUser(userID, "wallet:credit", map[string]any{
			"balance":      domain.BalanceMain,
			"amount_cents": amountCents,
		})
	}
	return userTx, nil
}

// RequestWithdrawal debits the user's main balance up front and parks a
// withdraw transaction in pending_agent_action for the chosen agent.
func (s *SettlementService) RequestWithdrawal(ctx context.Context, userID, agentID uint, amountCents int64) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	agent, err := s.users.GetByID(agentID)
	if err != nil || agent.Role != domain.RoleAgent {
		return nil, ErrAgentNotFound
	}

	var wtx *models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.wallet.WithTx(tx).Debit(userID, domain.BalanceMain, amountCents); err != nil {
			return err
		}
		aID := agentID
		wtx = &models.Transaction{
			UserID:      userID,
			Type:        domain.TxTypeWithdraw,
			AmountCents: -amountCents,
			Balance:     domain.BalanceMain,
			Status:      domain.TxStatusPendingAgentAction,
			AgentID:     &aID,
			Reference:   "wd-" + uuid.New().String(),
			Description: fmt.Sprintf("Withdrawal via agent %d", agentID),
		}
		return s.txRepo.WithTx(tx).Create(wtx)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Log(&userID, "withdrawal.request", "transaction", fmt.Sprint(wtx.ID),
		fmt.Sprintf(`{"agent_id":%d,"amount_cents":%d}`, agentID, amountCents))
	return wtx, nil
}

// AcceptWithdrawal lets the assigned agent take over a pending withdrawal:
// credit the agent's agent balance by the absolute amount, then flip the
// status completed conditioned on it still being pending_agent_action. Two
// agents racing on the same transaction resolve to one winner; the loser
// gets ErrConcurrency and the whole transaction rolls back.
func (s *SettlementService) AcceptWithdrawal(ctx context.Context, agentID, transactionID uint) (*models.Transaction, error) {
	wtx, err := s.txRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if wtx.Status != domain.TxStatusPendingAgentAction {
		return nil, ErrNotPending
	}
	if wtx.AgentID == nil || *wtx.AgentID != agentID {
		return nil, ErrUnauthorizedAgent
	}
	amount := wtx.AmountCents
	if amount < 0 {
		amount = -amount
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.wallet.WithTx(tx).Credit(agentID, domain.BalanceAgent, amount); err != nil {
			return err
		}
		return s.txRepo.WithTx(tx).FlipStatus(transactionID,
			domain.TxStatusPendingAgentAction, domain.TxStatusCompleted)
	})
	if err != nil {
		return nil, err
	}

	wtx.Status = domain.TxStatusCompleted
	s.audit.Log(&agentID, "withdrawal.accept", "transaction", fmt.Sprint(transactionID), "")
	if s.events != nil {
		s.events.NotifyUser(wtx.UserID, "withdrawal:completed", map[string]any{
			"transaction_id": transactionID,
			"amount_cents":   amount,
		})
	}
	return wtx, nil
}

// RejectWithdrawal flips a pending withdrawal to failed and refunds the
// user's main balance. Same CAS guard as accept.
func (s *SettlementService) RejectWithdrawal(ctx context.Context, agentID, transactionID uint) (*models.Transaction, error) {
	wtx, err := s.txRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if wtx.Status != domain.TxStatusPendingAgentAction {
		return nil, ErrNotPending
	}
	if wtx.AgentID == nil || *wtx.AgentID != agentID {
		return nil, ErrUnauthorizedAgent
	}
	amount := wtx.AmountCents
	if amount < 0 {
		amount = -amount
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.txRepo.WithTx(tx).FlipStatus(transactionID,
			domain.TxStatusPendingAgentAction, domain.TxStatusFailed); err != nil {
			return err
		}
		if err := s.wallet.WithTx(tx).Credit(wtx.UserID, domain.BalanceMain, amount); err != nil {
			return err
		}
		refund := &models.Transaction{
			UserID:        wtx.UserID,
			Type:          domain.TxTypeRefund,
			AmountCents:   amount,
			Balance:       domain.BalanceMain,
			Status:        domain.TxStatusCompleted,
			CounterpartID: &wtx.ID,
			Description:   "Withdrawal rejected by agent",
		}
		return s.txRepo.WithTx(tx).Create(refund)
	})
	if err != nil {
		return nil, err
	}

	wtx.Status = domain.TxStatusFailed
	log.Printf("[settlement] withdrawal %d rejected by agent %d", transactionID, agentID)
	if s.events != nil {
		s.events.NotifyUser(wtx.UserID, "withdrawal:rejected", map[string]any{
			"transaction_id": transactionID,
			"amount_cents":   amount,
		})
	}
	return wtx, nil
}
