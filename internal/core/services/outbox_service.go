package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/dto"
	"github.com/strataops/strataledger/internal/obsmetrics"
)

const (
	maxListTasksLimit     = 200
	defaultListTasksLimit = 50
)

// chargeTaskPayload is the JSON body of charge.gl_post and charge.gl_writeoff
// tasks.
type chargeTaskPayload struct {
	AssociationID string `json:"associationID"`
	ChargeID      string `json:"chargeID"`
}

// paymentTaskPayload is the JSON body of payment.gl_post and
// payment.gl_reverse tasks.
type paymentTaskPayload struct {
	AssociationID string `json:"associationID"`
	PaymentID     string `json:"paymentID"`
}

// OutboxService queues secondary GL postings in the primary operation's
// transaction and dispatches them asynchronously. Each task is dispatched
// inside its own transaction with the row locked, so the posted entry and the
// SENT mark commit together and a crashed dispatcher re-delivers cleanly.
type OutboxService struct {
	BaseService
	outboxRepo  portsrepo.OutboxRepository
	chargeRepo  portsrepo.ChargeRepositoryWithTx
	paymentRepo portsrepo.PaymentRepositoryWithTx
	assocRepo   portsrepo.AssociationRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	journal     portssvc.JournalSvcFacade
	txManager   portsrepo.TransactionManager
}

// NewOutboxService creates a new OutboxService.
func NewOutboxService(
	outboxRepo portsrepo.OutboxRepository,
	chargeRepo portsrepo.ChargeRepositoryWithTx,
	paymentRepo portsrepo.PaymentRepositoryWithTx,
	assocRepo portsrepo.AssociationRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	journal portssvc.JournalSvcFacade,
	txManager portsrepo.TransactionManager,
) *OutboxService {
	return &OutboxService{
		outboxRepo:  outboxRepo,
		chargeRepo:  chargeRepo,
		paymentRepo: paymentRepo,
		assocRepo:   assocRepo,
		accountRepo: accountRepo,
		journal:     journal,
		txManager:   txManager,
	}
}

// Ensure OutboxService implements the portssvc.OutboxSvcFacade interface
var _ portssvc.OutboxSvcFacade = (*OutboxService)(nil)

// Enqueue inserts a PENDING task. Called inside the primary operation's
// transaction so the task commits or rolls back with it.
func (s *OutboxService) Enqueue(ctx context.Context, associationID string, taskType domain.OutboxTaskType, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := domain.OutboxTask{
		TaskID:        uuid.NewString(),
		AssociationID: associationID,
		TaskType:      taskType,
		Payload:       body,
		Status:        domain.OutboxPending,
		CreatedAt:     time.Now(),
	}
	if err := s.outboxRepo.EnqueueTask(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", taskType, err)
	}
	return nil
}

// ProcessPending executes up to batchSize pending tasks and reports how many
// were attempted. A failing task is marked FAILED and the batch continues.
func (s *OutboxService) ProcessPending(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1
	}

	attempted := 0
	for attempted < batchSize {
		ok, err := s.processNext(ctx)
		if err != nil {
			return attempted, err
		}
		if !ok {
			break
		}
		attempted++
	}
	return attempted, nil
}

// processNext claims one pending task and dispatches it. The claim, the GL
// writes and the SENT mark share a transaction; a dispatch error rolls the
// whole attempt back before the failure is recorded.
func (s *OutboxService) processNext(ctx context.Context) (bool, error) {
	var claimed *domain.OutboxTask

	err := s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		tasks, err := s.outboxRepo.ListPendingTasks(ctx, 1)
		if err != nil {
			return fmt.Errorf("failed to claim pending task: %w", err)
		}
		if len(tasks) == 0 {
			return nil
		}
		task := tasks[0]
		claimed = &task

		if err := s.dispatch(ctx, task); err != nil {
			return err
		}
		return s.outboxRepo.MarkTaskSent(ctx, task.TaskID, time.Now())
	})

	if claimed == nil {
		return false, err
	}

	obsmetrics.ObserveOutboxTaskAge(time.Since(claimed.CreatedAt).Seconds())

	if err != nil {
		obsmetrics.IncOutboxDispatch(string(claimed.TaskType), obsmetrics.OutcomeFailed)
		s.LogError(ctx, err, "Outbox task failed",
			slog.String("task_id", claimed.TaskID),
			slog.String("task_type", string(claimed.TaskType)),
			slog.Int("attempts", claimed.Attempts+1))
		if markErr := s.outboxRepo.MarkTaskFailed(ctx, claimed.TaskID, err.Error()); markErr != nil {
			s.LogError(ctx, markErr, "Failed to mark outbox task failed", slog.String("task_id", claimed.TaskID))
		}
		return true, nil
	}

	obsmetrics.IncOutboxDispatch(string(claimed.TaskType), obsmetrics.OutcomeSent)
	return true, nil
}

func (s *OutboxService) dispatch(ctx context.Context, task domain.OutboxTask) error {
	switch task.TaskType {
	case domain.TaskChargeGLPost:
		return s.postChargeToGL(ctx, task)
	case domain.TaskChargeGLWriteoff:
		return s.writeOffChargeInGL(ctx, task)
	case domain.TaskPaymentGLPost:
		return s.postPaymentToGL(ctx, task)
	case domain.TaskPaymentGLReverse:
		return s.reversePaymentInGL(ctx, task)
	default:
		return fmt.Errorf("unknown outbox task type %q", task.TaskType)
	}
}

// postChargeToGL posts debit Assessments Receivable / credit the assessment
// type's income account for the charge's full amount, then links the entry to
// the charge. A charge that already carries a GL entry is skipped, so a task
// re-delivered after a crash cannot double-post.
func (s *OutboxService) postChargeToGL(ctx context.Context, task domain.OutboxTask) error {
	var payload chargeTaskPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal charge task payload: %w", err)
	}

	charge, err := s.chargeRepo.FindChargeByID(ctx, payload.AssociationID, payload.ChargeID)
	if err != nil {
		return fmt.Errorf("failed to load charge %s: %w", payload.ChargeID, err)
	}
	if charge.GLEntryID != nil {
		s.LogInfo(ctx, "Charge already posted to GL, skipping", slog.String("charge_id", charge.ChargeID))
		return nil
	}

	assessmentType, err := s.assocRepo.FindAssessmentTypeByID(ctx, charge.AssociationID, charge.AssessmentTypeID)
	if err != nil {
		return fmt.Errorf("failed to load assessment type %s: %w", charge.AssessmentTypeID, err)
	}

	receivable, err := s.accountRepo.FindAccountByNumber(ctx, charge.AssociationID, acctNumAssessmentsReceivable)
	if err != nil {
		return fmt.Errorf("failed to load receivable account: %w", err)
	}
	income, err := s.accountRepo.FindAccountByNumber(ctx, charge.AssociationID, assessmentType.IncomeAccountNumber)
	if err != nil {
		return fmt.Errorf("failed to load income account %s: %w", assessmentType.IncomeAccountNumber, err)
	}

	entry, err := s.journal.PostSourcedEntry(ctx, charge.AssociationID, dto.CreateEntryRequest{
		EntryDate:   charge.DueDate,
		Description: fmt.Sprintf("Charge billed: %s", charge.Description),
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: receivable.AccountID, Debit: charge.TotalAmount},
			{AccountID: income.AccountID, Credit: charge.TotalAmount},
		},
	}, domain.SourceCharge, charge.ChargeID, charge.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to post charge entry: %w", err)
	}

	return s.chargeRepo.SetChargeGLEntry(ctx, charge.ChargeID, entry.EntryID, charge.CreatedBy, time.Now())
}

// writeOffChargeInGL posts debit Bad Debt Expense / credit Assessments
// Receivable for the balance left uncollectible. The charge keeps its
// original billing entry link; task transactionality covers re-delivery.
func (s *OutboxService) writeOffChargeInGL(ctx context.Context, task domain.OutboxTask) error {
	var payload chargeTaskPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal charge task payload: %w", err)
	}

	charge, err := s.chargeRepo.FindChargeByID(ctx, payload.AssociationID, payload.ChargeID)
	if err != nil {
		return fmt.Errorf("failed to load charge %s: %w", payload.ChargeID, err)
	}
	if !charge.BalanceDue.IsPositive() {
		s.LogInfo(ctx, "Charge has no balance to write off, skipping", slog.String("charge_id", charge.ChargeID))
		return nil
	}

	badDebt, err := s.accountRepo.FindAccountByNumber(ctx, charge.AssociationID, acctNumBadDebtExpense)
	if err != nil {
		return fmt.Errorf("failed to load bad debt account: %w", err)
	}
	receivable, err := s.accountRepo.FindAccountByNumber(ctx, charge.AssociationID, acctNumAssessmentsReceivable)
	if err != nil {
		return fmt.Errorf("failed to load receivable account: %w", err)
	}

	_, err = s.journal.PostSourcedEntry(ctx, charge.AssociationID, dto.CreateEntryRequest{
		EntryDate:   time.Now(),
		Description: fmt.Sprintf("Charge written off: %s", charge.Description),
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: badDebt.AccountID, Debit: charge.BalanceDue},
			{AccountID: receivable.AccountID, Credit: charge.BalanceDue},
		},
	}, domain.SourceCharge, charge.ChargeID, charge.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to post write-off entry: %w", err)
	}
	return nil
}

// postPaymentToGL posts debit Operating Cash / credit Assessments Receivable
// for the payment's full amount and links the entry to the payment. Skips
// payments that already carry a GL entry.
func (s *OutboxService) postPaymentToGL(ctx context.Context, task domain.OutboxTask) error {
	var payload paymentTaskPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payment task payload: %w", err)
	}

	payment, err := s.paymentRepo.FindPaymentByID(ctx, payload.AssociationID, payload.PaymentID)
	if err != nil {
		return fmt.Errorf("failed to load payment %s: %w", payload.PaymentID, err)
	}
	if payment.GLEntryID != nil {
		s.LogInfo(ctx, "Payment already posted to GL, skipping", slog.String("payment_id", payment.PaymentID))
		return nil
	}

	cash, err := s.accountRepo.FindAccountByNumber(ctx, payment.AssociationID, acctNumOperatingCash)
	if err != nil {
		return fmt.Errorf("failed to load cash account: %w", err)
	}
	receivable, err := s.accountRepo.FindAccountByNumber(ctx, payment.AssociationID, acctNumAssessmentsReceivable)
	if err != nil {
		return fmt.Errorf("failed to load receivable account: %w", err)
	}

	entry, err := s.journal.PostSourcedEntry(ctx, payment.AssociationID, dto.CreateEntryRequest{
		EntryDate:   payment.ReceivedDate,
		Description: fmt.Sprintf("Payment received: %s", paymentEntryMemo(payment)),
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: cash.AccountID, Debit: payment.Amount},
			{AccountID: receivable.AccountID, Credit: payment.Amount},
		},
	}, domain.SourcePayment, payment.PaymentID, payment.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to post payment entry: %w", err)
	}

	payment.GLEntryID = &entry.EntryID
	payment.LastUpdatedAt = time.Now()
	if err := s.paymentRepo.UpdatePaymentAmounts(ctx, *payment); err != nil {
		return fmt.Errorf("failed to link payment to entry: %w", err)
	}
	return nil
}

// reversePaymentInGL reverses the voided payment's GL entry. Payments that
// never reached the GL, or whose entry is already reversed, are skipped.
func (s *OutboxService) reversePaymentInGL(ctx context.Context, task domain.OutboxTask) error {
	var payload paymentTaskPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payment task payload: %w", err)
	}

	payment, err := s.paymentRepo.FindPaymentByID(ctx, payload.AssociationID, payload.PaymentID)
	if err != nil {
		return fmt.Errorf("failed to load payment %s: %w", payload.PaymentID, err)
	}
	if payment.GLEntryID == nil {
		s.LogInfo(ctx, "Payment has no GL entry to reverse, skipping", slog.String("payment_id", payment.PaymentID))
		return nil
	}

	entry, err := s.journal.GetEntryByID(ctx, payment.AssociationID, *payment.GLEntryID)
	if err != nil {
		return fmt.Errorf("failed to load payment entry %s: %w", *payment.GLEntryID, err)
	}
	if entry.Status == domain.EntryReversed {
		s.LogInfo(ctx, "Payment entry already reversed, skipping", slog.String("entry_id", entry.EntryID))
		return nil
	}

	_, err = s.journal.ReverseEntry(ctx, payment.AssociationID, entry.EntryID, dto.ReverseEntryRequest{
		Reason: "Payment voided",
	}, payment.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to reverse payment entry: %w", err)
	}
	return nil
}

func paymentEntryMemo(p *domain.Payment) string {
	if p.Reference != "" {
		return fmt.Sprintf("%s %s", p.Method, p.Reference)
	}
	return string(p.Method)
}

// RetryTask flips a FAILED task back to PENDING for the next dispatcher pass.
func (s *OutboxService) RetryTask(ctx context.Context, associationID string, taskID string) (*domain.OutboxTask, error) {
	if err := s.outboxRepo.RequeueTask(ctx, associationID, taskID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to requeue outbox task", slog.String("task_id", taskID))
		}
		return nil, err
	}

	task, err := s.outboxRepo.FindTaskByID(ctx, associationID, taskID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load requeued outbox task", slog.String("task_id", taskID))
		return nil, err
	}

	s.LogInfo(ctx, "Outbox task requeued", slog.String("task_id", taskID), slog.String("task_type", string(task.TaskType)))
	return task, nil
}

// ListTasks returns an association's tasks for the admin surface.
func (s *OutboxService) ListTasks(ctx context.Context, associationID string, status *domain.OutboxStatus, limit int) ([]domain.OutboxTask, error) {
	if limit <= 0 {
		limit = defaultListTasksLimit
	}
	if limit > maxListTasksLimit {
		limit = maxListTasksLimit
	}

	tasks, err := s.outboxRepo.ListTasks(ctx, associationID, status, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list outbox tasks")
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.OutboxTask{}
	}
	return tasks, nil
}
