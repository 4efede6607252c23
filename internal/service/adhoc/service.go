package adhoc

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/adhoc"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

type AdHocServiceImpl struct {
	itemRepo adhoc.ItemRepository
}

func NewAdHocService(itemRepo adhoc.ItemRepository) adhoc.AdHocService {
	return &AdHocServiceImpl{itemRepo: itemRepo}
}

func (s *AdHocServiceImpl) CreateItem(ctx context.Context, req adhoc.CreateItemRequest) (adhoc.Item, error) {
	start, end, err := req.Validate()
	if err != nil {
		return adhoc.Item{}, err
	}

	created, err := s.itemRepo.Create(ctx, adhoc.Item{
		Type:          adhoc.ItemType(req.Type),
		EmployeeID:    req.EmployeeID,
		CompanyID:     req.CompanyID,
		Month:         req.Month,
		Year:          req.Year,
		Description:   req.Description,
		ClaimedAmount: req.ClaimedAmount,
		PeriodStart:   start,
		PeriodEnd:     end,
		Status:        adhoc.StatusDraft,
	})
	if err != nil {
		return adhoc.Item{}, fmt.Errorf("failed to create ad hoc item: %w", err)
	}
	return created, nil
}

func (s *AdHocServiceImpl) GetItem(ctx context.Context, id string) (adhoc.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return adhoc.Item{}, fmt.Errorf("failed to get ad hoc item: %w", err)
	}
	return item, nil
}

func (s *AdHocServiceImpl) Submit(ctx context.Context, id string) (adhoc.Item, error) {
	return s.transition(ctx, id, adhoc.StatusSubmitted, nil, adhoc.StatusDraft)
}

func (s *AdHocServiceImpl) Approve(ctx context.Context, id string, req adhoc.ApproveItemRequest) (adhoc.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return adhoc.Item{}, err
	}
	if err := checkActionable(item, adhoc.StatusDraft, adhoc.StatusSubmitted); err != nil {
		return adhoc.Item{}, err
	}

	var errs validator.ValidationErrors
	if !req.ApprovedAmount.IsPositive() {
		errs.Add("approved_amount", "must be positive")
	}
	if validator.IsEmpty(req.ApprovedBy) {
		errs.Add("approved_by", "is required")
	}
	if err := errs.Err(); err != nil {
		return adhoc.Item{}, err
	}
	if req.ApprovedAmount.GreaterThan(item.ClaimedAmount) {
		return adhoc.Item{}, adhoc.ErrApprovedExceedsClaim
	}

	now := time.Now()
	if err := s.itemRepo.Approve(ctx, id, item.Status, req.ApprovedAmount, req.ApprovedBy, now); err != nil {
		return adhoc.Item{}, fmt.Errorf("failed to approve ad hoc item: %w", err)
	}

	amount := req.ApprovedAmount
	item.ApprovedAmount = &amount
	item.ApprovedBy = &req.ApprovedBy
	item.ApprovedAt = &now
	item.Status = adhoc.StatusApproved
	return item, nil
}

func (s *AdHocServiceImpl) Reject(ctx context.Context, id string, req adhoc.RejectItemRequest) (adhoc.Item, error) {
	var reason *string
	if !validator.IsEmpty(req.Reason) {
		reason = &req.Reason
	}
	return s.transition(ctx, id, adhoc.StatusRejected, reason, adhoc.StatusDraft, adhoc.StatusSubmitted)
}

func (s *AdHocServiceImpl) Cancel(ctx context.Context, id string) (adhoc.Item, error) {
	return s.transition(ctx, id, adhoc.StatusCancelled, nil, adhoc.StatusDraft, adhoc.StatusSubmitted, adhoc.StatusApproved)
}

func (s *AdHocServiceImpl) transition(ctx context.Context, id string, to adhoc.Status, reason *string, allowedFrom ...adhoc.Status) (adhoc.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return adhoc.Item{}, err
	}
	if err := checkActionable(item, allowedFrom...); err != nil {
		return adhoc.Item{}, err
	}

	if err := s.itemRepo.UpdateStatus(ctx, id, item.Status, to, reason); err != nil {
		return adhoc.Item{}, fmt.Errorf("failed to update ad hoc item status: %w", err)
	}
	item.Status = to
	if reason != nil {
		item.RejectedReason = reason
	}
	return item, nil
}

func checkActionable(item adhoc.Item, allowedFrom ...adhoc.Status) error {
	if item.Status.Final() {
		if item.Status == adhoc.StatusProcessed {
			return adhoc.ErrItemAlreadyProcessed
		}
		return adhoc.ErrInvalidTransition
	}
	for _, from := range allowedFrom {
		if item.Status == from {
			return nil
		}
	}
	return adhoc.ErrInvalidTransition
}

func (s *AdHocServiceImpl) GetApprovedTotals(ctx context.Context, employeeID, companyID string, month, year int) (adhoc.Totals, error) {
	items, err := s.itemRepo.ListApproved(ctx, employeeID, companyID, month, year)
	if err != nil {
		return adhoc.Totals{}, fmt.Errorf("failed to list approved ad hoc items: %w", err)
	}

	totals := adhoc.NewTotals()
	for _, item := range items {
		totals.Add(item)
	}
	return totals, nil
}

func (s *AdHocServiceImpl) MarkProcessed(ctx context.Context, ids []string, payrollRunID, payslipID string) error {
	if len(ids) == 0 {
		return nil
	}

	affected, err := s.itemRepo.MarkProcessed(ctx, ids, payrollRunID, payslipID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark ad hoc items processed: %w", err)
	}
	if affected != int64(len(ids)) {
		return adhoc.ErrItemAlreadyProcessed
	}
	return nil
}
