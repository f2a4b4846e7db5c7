package service

import (
	"context"

	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/contractor/domain"
	"github.com/smallbiznis/branchops/internal/contractor/repository"
	"github.com/smallbiznis/branchops/internal/docstore"
	"github.com/smallbiznis/branchops/internal/events"
	obslogger "github.com/smallbiznis/branchops/internal/observability/logger"
	"go.uber.org/zap"
)

// removeFromBranch deletes one copy. When it is the contractor's last copy
// the same write releases its admins and recreates the pending record.
func (s *Service) removeFromBranch(ctx context.Context, branchID, contractorID, actor string) error {
	log := obslogger.WithContractor(s.log, contractorID, branchID)

	c, err := s.repo.Get(ctx, branchID, contractorID)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}

	branchIDs, err := s.repo.BranchIDs(ctx, contractorID)
	if err != nil {
		return err
	}
	remaining := make([]string, 0, len(branchIDs))
	for _, id := range branchIDs {
		if id != branchID {
			remaining = append(remaining, id)
		}
	}
	last := len(remaining) == 0

	copyPath, _ := repository.CopyPath(branchID, contractorID)
	indexPath, _ := repository.MembershipPath(contractorID, branchID)
	updates := docstore.Updates{
		copyPath:  nil,
		indexPath: nil,
	}
	if last {
		if err := s.putDemotion(ctx, updates, *c, actor); err != nil {
			return err
		}
	} else if _, err := s.putRelink(ctx, updates, *c, remaining); err != nil {
		return err
	}
	err = s.repo.Apply(ctx, updates)
	s.metrics.RecordMembershipWrite(ctx, "remove", err)
	if err != nil {
		return err
	}

	if last {
		log.Info("last branch copy removed, contractor pending")
		s.metrics.RecordTransition(ctx, "assigned", "pending")
		s.publish(ctx, events.Event{Type: events.TypeContractorPending, ContractorID: contractorID, BranchID: branchID, Actor: actor})
		return nil
	}

	log.Info("branch copy removed")
	s.publish(ctx, events.Event{Type: events.TypeBranchRemoved, ContractorID: contractorID, BranchID: branchID, Actor: actor})

	// A concurrent removal may have taken the other copies meanwhile.
	return s.settle(ctx, *c, actor)
}

// settle makes a contractor left with no copies pending. While copies exist
// it only moves admin links off branches that no longer hold one. It is safe
// to repeat.
func (s *Service) settle(ctx context.Context, c domain.Contractor, actor string) error {
	branchIDs, err := s.repo.BranchIDs(ctx, c.ID)
	if err != nil {
		return err
	}
	if len(branchIDs) > 0 {
		updates := docstore.Updates{}
		moved, err := s.putRelink(ctx, updates, c, branchIDs)
		if err != nil || !moved {
			return err
		}
		err = s.repo.Apply(ctx, updates)
		s.metrics.RecordMembershipWrite(ctx, "relink", err)
		return err
	}

	updates := docstore.Updates{}
	if err := s.putDemotion(ctx, updates, c, actor); err != nil {
		return err
	}
	pending, err := s.repo.GetPending(ctx, c.ID)
	if err != nil {
		return err
	}
	if pending != nil {
		path, _ := repository.PendingPath(c.ID)
		delete(updates, path)
	}
	err = s.repo.Apply(ctx, updates)
	s.metrics.RecordMembershipWrite(ctx, "settle", err)
	if err != nil {
		return err
	}
	s.log.Info("contractor settled as pending", zap.String("contractor_id", c.ID))
	if pending == nil {
		s.metrics.RecordTransition(ctx, "assigned", "pending")
		s.publish(ctx, events.Event{Type: events.TypeContractorPending, ContractorID: c.ID, Actor: actor})
	}
	return nil
}

// putDemotion adds the admin release and the pending record synthesized
// from the removed copy.
func (s *Service) putDemotion(ctx context.Context, updates docstore.Updates, c domain.Contractor, actor string) error {
	admins, err := s.releasableAdmins(ctx, c)
	if err != nil {
		return err
	}
	if err := s.putRelease(updates, admins); err != nil {
		return err
	}

	c.UpdatedAt = clock.Millis(s.clock.Now())
	if actor != "" {
		c.UpdatedBy = actor
	}
	doc, err := repository.Encode(c)
	if err != nil {
		return err
	}
	pendingPath, err := repository.PendingPath(c.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	updates[pendingPath] = doc
	return nil
}
