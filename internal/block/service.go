package block

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"artfolio/internal/common"
	"artfolio/internal/dbmysql"
)

// EditGate is the state machine's pre-mutation capability check: it answers
// whether actor may edit the given portfolio's content right now.
type EditGate interface {
	CheckEditable(ctx context.Context, actor common.Actor, portfolioID uint64) error
}

type BlockService interface {
	List(ctx context.Context, actor common.Actor, portfolioID uint64) ([]*dbmysql.ContentBlock, error)
	Add(ctx context.Context, actor common.Actor, portfolioID uint64, kind string, payload map[string]interface{}) ([]*dbmysql.ContentBlock, error)
	Update(ctx context.Context, actor common.Actor, portfolioID, blockID uint64, partial map[string]interface{}) ([]*dbmysql.ContentBlock, error)
	Reorder(ctx context.Context, actor common.Actor, portfolioID uint64, blockIDs []uint64) ([]*dbmysql.ContentBlock, error)
	Remove(ctx context.Context, actor common.Actor, portfolioID, blockID uint64) ([]*dbmysql.ContentBlock, error)

	// BindImageURL writes a confirmed upload's object URL into an image
	// block. Authorization already happened when the upload session was
	// issued, so there is no actor here.
	BindImageURL(ctx context.Context, portfolioID, blockID uint64, url string) error
}

type blockService struct {
	repo BlockRepository
	gate EditGate
}

func NewBlockService(repo BlockRepository, gate EditGate) BlockService {
	return &blockService{repo: repo, gate: gate}
}

func (s *blockService) List(ctx context.Context, actor common.Actor, portfolioID uint64) ([]*dbmysql.ContentBlock, error) {
	return s.repo.ByPortfolio(ctx, portfolioID)
}

func (s *blockService) Add(ctx context.Context, actor common.Actor, portfolioID uint64, kind string, payload map[string]interface{}) ([]*dbmysql.ContentBlock, error) {
	k := Kind(kind)
	if !k.IsValid() {
		return nil, common.NewValidation("unknown block kind %q", kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("payload marshal failed: %w", err)
	}
	if _, err := DecodePayload(k, raw); err != nil {
		return nil, err
	}

	if err := s.gate.CheckEditable(ctx, actor, portfolioID); err != nil {
		return nil, err
	}

	b := &dbmysql.ContentBlock{
		PortfolioID: portfolioID,
		Kind:        k.String(),
		Payload:     datatypes.JSON(raw),
	}
	if err := s.repo.Append(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to append block: %w", err)
	}

	return s.repo.ByPortfolio(ctx, portfolioID)
}

func (s *blockService) Update(ctx context.Context, actor common.Actor, portfolioID, blockID uint64, partial map[string]interface{}) ([]*dbmysql.ContentBlock, error) {
	if len(partial) == 0 {
		return nil, common.NewValidation("empty payload update")
	}

	if err := s.gate.CheckEditable(ctx, actor, portfolioID); err != nil {
		return nil, err
	}

	existing, err := s.repo.ByID(ctx, portfolioID, blockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFound("block %d not found in portfolio %d", blockID, portfolioID)
		}
		return nil, fmt.Errorf("failed to load block: %w", err)
	}

	merged, err := MergePayload(Kind(existing.Kind), existing.Payload, partial)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePayload(ctx, portfolioID, blockID, merged); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFound("block %d not found in portfolio %d", blockID, portfolioID)
		}
		return nil, fmt.Errorf("failed to update block: %w", err)
	}

	return s.repo.ByPortfolio(ctx, portfolioID)
}

// Reorder accepts the full permutation of the portfolio's block ids. A stale
// or partial id set is a conflict; the caller re-fetches and retries.
func (s *blockService) Reorder(ctx context.Context, actor common.Actor, portfolioID uint64, blockIDs []uint64) ([]*dbmysql.ContentBlock, error) {
	if err := s.gate.CheckEditable(ctx, actor, portfolioID); err != nil {
		return nil, err
	}

	current, err := s.repo.ByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocks: %w", err)
	}

	if len(blockIDs) != len(current) {
		return nil, common.NewConflict("reorder lists %d blocks, portfolio has %d", len(blockIDs), len(current))
	}

	known := make(map[uint64]bool, len(current))
	for _, b := range current {
		known[b.BlockID] = true
	}

	positions := make(map[uint64]int, len(blockIDs))
	for i, id := range blockIDs {
		if !known[id] {
			return nil, common.NewConflict("block %d is not part of portfolio %d", id, portfolioID)
		}
		if _, dup := positions[id]; dup {
			return nil, common.NewConflict("block %d listed twice", id)
		}
		positions[id] = i
	}

	if err := s.repo.Reorder(ctx, portfolioID, positions); err != nil {
		return nil, fmt.Errorf("failed to reorder blocks: %w", err)
	}

	return s.repo.ByPortfolio(ctx, portfolioID)
}

func (s *blockService) Remove(ctx context.Context, actor common.Actor, portfolioID, blockID uint64) ([]*dbmysql.ContentBlock, error) {
	if err := s.gate.CheckEditable(ctx, actor, portfolioID); err != nil {
		return nil, err
	}

	if err := s.repo.Remove(ctx, portfolioID, blockID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFound("block %d not found in portfolio %d", blockID, portfolioID)
		}
		return nil, fmt.Errorf("failed to remove block: %w", err)
	}

	return s.repo.ByPortfolio(ctx, portfolioID)
}

func (s *blockService) BindImageURL(ctx context.Context, portfolioID, blockID uint64, url string) error {
	existing, err := s.repo.ByID(ctx, portfolioID, blockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NewNotFound("block %d not found in portfolio %d", blockID, portfolioID)
		}
		return fmt.Errorf("failed to load block: %w", err)
	}

	if Kind(existing.Kind) != KindImage {
		return common.NewValidation("block %d is a %s block, not an image", blockID, existing.Kind)
	}

	merged, err := MergePayload(KindImage, existing.Payload, map[string]interface{}{"url": url})
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePayload(ctx, portfolioID, blockID, merged); err != nil {
		return fmt.Errorf("failed to bind image url: %w", err)
	}
	return nil
}
