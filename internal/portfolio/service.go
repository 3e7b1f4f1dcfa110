package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"artfolio/internal/cache"
	"artfolio/internal/common"
	"artfolio/internal/dbmysql"
)

// BlockSource is the read-only view of the block store the state machine
// needs: submission requires content to exist, and public reads carry the
// block list.
type BlockSource interface {
	CountByPortfolio(ctx context.Context, portfolioID uint64) (int64, error)
	ByPortfolio(ctx context.Context, portfolioID uint64) ([]*dbmysql.ContentBlock, error)
}

// Notifier is the slice of the fan-out the state machine triggers. Failures
// are the fan-out's problem; transition methods never roll back on them.
type Notifier interface {
	SendContentApproved(ctx context.Context, ownerID, portfolioID uint64, title string)
	SendContentRejected(ctx context.Context, ownerID, portfolioID uint64, title, note string)
}

type PortfolioService interface {
	Create(ctx context.Context, actor common.Actor, title, slug string) (*dbmysql.Portfolio, error)
	Get(ctx context.Context, actor common.Actor, portfolioID uint64) (*View, error)
	ListMine(ctx context.Context, actor common.Actor) ([]*dbmysql.Portfolio, error)

	Submit(ctx context.Context, actor common.Actor, portfolioID uint64) (*dbmysql.Portfolio, error)
	Approve(ctx context.Context, actor common.Actor, portfolioID uint64) (*dbmysql.Portfolio, error)
	Reject(ctx context.Context, actor common.Actor, portfolioID uint64, note string) (*dbmysql.Portfolio, error)
	Archive(ctx context.Context, actor common.Actor, portfolioID uint64) (*dbmysql.Portfolio, error)

	// Queue is the admin moderation view over pending_review portfolios.
	Queue(ctx context.Context, actor common.Actor, limit, offset int) ([]*dbmysql.Portfolio, error)

	// CheckEditable is the block store's pre-mutation capability check.
	CheckEditable(ctx context.Context, actor common.Actor, portfolioID uint64) error

	// SetThumbnail binds a confirmed upload's object URL to the portfolio.
	SetThumbnail(ctx context.Context, portfolioID uint64, url string) error
}

// View is the authoritative read shape: the portfolio plus its ordered blocks.
type View struct {
	Portfolio *dbmysql.Portfolio      `json:"portfolio"`
	Blocks    []*dbmysql.ContentBlock `json:"blocks"`
}

type portfolioService struct {
	repo     PortfolioRepository
	blocks   BlockSource
	cache    *cache.Cache
	notifier Notifier
}

func NewPortfolioService(repo PortfolioRepository, blocks BlockSource, c *cache.Cache, notifier Notifier) PortfolioService {
	return &portfolioService{repo: repo, blocks: blocks, cache: c, notifier: notifier}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func (s *portfolioService) Create(ctx context.Context, actor common.Actor, title, slug string) (*dbmysql.Portfolio, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, common.NewValidation("title is required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, common.NewValidation("slug %q must be lowercase letters, digits and hyphens", slug)
	}

	if _, err := s.repo.BySlug(ctx, actor.UserID, slug); err == nil {
		return nil, common.NewConflict("slug %q already in use", slug)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("slug lookup failed: %w", err)
	}

	pf := &dbmysql.Portfolio{
		AuthorID: actor.UserID,
		Title:    title,
		Slug:     slug,
		Status:   dbmysql.StatusDraft,
	}
	if err := s.repo.Create(ctx, pf); err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}
	return pf, nil
}

func (s *portfolioService) Get(ctx context.Context, actor common.Actor, portfolioID uint64) (*View, error) {
	// Only published views are ever cached, so a hit is safe for anyone.
	if data, ok := s.cache.GetPortfolio(ctx, portfolioID); ok {
		var view View
		if err := json.Unmarshal(data, &view); err == nil {
			return &view, nil
		}
	}

	pf, err := s.loadPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	if pf.Status != dbmysql.StatusPublished && actor.UserID != pf.AuthorID && !actor.Admin {
		return nil, common.NewNotFound("portfolio %d not found", portfolioID)
	}

	blocks, err := s.blocks.ByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocks: %w", err)
	}

	view := &View{Portfolio: pf, Blocks: blocks}

	if pf.Status == dbmysql.StatusPublished {
		if data, err := json.Marshal(view); err == nil {
			if err := s.cache.SetPortfolio(ctx, portfolioID, data); err != nil {
				log.Printf("portfolio cache write failed: %v", err)
			}
		}
	}

	return view, nil
}

func (s *portfolioService) ListMine(ctx context.Context, actor common.Actor) ([]*dbmysql.Portfolio, error) {
	return s.repo.ByAuthor(ctx, actor.UserID)
}

func (s *portfolioService) Submit(ctx context.Context, actor common.Actor, portfolioID uint64) (*dbmysql.Portfolio, error) {
	pf, err := s.loadPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(actor, pf, dbmysql.StatusPendingReview); err != nil {
		return nil, err
	}

	count, err := s.blocks.CountByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to count blocks: %w", err)
	}
	if count == 0 {
		return nil, common.NewValidation("portfolio has no content to review")
	}

	pf.Status = dbmysql.StatusPendingReview
	pf.ReviewNote = ""
	if err := s.repo.Save(ctx, pf); err != nil {
		return nil, fmt.Errorf("failed to submit portfolio: %w", err)
	}

	s.invalidate(ctx, portfolioID)
	return pf, nil
}

func (s *portfolioService) Approve(ctx context.Context, actor common.Actor, portfolioID uint64) (*dbmysql.Portfolio, error) {
	pf, err := s.loadPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(actor, pf, dbmysql.StatusPublished); err != nil {
		return nil, err
	}

	now := time.Now()
	pf.Status = dbmysql.StatusPublished
	pf.PublishedAt = &now
	if err := s.repo.Save(ctx, pf); err != nil {
		return nil, fmt.Errorf("failed to publish portfolio: %w", err)
	}

	s.invalidate(ctx, portfolioID)
	s.notifier.SendContentApproved(ctx, pf.AuthorID, pf.PortfolioID, pf.Title)
	return pf, nil
}

func (s *portfolioService) Reject(ctx context.Context, actor common.Actor, portfolioID uint64, note string) (*dbmysql.Portfolio, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, common.NewValidation("a review note is required to reject")
	}

	pf, err := s.loadPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(actor, pf, dbmysql.StatusRejected); err != nil {
		return nil, err
	}

	pf.Status = dbmysql.StatusRejected
	pf.ReviewNote = note
	if err := s.repo.Save(ctx, pf); err != nil {
		return nil, fmt.Errorf("failed to reject portfolio: %w", err)
	}

	s.invalidate(ctx, portfolioID)
	s.notifier.SendContentRejected(ctx, pf.AuthorID, pf.PortfolioID, pf.Title, note)
	return pf, nil
}

func (s *portfolioService) Archive(ctx context.Context, actor common.Actor, portfolioID uint64) (*dbmysql.Portfolio, error) {
	pf, err := s.loadPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(actor, pf, dbmysql.StatusArchived); err != nil {
		return nil, err
	}

	pf.Status = dbmysql.StatusArchived
	if err := s.repo.Save(ctx, pf); err != nil {
		return nil, fmt.Errorf("failed to archive portfolio: %w", err)
	}

	s.invalidate(ctx, portfolioID)
	return pf, nil
}

func (s *portfolioService) Queue(ctx context.Context, actor common.Actor, limit, offset int) ([]*dbmysql.Portfolio, error) {
	if !actor.Admin {
		return nil, common.NewForbidden("moderation queue is admin-only")
	}
	return s.repo.PendingReview(ctx, limit, offset)
}

func (s *portfolioService) CheckEditable(ctx context.Context, actor common.Actor, portfolioID uint64) error {
	pf, err := s.loadPortfolio(ctx, portfolioID)
	if err != nil {
		return err
	}

	if actor.UserID != pf.AuthorID {
		return common.NewForbidden("portfolio %d is not editable by actor %d", portfolioID, actor.UserID)
	}
	if !editableStatus(pf.Status) {
		return common.NewForbidden("portfolio %d is locked while %s", portfolioID, pf.Status)
	}
	return nil
}

func (s *portfolioService) SetThumbnail(ctx context.Context, portfolioID uint64, url string) error {
	if err := s.repo.SetThumbnail(ctx, portfolioID, url); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NewNotFound("portfolio %d not found", portfolioID)
		}
		return fmt.Errorf("failed to set thumbnail: %w", err)
	}
	s.invalidate(ctx, portfolioID)
	return nil
}

func (s *portfolioService) loadPortfolio(ctx context.Context, portfolioID uint64) (*dbmysql.Portfolio, error) {
	pf, err := s.repo.ByID(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFound("portfolio %d not found", portfolioID)
		}
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	return pf, nil
}

func (s *portfolioService) invalidate(ctx context.Context, portfolioID uint64) {
	if err := s.cache.InvalidatePortfolio(ctx, portfolioID); err != nil {
		log.Printf("portfolio cache invalidation failed: %v", err)
	}
}
