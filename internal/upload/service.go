package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"artfolio/internal/common"
	"artfolio/internal/config"
	"artfolio/internal/dbmongo"
	"artfolio/internal/dbmysql"
)

// IntendedUse is the closed set of places a confirmed object can bind to.
type IntendedUse string

const (
	UseAvatar     IntendedUse = "avatar"
	UseBanner     IntendedUse = "banner"
	UseThumbnail  IntendedUse = "thumbnail"
	UseBlockImage IntendedUse = "block_image"
)

func (u IntendedUse) IsValid() bool {
	switch u {
	case UseAvatar, UseBanner, UseThumbnail, UseBlockImage:
		return true
	}
	return false
}

// ObjectStore is the network boundary the two-phase protocol exists for:
// writes to it cannot join the primary store's transactions.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, content io.Reader) (*dbmongo.ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, *dbmongo.ObjectInfo, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Binders are the confirm-time write targets. Authorization happened at
// presign, so these carry no actor.
type BlockBinder interface {
	BindImageURL(ctx context.Context, portfolioID, blockID uint64, url string) error
}

type ThumbnailBinder interface {
	SetThumbnail(ctx context.Context, portfolioID uint64, url string) error
}

type ProfileBinder interface {
	SetAvatarURL(ctx context.Context, userID uint64, url string) error
	SetBannerURL(ctx context.Context, userID uint64, url string) error
}

type PresignRequest struct {
	IntendedUse       string  `json:"intended_use"`
	Filename          string  `json:"filename"`
	ContentType       string  `json:"content_type"`
	Size              int64   `json:"size"`
	TargetPortfolioID *uint64 `json:"target_document_id,omitempty"`
	TargetBlockID     *uint64 `json:"target_block_id,omitempty"`
}

// Grant is the write permit returned from presign.
type Grant struct {
	SessionID string            `json:"session_id"`
	ObjectKey string            `json:"object_key"`
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ExpiresIn int               `json:"expires_in"`
}

type ConfirmResult struct {
	SessionID string `json:"session_id"`
	ObjectKey string `json:"object_key"`
	ObjectURL string `json:"object_url"`
}

type UploadService interface {
	Presign(ctx context.Context, actor common.Actor, req PresignRequest) (*Grant, error)
	Confirm(ctx context.Context, actor common.Actor, sessionID, objectKey string) (*ConfirmResult, error)

	// WriteObject performs the grant-authorized store write. Both the
	// direct PUT and the same-origin relay land here; the broker cannot
	// tell them apart and does not care.
	WriteObject(ctx context.Context, grantToken, objectKey string, body io.Reader) (*dbmongo.ObjectInfo, error)

	ReadObject(ctx context.Context, objectKey string) (io.ReadCloser, *dbmongo.ObjectInfo, error)
}

type uploadService struct {
	repo       UploadRepository
	store      ObjectStore
	blocks     BlockBinder
	thumbnails ThumbnailBinder
	profiles   ProfileBinder
	cfg        *config.Config
}

func NewUploadService(repo UploadRepository, store ObjectStore, blocks BlockBinder, thumbnails ThumbnailBinder, profiles ProfileBinder, cfg *config.Config) UploadService {
	return &uploadService{
		repo:       repo,
		store:      store,
		blocks:     blocks,
		thumbnails: thumbnails,
		profiles:   profiles,
		cfg:        cfg,
	}
}

func (s *uploadService) Presign(ctx context.Context, actor common.Actor, req PresignRequest) (*Grant, error) {
	use := IntendedUse(req.IntendedUse)
	if !use.IsValid() {
		return nil, common.NewValidation("unknown intended use %q", req.IntendedUse)
	}
	if strings.TrimSpace(req.Filename) == "" {
		return nil, common.NewValidation("filename is required")
	}
	if !strings.HasPrefix(strings.ToLower(req.ContentType), "image/") {
		return nil, common.NewValidation("content type %q is not an image", req.ContentType)
	}
	if req.Size <= 0 {
		return nil, common.NewValidation("size must be positive")
	}
	if req.Size > s.cfg.Upload.MaxImageBytes {
		return nil, common.NewValidation("size %d exceeds the %d byte limit", req.Size, s.cfg.Upload.MaxImageBytes)
	}

	switch use {
	case UseBlockImage:
		if req.TargetPortfolioID == nil || req.TargetBlockID == nil {
			return nil, common.NewValidation("block_image uploads require a target document and block")
		}
	case UseThumbnail:
		if req.TargetPortfolioID == nil {
			return nil, common.NewValidation("thumbnail uploads require a target document")
		}
	}

	ttl := time.Duration(s.cfg.Upload.GrantTTLMinutes) * time.Minute
	ext := strings.ToLower(filepath.Ext(req.Filename))
	key := fmt.Sprintf("%s/%s%s", use, uuid.NewString(), ext)

	session := &dbmysql.UploadSession{
		SessionID:         uuid.NewString(),
		UploaderID:        actor.UserID,
		IntendedUse:       string(use),
		ObjectKey:         key,
		ContentType:       req.ContentType,
		Size:              req.Size,
		TargetPortfolioID: req.TargetPortfolioID,
		TargetBlockID:     req.TargetBlockID,
		ExpiresAt:         time.Now().Add(ttl),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create upload session: %w", err)
	}

	token, err := GenerateGrantToken(session.SessionID, key, req.ContentType, req.Size, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload grant: %w", err)
	}

	return &Grant{
		SessionID: session.SessionID,
		ObjectKey: key,
		URL:       s.objectURL(key),
		Method:    "PUT",
		Headers: map[string]string{
			"Content-Type":   req.ContentType,
			"X-Upload-Grant": token,
		},
		ExpiresIn: int(ttl.Seconds()),
	}, nil
}

func (s *uploadService) WriteObject(ctx context.Context, grantToken, objectKey string, body io.Reader) (*dbmongo.ObjectInfo, error) {
	claims, err := ParseGrantToken(grantToken)
	if err != nil {
		return nil, err
	}
	if claims.ObjectKey != objectKey {
		return nil, common.NewForbidden("grant does not cover object %q", objectKey)
	}

	// Read one byte past the granted size so an oversized body is rejected
	// instead of silently truncated.
	data, err := io.ReadAll(io.LimitReader(body, claims.Size+1))
	if err != nil {
		return nil, common.NewValidation("reading upload body: %v", err)
	}
	if int64(len(data)) > claims.Size {
		return nil, common.NewValidation("body exceeds the granted %d bytes", claims.Size)
	}

	info, err := s.store.Put(ctx, objectKey, claims.ContentType, bytes.NewReader(data))
	if err != nil {
		return nil, common.NewUpstream("object store write failed", err)
	}
	return info, nil
}

func (s *uploadService) ReadObject(ctx context.Context, objectKey string) (io.ReadCloser, *dbmongo.ObjectInfo, error) {
	reader, info, err := s.store.Get(ctx, objectKey)
	if err != nil {
		return nil, nil, common.NewNotFound("object %q not found", objectKey)
	}
	return reader, info, nil
}

func (s *uploadService) Confirm(ctx context.Context, actor common.Actor, sessionID, objectKey string) (*ConfirmResult, error) {
	session, err := s.repo.ByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFound("upload session %s not found", sessionID)
		}
		return nil, fmt.Errorf("failed to load upload session: %w", err)
	}

	if session.UploaderID != actor.UserID {
		return nil, common.NewNotFound("upload session %s not found", sessionID)
	}

	if objectKey != session.ObjectKey {
		if session.Consumed {
			return nil, common.NewConflict("session %s was consumed with a different object key", sessionID)
		}
		return nil, common.NewValidation("object key does not match session %s", sessionID)
	}

	// A second confirm with the matching key is the client retrying; the
	// first one's binding already happened.
	if session.Consumed {
		return &ConfirmResult{
			SessionID: sessionID,
			ObjectKey: objectKey,
			ObjectURL: s.objectURL(objectKey),
		}, nil
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, common.NewExpired("upload session %s has expired", sessionID)
	}

	exists, err := s.store.Exists(ctx, objectKey)
	if err != nil {
		return nil, common.NewUpstream("object store lookup failed", err)
	}
	if !exists {
		return nil, common.NewValidation("no object has been written for session %s", sessionID)
	}

	consumed, err := s.repo.Consume(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume upload session: %w", err)
	}

	url := s.objectURL(objectKey)

	// Lost the consume race to a concurrent confirm with the same key: the
	// winner did the binding, so this is the no-op side.
	if !consumed {
		return &ConfirmResult{SessionID: sessionID, ObjectKey: objectKey, ObjectURL: url}, nil
	}

	if err := s.bind(ctx, session, url); err != nil {
		return nil, err
	}

	return &ConfirmResult{SessionID: sessionID, ObjectKey: objectKey, ObjectURL: url}, nil
}

func (s *uploadService) bind(ctx context.Context, session *dbmysql.UploadSession, url string) error {
	switch IntendedUse(session.IntendedUse) {
	case UseBlockImage:
		return s.blocks.BindImageURL(ctx, *session.TargetPortfolioID, *session.TargetBlockID, url)
	case UseThumbnail:
		return s.thumbnails.SetThumbnail(ctx, *session.TargetPortfolioID, url)
	case UseAvatar:
		return s.profiles.SetAvatarURL(ctx, session.UploaderID, url)
	case UseBanner:
		return s.profiles.SetBannerURL(ctx, session.UploaderID, url)
	}
	return common.NewValidation("unknown intended use %q", session.IntendedUse)
}

func (s *uploadService) objectURL(key string) string {
	return fmt.Sprintf("%s/media/objects/%s", s.cfg.Server.MediaBaseURL, key)
}
