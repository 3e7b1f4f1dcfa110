package upload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"artfolio/internal/dbmysql"
)

func TestCleaner_SweepRemovesSessionAndObject(t *testing.T) {
	repo := new(MockUploadRepository)
	store := new(MockObjectStore)
	cleaner := NewCleaner(repo, store, time.Minute)

	expired := []*dbmysql.UploadSession{
		{SessionID: "sess-1", ObjectKey: "avatar/a.png"},
		{SessionID: "sess-2", ObjectKey: "banner/b.png"},
	}

	repo.On("ExpiredUnconsumed", mock.Anything, mock.Anything, 100).Return(expired, nil)
	store.On("Delete", mock.Anything, "avatar/a.png").Return(nil)
	store.On("Delete", mock.Anything, "banner/b.png").Return(nil)
	repo.On("Delete", mock.Anything, "sess-1").Return(nil)
	repo.On("Delete", mock.Anything, "sess-2").Return(nil)

	cleaner.sweep()

	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestCleaner_KeepsSessionWhenObjectDeleteFails(t *testing.T) {
	repo := new(MockUploadRepository)
	store := new(MockObjectStore)
	cleaner := NewCleaner(repo, store, time.Minute)

	expired := []*dbmysql.UploadSession{{SessionID: "sess-1", ObjectKey: "avatar/a.png"}}

	repo.On("ExpiredUnconsumed", mock.Anything, mock.Anything, 100).Return(expired, nil)
	store.On("Delete", mock.Anything, "avatar/a.png").Return(assert.AnError)

	cleaner.sweep()

	// The session row stays so the next sweep retries the object.
	repo.AssertNotCalled(t, "Delete", mock.Anything, "sess-1")
}

func TestCleaner_StartStop(t *testing.T) {
	repo := new(MockUploadRepository)
	store := new(MockObjectStore)
	cleaner := NewCleaner(repo, store, time.Hour)

	cleaner.Start()
	cleaner.Stop()
}
