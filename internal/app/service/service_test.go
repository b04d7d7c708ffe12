package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/medikart/medikart-backend/internal/app/repository"
	"github.com/medikart/medikart-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeBlobStore records calls so tests can assert on blob-cleanup policy.
type fakeBlobStore struct {
	mu      sync.Mutex
	deleted []string
	signed  []string
	signErr error
}

func (f *fakeBlobStore) Put(_ context.Context, key string, _ io.Reader, _ string) (string, error) {
	return "https://blobs.test/" + key, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobStore) SignURL(_ context.Context, key string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signErr != nil {
		return "", f.signErr
	}
	f.signed = append(f.signed, key)
	return fmt.Sprintf("https://blobs.test/%s?sig=abc", key), nil
}

func (f *fakeBlobStore) ProxyURL(key string) string {
	return "https://proxy.test/" + key
}

func (f *fakeBlobStore) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

// testEnv wires real repositories over an in-memory database with a fake
// blob store.
type testEnv struct {
	db           *gorm.DB
	blobs        *fakeBlobStore
	progressRepo repository.ProgressRepository
	storeRepo    repository.StoreRepository
	documentRepo repository.DocumentRepository
	payoutRepo   repository.PayoutRepository
	mediaRepo    repository.MediaRepository
	sequenceRepo repository.SequenceRepository
	allocator    *PublicIDAllocator
	drafts       DraftService
	documentSync DocumentSyncService
	payoutSync   PayoutSyncService
	mediaSync    MediaSyncService
	onboarding   OnboardingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(gdb) })

	env := &testEnv{db: gdb, blobs: &fakeBlobStore{}}
	env.progressRepo = repository.NewProgressRepository(gdb)
	env.storeRepo = repository.NewStoreRepository(gdb)
	env.documentRepo = repository.NewDocumentRepository(gdb)
	env.payoutRepo = repository.NewPayoutRepository(gdb)
	env.mediaRepo = repository.NewMediaRepository(gdb)
	env.sequenceRepo = repository.NewSequenceRepository(gdb)
	env.allocator = NewPublicIDAllocator(env.sequenceRepo, env.storeRepo, env.progressRepo, "MED")
	env.drafts = NewDraftService(env.storeRepo, env.allocator)
	env.documentSync = NewDocumentSyncService(env.documentRepo, env.blobs)
	env.payoutSync = NewPayoutSyncService(env.payoutRepo, env.blobs)
	env.mediaSync = NewMediaSyncService(env.mediaRepo, env.storeRepo, env.blobs)
	env.onboarding = NewOnboardingService(
		env.progressRepo, env.storeRepo, env.drafts,
		env.documentSync, env.payoutSync, env.mediaSync,
		env.allocator, env.blobs, 15*time.Minute,
	)
	return env
}
