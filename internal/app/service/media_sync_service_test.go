package service

import (
	"context"
	"testing"

	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuPayload(images []interface{}, sheet string) map[string]interface{} {
	step3 := map[string]interface{}{"menu_image_urls": images}
	if sheet != "" {
		step3["menu_sheet_url"] = sheet
	}
	return step3
}

func TestMediaSync_OnboardingResubmitLeavesExactRowSet(t *testing.T) {
	env := newTestEnv(t)
	store := seedDraft(t, env, "MED00001")

	payload := menuPayload([]interface{}{"menu/a.png", "menu/b.png"}, "")
	require.NoError(t, env.mediaSync.Sync(context.Background(), store.ID, payload))
	require.NoError(t, env.mediaSync.Sync(context.Background(), store.ID, payload))

	rows, err := env.mediaRepo.FindActiveByScope(store.ID, model.ScopeMenuReference)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "re-submitting the same two images leaves exactly two active rows")

	// Keys present in the incoming list are never deleted from storage
	assert.Zero(t, env.blobs.deleteCount())
}

func TestMediaSync_OnboardingReplaceDeletesDroppedBlobs(t *testing.T) {
	env := newTestEnv(t)
	store := seedDraft(t, env, "MED00001")

	require.NoError(t, env.mediaSync.Sync(context.Background(), store.ID,
		menuPayload([]interface{}{"menu/a.png", "menu/b.png"}, "menu/sheet.xlsx")))
	require.NoError(t, env.mediaSync.Sync(context.Background(), store.ID,
		menuPayload([]interface{}{"menu/b.png", "menu/c.png"}, "")))

	assert.ElementsMatch(t, []string{"menu/a.png", "menu/sheet.xlsx"}, env.blobs.deleted)

	rows, err := env.mediaRepo.FindActiveByScope(store.ID, model.ScopeMenuReference)
	require.NoError(t, err)
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, row.ObjectKey)
	}
	assert.ElementsMatch(t, []string{"menu/b.png", "menu/c.png"}, keys)
}

func TestMediaSync_SheetRowGetsSheetSource(t *testing.T) {
	env := newTestEnv(t)
	store := seedDraft(t, env, "MED00001")

	require.NoError(t, env.mediaSync.Sync(context.Background(), store.ID,
		menuPayload([]interface{}{"menu/a.png"}, "menu/sheet.xlsx")))

	rows, err := env.mediaRepo.FindActiveByScope(store.ID, model.ScopeMenuReference)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	bySource := map[model.MediaSource]string{}
	for _, row := range rows {
		bySource[row.Source] = row.ObjectKey
	}
	assert.Equal(t, "menu/a.png", bySource[model.SourceImage])
	assert.Equal(t, "menu/sheet.xlsx", bySource[model.SourceSheet])
}

func TestMediaSync_LiveModeRetiresWithoutBlobDeletes(t *testing.T) {
	env := newTestEnv(t)
	store := seedDraft(t, env, "MED00001")

	require.NoError(t, env.mediaSync.Sync(context.Background(), store.ID,
		menuPayload([]interface{}{"menu/a.png"}, "")))

	store.OnboardingCompleted = true
	store.ApprovalStatus = model.ApprovalApproved
	require.NoError(t, env.db.Save(store).Error)

	require.NoError(t, env.mediaSync.Sync(context.Background(), store.ID,
		menuPayload([]interface{}{"menu/b.png"}, "")))

	assert.Zero(t, env.blobs.deleteCount(), "live mode never deletes blobs")

	active, err := env.mediaRepo.FindActiveByScope(store.ID, model.ScopeMenuReference)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "menu/b.png", active[0].ObjectKey)

	all, err := env.mediaRepo.FindByScope(store.ID, model.ScopeMenuReference)
	require.NoError(t, err)
	assert.Len(t, all, 2, "retired row kept for live pages")
}

func TestMediaSync_MissingStoreIsSkipped(t *testing.T) {
	env := newTestEnv(t)

	err := env.mediaSync.Sync(context.Background(), 9999,
		menuPayload([]interface{}{"menu/a.png"}, ""))

	require.NoError(t, err, "a vanished draft downgrades to a skip")
}
