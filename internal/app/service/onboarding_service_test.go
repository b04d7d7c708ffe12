package service

import (
	"context"
	"testing"

	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestSaveProgress_FirstStepCreatesProgressAndDraft(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	row, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData: map[string]interface{}{
			"step1": map[string]interface{}{"store_name": "Cafe X", "store_email": "a@b.com"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, row)

	assert.True(t, row.Step1Completed, "populated step1 marks step 1 complete")
	assert.Equal(t, 1, row.CompletedSteps)
	assert.NotZero(t, row.ID)

	draft, err := env.storeRepo.FindByID(row.StoreDBID())
	require.NoError(t, err)
	assert.Equal(t, "Cafe X", draft.Name)
	assert.Equal(t, model.ApprovalDraft, draft.ApprovalStatus)
	assert.Equal(t, row.StorePublicID(), draft.PublicID)
}

func TestSaveProgress_SecondStepUpdatesSameDraft(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	first, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData:    map[string]interface{}{"step1": step1Payload()},
	})
	require.NoError(t, err)

	second, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 2,
		NextStep:    intPtr(3),
		FormData:    map[string]interface{}{"step2": step2Payload()},
	})
	require.NoError(t, err)

	assert.True(t, second.Step1Completed)
	assert.True(t, second.Step2Completed)
	assert.Equal(t, 2, second.CompletedSteps)
	assert.Equal(t, 3, second.CurrentStep)
	assert.Equal(t, first.ID, second.ID, "same progress row")
	assert.Equal(t, first.StoreDBID(), second.StoreDBID(), "same draft, not duplicated")

	var drafts int64
	require.NoError(t, env.db.Model(&model.Store{}).Count(&drafts).Error)
	assert.EqualValues(t, 1, drafts)

	draft, err := env.storeRepo.FindByID(second.StoreDBID())
	require.NoError(t, err)
	assert.Equal(t, "12 MG Road", draft.AddressLine)
	assert.Equal(t, 3, draft.CurrentOnboardingStep)
}

func TestSaveProgress_ClearingPANDeletesBlobOnce(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	_, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData:    map[string]interface{}{"step1": step1Payload()},
	})
	require.NoError(t, err)

	_, err = env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 4,
		FormData: map[string]interface{}{
			"step4": map[string]interface{}{"pan_image_url": "docs/pan-1.png"},
		},
	})
	require.NoError(t, err)

	_, err = env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 4,
		FormData: map[string]interface{}{
			"step4": map[string]interface{}{"pan_image_url": nil},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/pan-1.png"}, env.blobs.deleted)
}

func TestSaveProgress_PatchScopedSynchronizers(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	_, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData: map[string]interface{}{
			"step1": step1Payload(),
			"step3": menuPayload([]interface{}{"menu/a.png"}, ""),
		},
	})
	require.NoError(t, err)

	// A later step4 save must not touch menu media even though step3 is
	// still in the merged document
	row, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 4,
		FormData: map[string]interface{}{
			"step4": map[string]interface{}{"pan_image_url": "docs/pan-1.png"},
		},
	})
	require.NoError(t, err)

	media, err := env.mediaRepo.FindActiveByScope(row.StoreDBID(), model.ScopeMenuReference)
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Zero(t, env.blobs.deleteCount())
}

func TestSaveProgress_BankSubObjectTriggersPayoutSync(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	_, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData:    map[string]interface{}{"step1": step1Payload()},
	})
	require.NoError(t, err)

	row, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 4,
		FormData: map[string]interface{}{
			"step4": map[string]interface{}{"bank": bankPayload()},
		},
	})
	require.NoError(t, err)

	payouts, err := env.payoutRepo.FindByStoreID(row.StoreDBID())
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, model.PayoutBank, payouts[0].Method)
}

func TestSaveProgress_CompletionAckWithoutRowCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	row, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep:        6,
		RegistrationStatus: string(model.RegistrationCompleted),
		FormData: map[string]interface{}{
			"final": map[string]interface{}{"acknowledged": true},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Zero(t, row.ID, "ack is computed, not persisted")
	assert.True(t, row.Step6Completed)

	var total int64
	require.NoError(t, env.db.Model(&model.RegistrationProgress{}).Count(&total).Error)
	assert.EqualValues(t, 0, total)
}

func TestSaveProgress_CompletedRowIsExcludedFromLookups(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	_, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData:    map[string]interface{}{"step1": step1Payload()},
	})
	require.NoError(t, err)

	_, err = env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep:        6,
		RegistrationStatus: string(model.RegistrationCompleted),
		FormData:           map[string]interface{}{"final": map[string]interface{}{"acknowledged": true}},
	})
	require.NoError(t, err)

	got, err := env.onboarding.GetProgress(context.Background(), user.ID, "", false)
	require.NoError(t, err)
	assert.Nil(t, got, "completed registrations never resume")
}

func TestSaveProgress_InvalidStatusRejectedBeforeMutation(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	_, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep:        1,
		RegistrationStatus: "BOGUS",
		FormData:           map[string]interface{}{"step1": step1Payload()},
	})
	require.ErrorIs(t, err, ErrInvalidStatus)

	var total int64
	require.NoError(t, env.db.Model(&model.RegistrationProgress{}).Count(&total).Error)
	assert.EqualValues(t, 0, total)
}

func TestSaveProgress_StepsClampedToWizardRange(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	row, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 3,
		NextStep:    intPtr(40),
		FormData:    map[string]interface{}{"step1": step1Payload()},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, row.CurrentStep)
	assert.Equal(t, model.RegistrationCompleted, row.Status, "reaching the last page finalizes the row")
}

func TestGetProgress_ForceNewReturnsNil(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	_, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData:    map[string]interface{}{"step1": step1Payload()},
	})
	require.NoError(t, err)

	got, err := env.onboarding.GetProgress(context.Background(), user.ID, "", true)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetProgress_DanglingDraftReadsAsNoProgress(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	row, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData:    map[string]interface{}{"step1": step1Payload()},
	})
	require.NoError(t, err)

	// Draft removed out-of-band
	require.NoError(t, env.db.Unscoped().Delete(&model.Store{}, row.StoreDBID()).Error)

	got, err := env.onboarding.GetProgress(context.Background(), user.ID, "", false)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetProgress_HealsDriftedFlags(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	row, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		NextStep:    intPtr(4),
		FormData:    map[string]interface{}{"step1": step1Payload()},
	})
	require.NoError(t, err)

	// Simulate a legacy row whose flags were never derived
	require.NoError(t, env.db.Model(&model.RegistrationProgress{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"step1_completed": false,
			"step2_completed": false,
			"step3_completed": false,
			"completed_steps": 0,
		}).Error)

	got, err := env.onboarding.GetProgress(context.Background(), user.ID, "", false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Step1Completed)
	assert.True(t, got.Step2Completed)
	assert.True(t, got.Step3Completed)
	assert.Equal(t, 3, got.CompletedSteps)

	// Healed values were persisted, not just returned
	stored, err := env.progressRepo.FindByID(row.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CompletedSteps)
}

func TestGetProgress_RefreshesBlobReferences(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	_, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData: map[string]interface{}{
			"step1": step1Payload(),
			"step3": menuPayload([]interface{}{"menu/a.png"}, ""),
			"step4": map[string]interface{}{"pan_image_url": "docs/pan-1.png"},
		},
	})
	require.NoError(t, err)

	got, err := env.onboarding.GetProgress(context.Background(), user.ID, "", false)
	require.NoError(t, err)
	require.NotNil(t, got)

	step4 := got.FormData.SubObject("step4")
	assert.Equal(t, "https://blobs.test/docs/pan-1.png?sig=abc", step4["pan_image_url"])

	step3 := got.FormData.SubObject("step3")
	urls := step3["menu_image_urls"].([]interface{})
	assert.Equal(t, "https://blobs.test/menu/a.png?sig=abc", urls[0])

	// Stored state keeps raw object keys
	stored, err := env.progressRepo.FindByID(got.ID)
	require.NoError(t, err)
	assert.Equal(t, "docs/pan-1.png", stored.FormData.SubObject("step4")["pan_image_url"])
}

func TestGetProgress_HintPicksMatchingRow(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	older := &model.RegistrationProgress{
		UserID: user.ID,
		Status: model.RegistrationInProgress,
		FormData: model.JSONDocument{
			"step_store": map[string]interface{}{"storePublicId": "MED00007"},
		},
	}
	require.NoError(t, env.db.Create(older).Error)

	newer := &model.RegistrationProgress{
		UserID: user.ID,
		Status: model.RegistrationInProgress,
		FormData: model.JSONDocument{
			"step_store": map[string]interface{}{"storePublicId": "MED00008"},
		},
	}
	require.NoError(t, env.db.Create(newer).Error)

	got, err := env.onboarding.GetProgress(context.Background(), user.ID, "MED00007", false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, older.ID, got.ID)
}

func TestCleanupDriftedProgress(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "a@b.in")

	kept, err := env.onboarding.SaveProgress(context.Background(), user.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData:    map[string]interface{}{"step1": step1Payload()},
	})
	require.NoError(t, err)

	other := seedUser(t, env, "c@d.in")
	drifted, err := env.onboarding.SaveProgress(context.Background(), other.ID, SaveProgressInput{
		CurrentStep: 1,
		FormData:    map[string]interface{}{"step1": step1Payload()},
	})
	require.NoError(t, err)
	require.NoError(t, env.db.Unscoped().Delete(&model.Store{}, drifted.StoreDBID()).Error)

	removed, err := env.onboarding.CleanupDriftedProgress()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = env.progressRepo.FindByID(kept.ID)
	assert.NoError(t, err)
}
