package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medikart/medikart-backend/internal/app/controller"
	"github.com/medikart/medikart-backend/internal/app/model"
	"github.com/medikart/medikart-backend/internal/app/repository"
	"github.com/medikart/medikart-backend/internal/app/service"
	"github.com/medikart/medikart-backend/internal/db"
	"github.com/medikart/medikart-backend/internal/middleware"
	"github.com/medikart/medikart-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const integrationJWTSecret = "integration-test-secret"

type stubBlobStore struct{}

func (stubBlobStore) Put(_ context.Context, key string, _ io.Reader, _ string) (string, error) {
	return "https://blobs.test/" + key, nil
}
func (stubBlobStore) Delete(context.Context, string) error { return nil }
func (stubBlobStore) SignURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://blobs.test/%s?sig=abc", key), nil
}
func (stubBlobStore) ProxyURL(key string) string { return "https://proxy.test/" + key }

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	progressRepo := repository.NewProgressRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	documentRepo := repository.NewDocumentRepository(testDB)
	payoutRepo := repository.NewPayoutRepository(testDB)
	mediaRepo := repository.NewMediaRepository(testDB)
	sequenceRepo := repository.NewSequenceRepository(testDB)

	blobs := stubBlobStore{}
	allocator := service.NewPublicIDAllocator(sequenceRepo, storeRepo, progressRepo, "MED")
	drafts := service.NewDraftService(storeRepo, allocator)
	documentSync := service.NewDocumentSyncService(documentRepo, blobs)
	payoutSync := service.NewPayoutSyncService(payoutRepo, blobs)
	mediaSync := service.NewMediaSyncService(mediaRepo, storeRepo, blobs)
	onboarding := service.NewOnboardingService(
		progressRepo, storeRepo, drafts,
		documentSync, payoutSync, mediaSync,
		allocator, blobs, 15*time.Minute,
	)

	onboardingController := controller.NewOnboardingController(onboarding, service.NewMenuTemplateService())
	authMiddleware := middleware.NewAuthMiddleware(integrationJWTSecret)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	merchant := router.Group("/api/v1/merchant", authMiddleware.Authenticate(), authMiddleware.RequireRole("merchant", "admin"))
	merchant.GET("/onboarding/progress", onboardingController.GetProgress)
	merchant.PUT("/onboarding/progress", onboardingController.SaveProgress)
	merchant.GET("/onboarding/menu-template", onboardingController.DownloadMenuTemplate)

	return &testServer{router: router, db: testDB}
}

func (ts *testServer) seedMerchant(t *testing.T) (*model.User, string) {
	t.Helper()
	user := &model.User{Email: "merchant@medikart.in", PasswordHash: "x", Name: "Demo Merchant", Role: model.RoleMerchant}
	require.NoError(t, ts.db.Create(user).Error)

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), integrationJWTSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestOnboardingFlow_EndToEnd(t *testing.T) {
	ts := setupIntegrationTest(t)
	_, token := ts.seedMerchant(t)

	// Nothing to resume yet
	w := ts.do(t, http.MethodGet, "/api/v1/merchant/onboarding/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var getResp struct {
		Progress *model.RegistrationProgress `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &getResp))
	assert.Nil(t, getResp.Progress)

	// Step 1 creates both the progress row and the store draft
	w = ts.do(t, http.MethodPut, "/api/v1/merchant/onboarding/progress", token, gin.H{
		"current_step": 1,
		"next_step":    2,
		"form_data": gin.H{
			"step1": gin.H{
				"store_name":  "Apollo Meds",
				"store_email": "owner@apollomeds.in",
				"category":    "pharmacy",
			},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var putResp struct {
		Progress *model.RegistrationProgress `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &putResp))
	require.NotNil(t, putResp.Progress)
	assert.True(t, putResp.Progress.Step1Completed)
	assert.Equal(t, 2, putResp.Progress.CurrentStep)
	assert.NotEmpty(t, putResp.Progress.StorePublicID())

	var draftCount int64
	require.NoError(t, ts.db.Model(&model.Store{}).Count(&draftCount).Error)
	assert.EqualValues(t, 1, draftCount)

	// The wizard resumes where it left off
	w = ts.do(t, http.MethodGet, "/api/v1/merchant/onboarding/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &getResp))
	require.NotNil(t, getResp.Progress)
	assert.Equal(t, putResp.Progress.ID, getResp.Progress.ID)

	// force_new short-circuits without touching the stored row
	w = ts.do(t, http.MethodGet, "/api/v1/merchant/onboarding/progress?force_new=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &getResp))
	assert.Nil(t, getResp.Progress)
}

func TestOnboardingFlow_RejectsAnonymous(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := ts.do(t, http.MethodGet, "/api/v1/merchant/onboarding/progress", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPut, "/api/v1/merchant/onboarding/progress", "", gin.H{"current_step": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOnboardingFlow_InvalidPayload(t *testing.T) {
	ts := setupIntegrationTest(t)
	_, token := ts.seedMerchant(t)

	// current_step is required
	w := ts.do(t, http.MethodPut, "/api/v1/merchant/onboarding/progress", token, gin.H{
		"form_data": gin.H{"step1": gin.H{"store_name": "X"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/api/v1/merchant/onboarding/progress", token, gin.H{
		"current_step":        1,
		"registration_status": "BOGUS",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOnboardingFlow_MenuTemplateDownload(t *testing.T) {
	ts := setupIntegrationTest(t)
	_, token := ts.seedMerchant(t)

	w := ts.do(t, http.MethodGet, "/api/v1/merchant/onboarding/menu-template", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "menu-template.xlsx")
	assert.NotZero(t, w.Body.Len())
}
