package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medikart/medikart-backend/internal/app/service"
	apperrors "github.com/medikart/medikart-backend/internal/errors"
	"github.com/medikart/medikart-backend/internal/middleware"
)

type OnboardingController struct {
	onboardingService service.OnboardingService
	menuTemplates     service.MenuTemplateService
}

func NewOnboardingController(onboardingService service.OnboardingService, menuTemplates service.MenuTemplateService) *OnboardingController {
	return &OnboardingController{
		onboardingService: onboardingService,
		menuTemplates:     menuTemplates,
	}
}

type SaveProgressRequest struct {
	CurrentStep        int                    `json:"current_step" binding:"required"`
	NextStep           *int                   `json:"next_step"`
	MarkStepComplete   bool                   `json:"mark_step_complete"`
	FormData           map[string]interface{} `json:"form_data"`
	RegistrationStatus string                 `json:"registration_status"`
	StorePublicID      string                 `json:"store_public_id"`
}

// GetProgress returns the caller's active registration, or null when there
// is nothing to resume.
func (ctrl *OnboardingController) GetProgress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	publicIDHint := c.Query("store_public_id")
	forceNew := strings.EqualFold(c.DefaultQuery("force_new", "false"), "true")

	progress, err := ctrl.onboardingService.GetProgress(c.Request.Context(), userID, publicIDHint, forceNew)
	if err != nil {
		log.Error("Failed to load registration progress", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to load your registration progress")
		return
	}

	if progress == nil {
		c.JSON(http.StatusOK, gin.H{"progress": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// SaveProgress applies one wizard save and returns the updated registration.
func (ctrl *OnboardingController) SaveProgress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid progress payload", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid progress payload")
		return
	}

	progress, err := ctrl.onboardingService.SaveProgress(c.Request.Context(), userID, service.SaveProgressInput{
		CurrentStep:        req.CurrentStep,
		NextStep:           req.NextStep,
		MarkStepComplete:   req.MarkStepComplete,
		FormData:           req.FormData,
		RegistrationStatus: req.RegistrationStatus,
		StorePublicIDHint:  req.StorePublicID,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			apperrors.BadRequest(c, apperrors.OnboardingInvalidStatus, "Unknown registration status")
			return
		}
		log.Error("Failed to save registration progress", err, map[string]interface{}{
			"user_id":      userID,
			"current_step": req.CurrentStep,
		})
		info := apperrors.ParseError(err, "save progress")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// DownloadMenuTemplate streams the spreadsheet merchants fill out before
// uploading their reference menu.
func (ctrl *OnboardingController) DownloadMenuTemplate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	buf, err := ctrl.menuTemplates.BuildTemplate()
	if err != nil {
		log.Error("Failed to build menu template", err, nil)
		apperrors.InternalError(c, "Failed to build the menu template")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="menu-template.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
