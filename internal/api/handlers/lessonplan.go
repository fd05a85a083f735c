package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/lessonplanner/internal/api/dto"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/generation"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/lessonplan"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/quota"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/utils"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/validator"
)

// LessonPlanHandler handles lesson plan storage and generation endpoints
type LessonPlanHandler struct {
	service    lessonplan.Service
	quota      quota.Service
	generation generation.Service
	logger     *logger.Logger
	validator  *validator.Validator
}

// NewLessonPlanHandler creates a new lesson plan handler
func NewLessonPlanHandler(
	service lessonplan.Service,
	quotaService quota.Service,
	generationService generation.Service,
	log *logger.Logger,
	val *validator.Validator,
) *LessonPlanHandler {
	return &LessonPlanHandler{
		service:    service,
		quota:      quotaService,
		generation: generationService,
		logger:     log,
		validator:  val,
	}
}

// List returns the caller's lesson plans, newest first
// @Summary List lesson plans
// @Tags LessonPlans
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} lessonplan.Page
// @Failure 401 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /lessonplans [get]
func (h *LessonPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	params := utils.ParsePaginationParams(r)
	page, err := h.service.ListByOwner(r.Context(), userID, params.Page, params.PageSize)
	if err != nil {
		utils.WriteErr(w, err, "Failed to list lesson plans")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, page)
}

// Create saves a lesson plan
// @Summary Create lesson plan
// @Tags LessonPlans
// @Accept json
// @Produce json
// @Param request body dto.CreateLessonPlanRequest true "Lesson plan"
// @Success 201 {object} lessonplan.LessonPlan
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 403 {object} utils.ErrorResponse "Storage quota exceeded"
// @Security BearerAuth
// @Router /lessonplans [post]
func (h *LessonPlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateLessonPlanRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	plan := req.ToModel()
	if err := h.service.Create(r.Context(), userID, plan); err != nil {
		utils.WriteErr(w, err, "Failed to create lesson plan")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, plan)
}

// Generate produces a lesson plan with the text generation backend. With
// save set, the result is stored as the caller's plan.
// @Summary Generate lesson plan
// @Tags LessonPlans
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "Prompt fields"
// @Success 200 {object} dto.GenerateResponse
// @Failure 403 {object} utils.ErrorResponse "Credit or storage quota exceeded"
// @Failure 502 {object} utils.ErrorResponse "Generation failed"
// @Security BearerAuth
// @Router /lessonplans/generate [post]
func (h *LessonPlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.GenerateRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.quota.HasCredits(r.Context(), userID); err != nil {
		utils.WriteErr(w, err, "Failed to check credits")
		return
	}
	if req.Save {
		if _, err := h.quota.CheckAndReserveStorage(r.Context(), userID); err != nil {
			utils.WriteErr(w, err, "Failed to check storage")
			return
		}
	}

	result, err := h.generation.Generate(r.Context(), req.PromptFields)
	if err != nil {
		utils.WriteErr(w, err, "Failed to generate lesson plan")
		return
	}

	resp := dto.GenerateResponse{Content: result.Content, Model: result.Model}

	if req.Save {
		title := strings.TrimSpace(req.Title)
		if title == "" {
			title = generation.Title(req.PromptFields)
		}
		plan := &lessonplan.LessonPlan{
			Title:      title,
			Subject:    req.Subject,
			Audience:   req.Grade,
			Time:       req.Duration,
			Topic:      req.Topic,
			Objectives: req.Objectives,
			Content:    result.Content,
			IsPublic:   req.IsPublic,
			Generated:  true,
		}
		if err := h.service.Create(r.Context(), userID, plan); err != nil {
			utils.WriteErr(w, err, "Failed to save generated lesson plan")
			return
		}
		resp.LessonPlan = plan
		utils.WriteSuccess(w, http.StatusCreated, resp)
		return
	}

	spent, err := h.quota.SpendCredit(r.Context(), userID, quota.FeatureGenerate, map[string]interface{}{
		"subject": req.Subject,
		"grade":   req.Grade,
		"topic":   req.Topic,
		"model":   result.Model,
	})
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("Failed to spend AI credit for generation")
	} else {
		resp.AICreditsRemaining = &spent.Remaining
	}

	utils.WriteSuccess(w, http.StatusOK, resp)
}

// Get returns a lesson plan the caller can read
// @Summary Get lesson plan
// @Tags LessonPlans
// @Produce json
// @Param id path string true "Lesson plan ID"
// @Success 200 {object} lessonplan.LessonPlan
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /lessonplans/{id} [get]
func (h *LessonPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	plan, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteErr(w, err, "Failed to get lesson plan")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, plan)
}

// Update changes the supplied fields of a lesson plan
// @Summary Update lesson plan
// @Tags LessonPlans
// @Accept json
// @Produce json
// @Param id path string true "Lesson plan ID"
// @Param request body dto.UpdateLessonPlanRequest true "Fields to change"
// @Success 200 {object} lessonplan.LessonPlan
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /lessonplans/{id} [put]
func (h *LessonPlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateLessonPlanRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	plan, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req.ToUpdate())
	if err != nil {
		utils.WriteErr(w, err, "Failed to update lesson plan")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, plan)
}

// Delete removes a lesson plan the caller owns
// @Summary Delete lesson plan
// @Tags LessonPlans
// @Param id path string true "Lesson plan ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /lessonplans/{id} [delete]
func (h *LessonPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		utils.WriteErr(w, err, "Failed to delete lesson plan")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Lesson plan deleted", nil)
}
