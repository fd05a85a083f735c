package client

import (
	"context"
	"net/url"
	"strconv"
)

// LessonPlanService handles lesson plan API calls
type LessonPlanService struct {
	client *Client
}

// CreateLessonPlanRequest represents a request to save a lesson plan
type CreateLessonPlanRequest struct {
	Title      string   `json:"title"`
	Subject    string   `json:"subject,omitempty"`
	Audience   string   `json:"audience,omitempty"`
	Time       string   `json:"time,omitempty"`
	Topic      string   `json:"topic,omitempty"`
	Objectives string   `json:"objectives,omitempty"`
	Content    string   `json:"content,omitempty"`
	IsPublic   bool     `json:"isPublic"`
	Tags       []string `json:"tags,omitempty"`
	SharedWith []Share  `json:"sharedWith,omitempty"`
}

// UpdateLessonPlanRequest changes only the non-nil fields
type UpdateLessonPlanRequest struct {
	Title      *string   `json:"title,omitempty"`
	Subject    *string   `json:"subject,omitempty"`
	Audience   *string   `json:"audience,omitempty"`
	Time       *string   `json:"time,omitempty"`
	Topic      *string   `json:"topic,omitempty"`
	Objectives *string   `json:"objectives,omitempty"`
	Content    *string   `json:"content,omitempty"`
	IsPublic   *bool     `json:"isPublic,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	SharedWith *[]Share  `json:"sharedWith,omitempty"`
}

// GenerateRequest asks the server to write a lesson plan
type GenerateRequest struct {
	Subject         string `json:"subject"`
	Grade           string `json:"grade"`
	Topic           string `json:"topic"`
	Duration        string `json:"duration,omitempty"`
	Standards       string `json:"standards,omitempty"`
	Objectives      string `json:"objectives,omitempty"`
	Differentiation string `json:"differentiation,omitempty"`
	Extensions      string `json:"extensions,omitempty"`
	Save            bool   `json:"save"`
	Title           string `json:"title,omitempty"`
	IsPublic        bool   `json:"isPublic"`
}

// GenerateResponse carries the generated text and the saved plan, if any
type GenerateResponse struct {
	Content            string      `json:"content"`
	Model              string      `json:"model"`
	LessonPlan         *LessonPlan `json:"lessonPlan,omitempty"`
	AICreditsRemaining *Limit      `json:"aiCreditsRemaining,omitempty"`
}

// List retrieves a page of the caller's lesson plans
func (s *LessonPlanService) List(ctx context.Context, opts *ListOptions) (*LessonPlanPage, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	path := "/api/v1/lessonplans"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page LessonPlanPage
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get retrieves a single lesson plan by ID
func (s *LessonPlanService) Get(ctx context.Context, id string) (*LessonPlan, error) {
	var plan LessonPlan
	if err := s.client.doRequest(ctx, "GET", "/api/v1/lessonplans/"+url.PathEscape(id), nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create saves a new lesson plan
func (s *LessonPlanService) Create(ctx context.Context, req CreateLessonPlanRequest) (*LessonPlan, error) {
	var plan LessonPlan
	if err := s.client.doRequest(ctx, "POST", "/api/v1/lessonplans", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Update changes an existing lesson plan
func (s *LessonPlanService) Update(ctx context.Context, id string, req UpdateLessonPlanRequest) (*LessonPlan, error) {
	var plan LessonPlan
	if err := s.client.doRequest(ctx, "PUT", "/api/v1/lessonplans/"+url.PathEscape(id), req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Delete deletes a lesson plan
func (s *LessonPlanService) Delete(ctx context.Context, id string) error {
	return s.client.doRequest(ctx, "DELETE", "/api/v1/lessonplans/"+url.PathEscape(id), nil, nil)
}

// Generate writes a lesson plan with the server's text generation backend
func (s *LessonPlanService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := s.client.doRequest(ctx, "POST", "/api/v1/lessonplans/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
