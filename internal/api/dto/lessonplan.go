package dto

import (
	"github.com/pratik-mahalle/lessonplanner/internal/domain/generation"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/lessonplan"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
)

// ShareDTO grants another user access to a plan
type ShareDTO struct {
	UserID string `json:"userId" validate:"required,objectid"`
	Access string `json:"access" validate:"required,oneof=read edit"`
}

func toShares(in []ShareDTO) []lessonplan.Share {
	out := make([]lessonplan.Share, 0, len(in))
	for _, s := range in {
		out = append(out, lessonplan.Share{UserID: s.UserID, Access: lessonplan.Access(s.Access)})
	}
	return out
}

// CreateLessonPlanRequest represents a request to save a lesson plan.
// Generated plans are only stored through the generate endpoint.
type CreateLessonPlanRequest struct {
	Title      string     `json:"title" validate:"required,max=200"`
	Subject    string     `json:"subject" validate:"max=120"`
	Audience   string     `json:"audience" validate:"max=120"`
	Time       string     `json:"time" validate:"max=60"`
	Topic      string     `json:"topic" validate:"max=200"`
	Objectives string     `json:"objectives" validate:"max=4000"`
	Content    string     `json:"content" validate:"max=100000"`
	IsPublic   bool       `json:"isPublic"`
	Tags       []string   `json:"tags" validate:"max=20,dive,max=40"`
	SharedWith []ShareDTO `json:"sharedWith" validate:"max=50,dive"`
}

// ToModel converts the request into a domain plan
func (r CreateLessonPlanRequest) ToModel() *lessonplan.LessonPlan {
	return &lessonplan.LessonPlan{
		Title:      r.Title,
		Subject:    r.Subject,
		Audience:   r.Audience,
		Time:       r.Time,
		Topic:      r.Topic,
		Objectives: r.Objectives,
		Content:    r.Content,
		IsPublic:   r.IsPublic,
		Tags:       r.Tags,
		SharedWith: toShares(r.SharedWith),
	}
}

// UpdateLessonPlanRequest changes only the supplied fields
type UpdateLessonPlanRequest struct {
	Title      *string     `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Subject    *string     `json:"subject,omitempty" validate:"omitempty,max=120"`
	Audience   *string     `json:"audience,omitempty" validate:"omitempty,max=120"`
	Time       *string     `json:"time,omitempty" validate:"omitempty,max=60"`
	Topic      *string     `json:"topic,omitempty" validate:"omitempty,max=200"`
	Objectives *string     `json:"objectives,omitempty" validate:"omitempty,max=4000"`
	Content    *string     `json:"content,omitempty" validate:"omitempty,max=100000"`
	IsPublic   *bool       `json:"isPublic,omitempty"`
	Tags       *[]string   `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=40"`
	SharedWith *[]ShareDTO `json:"sharedWith,omitempty" validate:"omitempty,max=50,dive"`
}

// ToUpdate converts the request into a domain update
func (r UpdateLessonPlanRequest) ToUpdate() lessonplan.Update {
	upd := lessonplan.Update{
		Title:      r.Title,
		Subject:    r.Subject,
		Audience:   r.Audience,
		Time:       r.Time,
		Topic:      r.Topic,
		Objectives: r.Objectives,
		Content:    r.Content,
		IsPublic:   r.IsPublic,
		Tags:       r.Tags,
	}
	if r.SharedWith != nil {
		shares := toShares(*r.SharedWith)
		upd.SharedWith = &shares
	}
	return upd
}

// GenerateRequest asks for a generated lesson plan, optionally saving it
type GenerateRequest struct {
	generation.PromptFields
	Save     bool   `json:"save"`
	Title    string `json:"title,omitempty" validate:"max=200"`
	IsPublic bool   `json:"isPublic"`
}

// GenerateResponse carries generated text and, when saved, the stored plan
type GenerateResponse struct {
	Content            string                 `json:"content"`
	Model              string                 `json:"model"`
	LessonPlan         *lessonplan.LessonPlan `json:"lessonPlan,omitempty"`
	AICreditsRemaining *subscription.Limit    `json:"aiCreditsRemaining,omitempty"`
}
