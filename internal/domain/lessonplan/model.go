package lessonplan

import "time"

// Access is the permission a share entry grants
type Access string

// Share access levels
const (
	AccessRead Access = "read"
	AccessEdit Access = "edit"
)

// Share grants another user access to a plan
type Share struct {
	UserID string `json:"userId"`
	Access Access `json:"access"`
}

// LessonPlan is a stored lesson plan owned by exactly one user
type LessonPlan struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Title      string    `json:"title"`
	Subject    string    `json:"subject"`
	Audience   string    `json:"audience"`
	Time       string    `json:"time"`
	Topic      string    `json:"topic"`
	Objectives string    `json:"objectives"`
	Content    string    `json:"content"`
	IsPublic   bool      `json:"isPublic"`
	Tags       []string  `json:"tags"`
	SharedWith []Share   `json:"sharedWith"`
	Generated  bool      `json:"generated"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsOwner reports whether userID owns the plan
func (p *LessonPlan) IsOwner(userID string) bool {
	return userID != "" && p.UserID == userID
}

// CanRead reports whether userID may read the plan
func (p *LessonPlan) CanRead(userID string) bool {
	if p.IsPublic || p.IsOwner(userID) {
		return true
	}
	_, ok := p.shareFor(userID)
	return ok
}

// CanEdit reports whether userID may update the plan
func (p *LessonPlan) CanEdit(userID string) bool {
	if p.IsOwner(userID) {
		return true
	}
	s, ok := p.shareFor(userID)
	return ok && s.Access == AccessEdit
}

func (p *LessonPlan) shareFor(userID string) (Share, bool) {
	if userID == "" {
		return Share{}, false
	}
	for _, s := range p.SharedWith {
		if s.UserID == userID {
			return s, true
		}
	}
	return Share{}, false
}

// Update changes only the fields that are set
type Update struct {
	Title      *string
	Subject    *string
	Audience   *string
	Time       *string
	Topic      *string
	Objectives *string
	Content    *string
	IsPublic   *bool
	Tags       *[]string
	SharedWith *[]Share
}

// IsEmpty reports whether no field is set
func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Subject == nil && u.Audience == nil && u.Time == nil &&
		u.Topic == nil && u.Objectives == nil && u.Content == nil && u.IsPublic == nil &&
		u.Tags == nil && u.SharedWith == nil
}

// ChangesAccess reports whether the update touches visibility or sharing
func (u Update) ChangesAccess() bool {
	return u.IsPublic != nil || u.SharedWith != nil
}

// Apply mutates p field by field
func (u Update) Apply(p *LessonPlan) {
	setString(&p.Title, u.Title)
	setString(&p.Subject, u.Subject)
	setString(&p.Audience, u.Audience)
	setString(&p.Time, u.Time)
	setString(&p.Topic, u.Topic)
	setString(&p.Objectives, u.Objectives)
	setString(&p.Content, u.Content)
	if u.IsPublic != nil {
		p.IsPublic = *u.IsPublic
	}
	if u.Tags != nil {
		p.Tags = append([]string(nil), (*u.Tags)...)
	}
	if u.SharedWith != nil {
		p.SharedWith = append([]Share(nil), (*u.SharedWith)...)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Page is one page of an owner's plans, newest first
type Page struct {
	Items      []*LessonPlan `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"totalPages"`
}
