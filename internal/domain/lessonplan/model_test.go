package lessonplan

import "testing"

func TestLessonPlan_Access(t *testing.T) {
	plan := &LessonPlan{
		UserID: "owner",
		SharedWith: []Share{
			{UserID: "reader", Access: AccessRead},
			{UserID: "editor", Access: AccessEdit},
		},
	}

	tests := []struct {
		name     string
		userID   string
		isPublic bool
		wantRead bool
		wantEdit bool
	}{
		{"owner", "owner", false, true, true},
		{"read share", "reader", false, true, false},
		{"edit share", "editor", false, true, true},
		{"stranger on private plan", "stranger", false, false, false},
		{"stranger on public plan", "stranger", true, true, false},
		{"anonymous on public plan", "", true, true, false},
		{"anonymous on private plan", "", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan.IsPublic = tt.isPublic
			if got := plan.CanRead(tt.userID); got != tt.wantRead {
				t.Errorf("CanRead(%q) = %v, want %v", tt.userID, got, tt.wantRead)
			}
			if got := plan.CanEdit(tt.userID); got != tt.wantEdit {
				t.Errorf("CanEdit(%q) = %v, want %v", tt.userID, got, tt.wantEdit)
			}
		})
	}
}

func TestUpdate_Apply(t *testing.T) {
	plan := &LessonPlan{Title: "Fractions", Subject: "Math", Tags: []string{"grade-4"}}
	title := "Equivalent Fractions"
	public := true

	upd := Update{Title: &title, IsPublic: &public}
	if upd.IsEmpty() {
		t.Fatal("IsEmpty() = true for an update with fields")
	}
	upd.Apply(plan)

	if plan.Title != title {
		t.Errorf("Title = %q, want %q", plan.Title, title)
	}
	if plan.Subject != "Math" {
		t.Errorf("Subject changed to %q without being set", plan.Subject)
	}
	if !plan.IsPublic {
		t.Error("IsPublic not applied")
	}
	if len(plan.Tags) != 1 {
		t.Errorf("Tags changed without being set: %v", plan.Tags)
	}
	if !upd.ChangesAccess() {
		t.Error("ChangesAccess() = false for an IsPublic change")
	}
	if (Update{}).IsEmpty() != true {
		t.Error("zero Update should be empty")
	}
}
