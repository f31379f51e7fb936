// Package authoring implements the two-step course creation/update
// wizard. Intermediate state lives in the session store between
// steps; it is cleared on submit and on cancel.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/byway-labs/byway-gateway/internal/models"
	"github.com/byway-labs/byway-gateway/internal/session"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

// minDescriptionLen is the upstream's course description floor,
// enforced here so the failure never leaves the gateway.
const minDescriptionLen = 100

// ErrNoDraft means the wizard was asked to continue a flow that was
// never started (or whose draft expired).
var ErrNoDraft = errors.New("no authoring draft in progress")

// ValidationError collects the form problems of a wizard step.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "course form invalid: " + strings.Join(e.Problems, "; ")
}

// Step1 is the basic-details step of the wizard.
type Step1 struct {
	Name          string       `json:"name"`
	CategoryID    int64        `json:"categoryId"`
	InstructorID  int64        `json:"instructorId"`
	Level         models.Level `json:"level"`
	TotalHours    float64      `json:"totalHours"`
	Cost          float64      `json:"cost"`
	Rate          float64      `json:"rate"`
	Description   string       `json:"description"`
	Certification string       `json:"certification"`

	// Image is the uploaded file content; empty in update mode when
	// the existing image is kept.
	Image            []byte `json:"image,omitempty"`
	ImageName        string `json:"imageName,omitempty"`
	OriginalImageURL string `json:"originalImageUrl,omitempty"`
}

// Draft is the full wizard state persisted between steps.
type Draft struct {
	Step1       Step1                   `json:"step1"`
	Contents    []models.ContentSection `json:"contents"`
	CourseID    int64                   `json:"courseId,omitempty"`
	UpdateMode  bool                    `json:"updateMode"`
	HasNewImage bool                    `json:"hasNewImage"`
}

// DraftStore persists wizard drafts between steps. LoadDraft returns
// session.ErrNotFound when no draft exists for the session.
type DraftStore interface {
	SaveDraft(ctx context.Context, sessionID string, draft any) error
	LoadDraft(ctx context.Context, sessionID string, out any) error
	ClearDraft(ctx context.Context, sessionID string) error
}

// Wizard drives the flow against the draft store and the upstream.
type Wizard struct {
	store  DraftStore
	client *upstream.Client
}

// NewWizard creates a wizard.
func NewWizard(store DraftStore, client *upstream.Client) *Wizard {
	return &Wizard{store: store, client: client}
}

// Begin starts a create flow with an empty draft.
func (w *Wizard) Begin(ctx context.Context, sessionID string) (Draft, error) {
	draft := Draft{
		Contents: []models.ContentSection{{}},
	}
	if err := w.store.SaveDraft(ctx, sessionID, draft); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// BeginUpdate starts an update flow seeded from the existing course.
func (w *Wizard) BeginUpdate(ctx context.Context, sessionID string, courseID int64) (Draft, error) {
	raw, err := w.client.GetCourse(ctx, courseID)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to load course %d for update: %w", courseID, err)
	}

	draft := Draft{
		Step1: Step1{
			Name:             raw.Name,
			CategoryID:       raw.CategoryID,
			InstructorID:     raw.InstructorID,
			Level:            raw.Level,
			TotalHours:       raw.TotalHours,
			Cost:             raw.Cost,
			Rate:             raw.Rate,
			Description:      raw.Description,
			Certification:    raw.Certification,
			OriginalImageURL: raw.ImageURL,
		},
		CourseID:   courseID,
		UpdateMode: true,
	}
	for _, rc := range raw.Contents {
		draft.Contents = append(draft.Contents, models.ContentSection{
			ID:            rc.ID,
			Name:          rc.Name,
			LecturesCount: rc.LecturesNumber,
			Minutes:       rc.Time,
		})
	}
	if len(draft.Contents) == 0 {
		draft.Contents = []models.ContentSection{{}}
	}

	if err := w.store.SaveDraft(ctx, sessionID, draft); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// SaveStep1 validates and stores the basic-details step.
func (w *Wizard) SaveStep1(ctx context.Context, sessionID string, step Step1) (Draft, error) {
	if err := validateStep1(step); err != nil {
		return Draft{}, err
	}

	draft, err := w.Load(ctx, sessionID)
	if err != nil {
		return Draft{}, err
	}

	if len(step.Image) > 0 {
		draft.HasNewImage = true
	} else {
		// Keep a previously uploaded image across re-saves.
		step.Image = draft.Step1.Image
		step.ImageName = draft.Step1.ImageName
	}
	draft.Step1 = step

	if err := w.store.SaveDraft(ctx, sessionID, draft); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// SaveContents validates and stores the content-sections step.
func (w *Wizard) SaveContents(ctx context.Context, sessionID string, contents []models.ContentSection) (Draft, error) {
	if err := validateContents(contents); err != nil {
		return Draft{}, err
	}

	draft, err := w.Load(ctx, sessionID)
	if err != nil {
		return Draft{}, err
	}
	draft.Contents = contents

	if err := w.store.SaveDraft(ctx, sessionID, draft); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// Load returns the in-progress draft.
func (w *Wizard) Load(ctx context.Context, sessionID string) (Draft, error) {
	var draft Draft
	err := w.store.LoadDraft(ctx, sessionID, &draft)
	if errors.Is(err, session.ErrNotFound) {
		return Draft{}, ErrNoDraft
	}
	if err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// Cancel abandons the flow and clears the draft.
func (w *Wizard) Cancel(ctx context.Context, sessionID string) error {
	return w.store.ClearDraft(ctx, sessionID)
}

// Submit validates the complete draft, sends it upstream and clears
// the draft on success. The caller is expected to trigger a catalog
// refresh afterwards; the gateway never patches its lists locally.
func (w *Wizard) Submit(ctx context.Context, sessionID, token string) (*upstream.RawCourse, error) {
	draft, err := w.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	form := upstream.CourseForm{
		Name:          draft.Step1.Name,
		CategoryID:    draft.Step1.CategoryID,
		InstructorID:  draft.Step1.InstructorID,
		Level:         draft.Step1.Level,
		TotalHours:    draft.Step1.TotalHours,
		Cost:          draft.Step1.Cost,
		Rate:          draft.Step1.Rate,
		Description:   draft.Step1.Description,
		Certification: draft.Step1.Certification,
		Contents:      draft.Contents,
	}
	if draft.HasNewImage {
		form.Image = draft.Step1.Image
		form.ImageName = draft.Step1.ImageName
	}

	var created *upstream.RawCourse
	if draft.UpdateMode {
		if err := w.client.UpdateCourse(ctx, token, draft.CourseID, form); err != nil {
			return nil, err
		}
		slog.Info("course updated", "course_id", draft.CourseID)
	} else {
		created, err = w.client.CreateCourse(ctx, token, form)
		if err != nil {
			return nil, err
		}
		slog.Info("course created", "course_id", created.ID)
	}

	if err := w.store.ClearDraft(ctx, sessionID); err != nil {
		slog.Warn("failed to clear authoring draft after submit", "error", err)
	}
	return created, nil
}

func validateStep1(step Step1) error {
	var problems []string
	if strings.TrimSpace(step.Name) == "" {
		problems = append(problems, "name is required")
	}
	if step.CategoryID == 0 {
		problems = append(problems, "category is required")
	}
	if step.InstructorID == 0 {
		problems = append(problems, "instructor is required")
	}
	if len(strings.TrimSpace(step.Description)) < minDescriptionLen {
		problems = append(problems, fmt.Sprintf("description must be at least %d characters", minDescriptionLen))
	}
	if step.Cost < 0 {
		problems = append(problems, "cost must not be negative")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateContents(contents []models.ContentSection) error {
	var problems []string
	if len(contents) == 0 {
		problems = append(problems, "at least one content section is required")
	}
	for i, section := range contents {
		if strings.TrimSpace(section.Name) == "" {
			problems = append(problems, fmt.Sprintf("section %d needs a name", i+1))
		}
		if section.LecturesCount <= 0 {
			problems = append(problems, fmt.Sprintf("section %d needs a positive lecture count", i+1))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateDraft(draft Draft) error {
	if err := validateStep1(draft.Step1); err != nil {
		return err
	}
	if err := validateContents(draft.Contents); err != nil {
		return err
	}
	if !draft.UpdateMode && len(draft.Step1.Image) == 0 {
		return &ValidationError{Problems: []string{"an image is required when creating a course"}}
	}
	return nil
}
