package submissions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains submission lifecycle logic. The evaluation engine only
// reads submissions; all mutation flows through here.
type Service struct {
	Repo Repo
}

// Create registers a new submission entering the pipeline.
func (s *Service) Create(ctx context.Context, sub Submission) (Submission, error) {
	if strings.TrimSpace(sub.CandidateName) == "" || strings.TrimSpace(sub.JobTitle) == "" {
		return Submission{}, ErrInvalidInput
	}
	if sub.RecruiterActorID == "" || sub.ClientActorID == "" {
		return Submission{}, ErrInvalidInput
	}
	if sub.MatchScore != nil && (*sub.MatchScore < 0 || *sub.MatchScore > 100) {
		return Submission{}, fmt.Errorf("%w: match score out of range", ErrInvalidInput)
	}
	if sub.Stage == "" {
		sub.Stage = StageSubmitted
	}
	if !IsValidStage(sub.Stage) {
		return Submission{}, fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, sub.Stage)
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = now
	}
	if sub.LastActivityAt.IsZero() {
		sub.LastActivityAt = sub.SubmittedAt
	}
	sub.CreatedAt = now
	sub.UpdatedAt = now

	if err := s.Repo.Create(ctx, sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// Get returns one submission.
func (s *Service) Get(ctx context.Context, submissionID string) (Submission, error) {
	return s.Repo.GetByID(ctx, submissionID)
}

// ChangeStage moves a submission to a new stage and counts as activity.
// Terminal stages archive the record instead of deleting it.
func (s *Service) ChangeStage(ctx context.Context, submissionID, stage string, at time.Time) (Submission, error) {
	if !IsValidStage(stage) {
		return Submission{}, fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, stage)
	}
	if err := s.Repo.UpdateStage(ctx, submissionID, stage, at); err != nil {
		return Submission{}, err
	}
	if IsTerminal(stage) {
		if err := s.Repo.Archive(ctx, submissionID, at); err != nil {
			return Submission{}, err
		}
	}
	return s.Repo.GetByID(ctx, submissionID)
}

// RecordActivity bumps the last-activity timestamp.
func (s *Service) RecordActivity(ctx context.Context, submissionID string, at time.Time) error {
	return s.Repo.TouchActivity(ctx, submissionID, at)
}
