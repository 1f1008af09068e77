package submissions

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newService() *Service {
	return &Service{Repo: NewMemoryRepo()}
}

func validSubmission() Submission {
	match := 75.0
	return Submission{
		CandidateName:    "Morgan Diaz",
		JobTitle:         "Platform Engineer",
		RecruiterActorID: "rec-1",
		ClientActorID:    "cli-1",
		MatchScore:       &match,
	}
}

func TestCreateValidation(t *testing.T) {
	badMatch := 120.0
	cases := []struct {
		name   string
		mutate func(*Submission)
	}{
		{"missing candidate", func(s *Submission) { s.CandidateName = " " }},
		{"missing job title", func(s *Submission) { s.JobTitle = "" }},
		{"missing recruiter", func(s *Submission) { s.RecruiterActorID = "" }},
		{"missing client", func(s *Submission) { s.ClientActorID = "" }},
		{"match out of range", func(s *Submission) { s.MatchScore = &badMatch }},
		{"unknown stage", func(s *Submission) { s.Stage = "limbo" }},
	}
	svc := newService()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			tc.mutate(&sub)
			if _, err := svc.Create(context.Background(), sub); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateDefaults(t *testing.T) {
	svc := newService()

	created, err := svc.Create(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Stage != StageSubmitted {
		t.Fatalf("stage = %q, want default submitted", created.Stage)
	}
	if created.SubmittedAt.IsZero() || created.LastActivityAt.IsZero() {
		t.Fatal("expected timestamps to be stamped")
	}
	if !created.LastActivityAt.Equal(created.SubmittedAt) {
		t.Fatal("initial activity should match submission time")
	}
}

func TestChangeStageArchivesTerminal(t *testing.T) {
	svc := newService()
	created, err := svc.Create(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Now().UTC().Add(time.Hour)
	placed, err := svc.ChangeStage(context.Background(), created.ID, StagePlaced, at)
	if err != nil {
		t.Fatalf("ChangeStage: %v", err)
	}
	if placed.Stage != StagePlaced {
		t.Fatalf("stage = %q, want placed", placed.Stage)
	}
	if placed.ArchivedAt == nil {
		t.Fatal("terminal stage must archive the record")
	}
	if !placed.LastActivityAt.Equal(at) {
		t.Fatalf("last activity = %v, want %v", placed.LastActivityAt, at)
	}
}

func TestChangeStageRejectsUnknown(t *testing.T) {
	svc := newService()
	created, err := svc.Create(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.ChangeStage(context.Background(), created.ID, "limbo", time.Now()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRecordActivityUnknownSubmission(t *testing.T) {
	svc := newService()
	if err := svc.RecordActivity(context.Background(), "missing", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
