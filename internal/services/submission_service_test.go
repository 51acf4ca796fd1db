package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/events"
	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/repositories"
	"github.com/schoolpulse/homework-service/internal/validator"
)

func newSubmissionFixture() (*mockRepository, *events.MockEventPublisher, SubmissionService) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	service := NewSubmissionService(nil, repo, logger, validator.New(), publisher)
	return repo, publisher, service
}

func TestSubmissionService_Submit_AutoGrades(t *testing.T) {
	repo, publisher, service := newSubmissionFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "student-1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	question := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel:  "8th",
		Subject:     "Science",
		Question:    "Explain photosynthesis.",
		ModelAnswer: "Plants use sunlight water and carbon dioxide to produce glucose and oxygen",
	})

	resp, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "Plants use sunlight water and carbon dioxide to produce glucose and oxygen",
	}, "student-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if resp.Status != AttemptStatusFinalized {
		t.Errorf("Expected status %q, got %q", AttemptStatusFinalized, resp.Status)
	}
	if resp.Grade == nil || *resp.Grade != 5 {
		t.Errorf("Expected grade 5 for identical answer, got %v", resp.Grade)
	}
	if resp.Similarity == nil || *resp.Similarity < 99.9 {
		t.Errorf("Expected similarity near 100, got %v", resp.Similarity)
	}
	if resp.Remark == "" {
		t.Error("Expected a remark on graded attempt")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(published))
	}
	if published[0].Type != events.EventAnswerGraded {
		t.Errorf("Expected event type %q, got %q", events.EventAnswerGraded, published[0].Type)
	}
	if published[0].Source != "homework-service" {
		t.Errorf("Expected source homework-service, got %q", published[0].Source)
	}
}

func TestSubmissionService_Submit_GradedAttemptIsImmutable(t *testing.T) {
	repo, _, service := newSubmissionFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "student-1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	question := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel:  "8th",
		Subject:     "Math",
		Question:    "Define a prime number.",
		ModelAnswer: "A prime number has exactly two divisors one and itself",
	})

	if _, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "A prime number has exactly two divisors one and itself",
	}, "student-1"); err != nil {
		t.Fatalf("First submit failed: %v", err)
	}

	_, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "Trying again for a better grade",
	}, "student-1")
	if !errors.Is(err, ErrAlreadyGraded) {
		t.Fatalf("Expected ErrAlreadyGraded, got %v", err)
	}

	if len(repo.attempts) != 1 {
		t.Errorf("Expected graded attempt untouched, found %d attempts", len(repo.attempts))
	}
}

func TestSubmissionService_Submit_ReplacesPendingAttempt(t *testing.T) {
	repo, publisher, service := newSubmissionFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "student-1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	question := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel:  "8th",
		Subject:     "English",
		Question:    "Describe the water cycle.",
		ModelAnswer: "Water evaporates condenses into clouds and falls back as precipitation",
	})

	first, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "Something about rain maybe",
	}, "student-1")
	if err != nil {
		t.Fatalf("First submit failed: %v", err)
	}
	if first.Status != AttemptStatusPending {
		t.Fatalf("Expected pending status for failing answer, got %q", first.Status)
	}

	second, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "Clouds form somehow and then it rains",
	}, "student-1")
	if err != nil {
		t.Fatalf("Resubmission failed: %v", err)
	}
	if second.Status != AttemptStatusPending {
		t.Errorf("Expected pending status, got %q", second.Status)
	}

	if len(repo.attempts) != 1 {
		t.Fatalf("Expected exactly one live attempt after resubmission, got %d", len(repo.attempts))
	}
	if repo.attempts[0].AnswerText != "Clouds form somehow and then it rains" {
		t.Errorf("Expected replacement attempt to survive, got %q", repo.attempts[0].AnswerText)
	}
	if repo.attempts[0].Grade != nil {
		t.Errorf("Expected pending attempt to stay ungraded, got grade %v", *repo.attempts[0].Grade)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(published))
	}
	for _, event := range published {
		if event.Type != events.EventAnswerSubmitted {
			t.Errorf("Expected event type %q, got %q", events.EventAnswerSubmitted, event.Type)
		}
	}

	// A passing resubmission finalizes and closes the pair.
	final, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "Water evaporates condenses into clouds and falls back as precipitation",
	}, "student-1")
	if err != nil {
		t.Fatalf("Final submit failed: %v", err)
	}
	if final.Status != AttemptStatusFinalized {
		t.Errorf("Expected finalized status, got %q", final.Status)
	}
	if len(repo.attempts) != 1 {
		t.Errorf("Expected the finalized attempt to replace the pending one, got %d attempts", len(repo.attempts))
	}
	if repo.attempts[0].Grade == nil {
		t.Error("Expected finalized attempt to carry a grade")
	}
}

// staleDeleteRepo models a submission racing another transaction: the
// competing pending row is not visible to the delete, so the delete
// removes nothing and the insert must hit the uniqueness constraint.
type staleDeleteRepo struct {
	*mockRepository
}

func (r *staleDeleteRepo) Answer() repositories.AnswerRepository {
	return staleDeleteAnswerRepo{r.mockRepository.Answer()}
}

func (r *staleDeleteRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

type staleDeleteAnswerRepo struct {
	repositories.AnswerRepository
}

func (staleDeleteAnswerRepo) DeleteUngraded(ctx context.Context, tx *gorm.DB, studentID string, questionID uint) error {
	return nil
}

func TestSubmissionService_Submit_ConcurrentPendingConflicts(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mock := newMockRepository()
	service := NewSubmissionService(nil, &staleDeleteRepo{mockRepository: mock}, logger, validator.New(), nil)
	ctx := context.Background()

	mock.addUser(&models.User{ID: "student-1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	question := mock.addQuestion(&models.HomeworkQuestion{
		ClassLevel:  "8th",
		Subject:     "English",
		Question:    "Describe the water cycle.",
		ModelAnswer: "Water evaporates condenses into clouds and falls back as precipitation",
	})

	// The competing submission's pending row is already committed.
	seedPendingAttempt(mock, "student-1", question.ID, "the other submission", "remark")

	_, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "Another weak answer",
	}, "student-1")
	if !errors.Is(err, ErrConcurrentSubmission) {
		t.Fatalf("Expected ErrConcurrentSubmission, got %v", err)
	}

	if len(mock.attempts) != 1 {
		t.Errorf("Expected exactly one live attempt to survive the conflict, got %d", len(mock.attempts))
	}
	if mock.attempts[0].AnswerText != "the other submission" {
		t.Errorf("Expected the committed attempt untouched, got %q", mock.attempts[0].AnswerText)
	}
}

func TestSubmissionService_Submit_RejectsWrongClass(t *testing.T) {
	repo, _, service := newSubmissionFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "student-1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	question := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel:  "9th",
		Subject:     "Science",
		Question:    "Define inertia.",
		ModelAnswer: "Inertia is the resistance of a body to change in motion",
	})

	_, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "An attempt from the wrong class",
	}, "student-1")
	if !IsPermissionError(err) {
		t.Fatalf("Expected permission error, got %v", err)
	}
}

func TestSubmissionService_Submit_RejectsBlankAnswer(t *testing.T) {
	repo, _, service := newSubmissionFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "student-1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	question := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel:  "8th",
		Subject:     "GK",
		Question:    "Name the capital of France.",
		ModelAnswer: "Paris is the capital of France",
	})

	_, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "   ",
	}, "student-1")
	if err == nil {
		t.Fatal("Expected validation error for blank answer")
	}
}

func TestSubmissionService_Submit_LowSimilarityGetsCorrectiveRemark(t *testing.T) {
	repo, _, service := newSubmissionFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "student-1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	question := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel:  "8th",
		Subject:     "Science",
		Question:    "Explain photosynthesis.",
		ModelAnswer: "Plants use sunlight water and carbon dioxide to produce glucose and oxygen",
	})

	resp, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "I don't know",
	}, "student-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if resp.Status != AttemptStatusPending {
		t.Fatalf("Expected pending status for failing answer, got %q", resp.Status)
	}
	if resp.Grade == nil || *resp.Grade != 1 {
		t.Errorf("Expected grade 1 reported for unrelated answer, got %v", resp.Grade)
	}
	if resp.Remark != "Auto-Remark: Your answer was 0.00% correct. Please review and improve it." {
		t.Errorf("Unexpected remark: %q", resp.Remark)
	}
	if repo.attempts[0].Grade != nil {
		t.Errorf("Expected stored attempt to stay ungraded, got grade %v", *repo.attempts[0].Grade)
	}
}

func TestSubmissionService_ListGraded(t *testing.T) {
	repo, _, service := newSubmissionFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "student-1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	q1 := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel: "8th", Subject: "Math",
		Question: "Q1", ModelAnswer: "The answer is forty two",
	})
	q2 := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel: "8th", Subject: "Science",
		Question: "Q2", ModelAnswer: "Sound travels slower than light",
	})

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seedGradedAttempt(repo, "student-1", q1.ID, 4, base)
	seedGradedAttempt(repo, "student-1", q2.ID, 5, base.AddDate(0, 0, 1))

	graded, err := service.ListGraded(ctx, "student-1")
	if err != nil {
		t.Fatalf("ListGraded failed: %v", err)
	}
	if len(graded) != 2 {
		t.Fatalf("Expected 2 graded attempts, got %d", len(graded))
	}
	if graded[0].Status != AttemptStatusFinalized {
		t.Errorf("Expected finalized status, got %q", graded[0].Status)
	}
	// Newest first: the later Science attempt leads the revision list.
	if graded[0].QuestionID != q2.ID {
		t.Errorf("Expected newest attempt first, got question %d", graded[0].QuestionID)
	}
}

func TestSubmissionService_PreviousAttempt(t *testing.T) {
	repo, _, service := newSubmissionFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "student-1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	question := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel:  "8th",
		Subject:     "Science",
		Question:    "Explain photosynthesis.",
		ModelAnswer: "Plants use sunlight water and carbon dioxide to produce glucose and oxygen",
	})

	if _, err := service.PreviousAttempt(ctx, "student-1", question.ID); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("Expected ErrAttemptNotFound before any submission, got %v", err)
	}

	if _, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "Something vague about plants",
	}, "student-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	prev, err := service.PreviousAttempt(ctx, "student-1", question.ID)
	if err != nil {
		t.Fatalf("PreviousAttempt failed: %v", err)
	}
	if prev.AnswerText != "Something vague about plants" {
		t.Errorf("Expected the pending answer text, got %q", prev.AnswerText)
	}
	if prev.Status != AttemptStatusPending {
		t.Errorf("Expected pending status, got %q", prev.Status)
	}
	if prev.Remark == "" {
		t.Error("Expected the corrective remark on the pending attempt")
	}

	// Finalizing the pair closes the resubmission page.
	if _, err := service.Submit(ctx, &SubmitAnswerRequest{
		QuestionID: question.ID,
		AnswerText: "Plants use sunlight water and carbon dioxide to produce glucose and oxygen",
	}, "student-1"); err != nil {
		t.Fatalf("Final submit failed: %v", err)
	}
	if _, err := service.PreviousAttempt(ctx, "student-1", question.ID); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("Expected ErrAttemptNotFound after finalization, got %v", err)
	}
}
