package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/validator"
)

func newHomeworkFixture() (*mockRepository, HomeworkService) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	service := NewHomeworkService(nil, repo, logger, validator.New(), nil)
	return repo, service
}

func TestHomeworkService_Create(t *testing.T) {
	repo, service := newHomeworkFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "t1", UserName: "Mr Rao", Role: models.RoleTeacher})

	resp, err := service.Create(ctx, &CreateHomeworkRequest{
		ClassLevel:  "8th",
		Subject:     "Science",
		Question:    "Explain photosynthesis.",
		ModelAnswer: "Plants use sunlight water and carbon dioxide to produce glucose and oxygen",
	}, "t1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if resp.ID == 0 {
		t.Error("Expected a question ID to be assigned")
	}
	if resp.UploadedBy != "t1" {
		t.Errorf("Expected uploader t1, got %s", resp.UploadedBy)
	}

	// Default due date lands one day after upload.
	wantDue := time.Now().AddDate(0, 0, 1)
	if resp.DueDate.Sub(wantDue) > time.Minute || wantDue.Sub(resp.DueDate) > time.Minute {
		t.Errorf("Expected due date about %v, got %v", wantDue, resp.DueDate)
	}

	// Twelve-word model answer: one second per word, above the floor.
	if resp.TimerSeconds != 12 {
		t.Errorf("Expected timer of 12 seconds, got %d", resp.TimerSeconds)
	}
}

func TestHomeworkService_Create_RejectsStudents(t *testing.T) {
	repo, service := newHomeworkFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "s1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})

	_, err := service.Create(ctx, &CreateHomeworkRequest{
		ClassLevel:  "8th",
		Subject:     "Math",
		Question:    "Q",
		ModelAnswer: "A",
	}, "s1")
	if !IsPermissionError(err) {
		t.Fatalf("Expected permission error, got %v", err)
	}
}

func TestHomeworkService_Create_RejectsUnknownSubject(t *testing.T) {
	repo, service := newHomeworkFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "t1", UserName: "Mr Rao", Role: models.RoleTeacher})

	_, err := service.Create(ctx, &CreateHomeworkRequest{
		ClassLevel:  "8th",
		Subject:     "Astrology",
		Question:    "Q",
		ModelAnswer: "A",
	}, "t1")
	if err == nil {
		t.Fatal("Expected validation error for unknown subject")
	}
}

func TestHomeworkService_GetByID_HidesModelAnswerFromStudents(t *testing.T) {
	repo, service := newHomeworkFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "s1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	repo.addUser(&models.User{ID: "t1", UserName: "Mr Rao", Role: models.RoleTeacher})
	q := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel: "8th", Subject: "Math",
		Question: "Define a prime number.", ModelAnswer: "secret",
	})

	asStudent, err := service.GetByID(ctx, q.ID, "s1")
	if err != nil {
		t.Fatalf("GetByID as student failed: %v", err)
	}
	if asStudent.ModelAnswer != "" {
		t.Error("Model answer must be hidden from students")
	}

	asTeacher, err := service.GetByID(ctx, q.ID, "t1")
	if err != nil {
		t.Fatalf("GetByID as teacher failed: %v", err)
	}
	if asTeacher.ModelAnswer != "secret" {
		t.Errorf("Expected model answer for teachers, got %q", asTeacher.ModelAnswer)
	}
}

func TestHomeworkService_GetByID_RejectsOtherClass(t *testing.T) {
	repo, service := newHomeworkFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "s1", UserName: "Asha", Role: models.RoleStudent, ClassLevel: "8th"})
	q := repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel: "9th", Subject: "Math", Question: "Q", ModelAnswer: "A",
	})

	_, err := service.GetByID(ctx, q.ID, "s1")
	if !IsPermissionError(err) {
		t.Fatalf("Expected permission error, got %v", err)
	}
}

func TestHomeworkService_TodayUploadsAndSelection(t *testing.T) {
	repo, service := newHomeworkFixture()
	ctx := context.Background()

	repo.addUser(&models.User{ID: "t1", UserName: "Mr Rao", Role: models.RoleTeacher})

	repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel: "8th", Subject: "Math", Question: "today math",
		ModelAnswer: "x", UploadedBy: "t1", AssignedDate: time.Now(),
	})
	repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel: "8th", Subject: "Science", Question: "today science",
		ModelAnswer: "y", UploadedBy: "t1", AssignedDate: time.Now(),
	})
	repo.addQuestion(&models.HomeworkQuestion{
		ClassLevel: "8th", Subject: "Math", Question: "yesterday",
		ModelAnswer: "z", UploadedBy: "t1", AssignedDate: time.Now().AddDate(0, 0, -1),
	})

	today, err := service.TodayUploads(ctx, "t1")
	if err != nil {
		t.Fatalf("TodayUploads failed: %v", err)
	}
	if len(today) != 2 {
		t.Errorf("Expected 2 uploads today, got %d", len(today))
	}

	selection, err := service.UploadSelection(ctx, "t1", &UploadSelectionRequest{
		ClassLevel: "8th",
		Subject:    "Math",
	})
	if err != nil {
		t.Fatalf("UploadSelection failed: %v", err)
	}
	if len(selection) != 1 || selection[0].Question != "today math" {
		t.Errorf("Expected only today's math upload, got %+v", selection)
	}
}

func TestTimerSeconds(t *testing.T) {
	if got := timerSeconds("short answer"); got != minTimerSeconds {
		t.Errorf("Expected floor of %d, got %d", minTimerSeconds, got)
	}
	long := "one two three four five six seven eight nine ten eleven twelve"
	if got := timerSeconds(long); got != 12 {
		t.Errorf("Expected 12 seconds, got %d", got)
	}
}
