package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests.
type mockRepository struct {
	mu            sync.Mutex
	users         map[string]*models.User
	questions     map[uint]*models.HomeworkQuestion
	attempts      []*models.AnswerAttempt
	nextAttemptID uint
	nextQID       uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:         make(map[string]*models.User),
		questions:     make(map[uint]*models.HomeworkQuestion),
		nextAttemptID: 1,
		nextQID:       1,
	}
}

func (m *mockRepository) addUser(u *models.User) *models.User {
	m.users[u.ID] = u
	return u
}

func (m *mockRepository) addQuestion(q *models.HomeworkQuestion) *models.HomeworkQuestion {
	if q.ID == 0 {
		q.ID = m.nextQID
		m.nextQID++
	} else if q.ID >= m.nextQID {
		m.nextQID = q.ID + 1
	}
	m.questions[q.ID] = q
	return q
}

func (m *mockRepository) Question() repositories.QuestionRepository   { return (*mockQuestionRepo)(m) }
func (m *mockRepository) Answer() repositories.AnswerRepository       { return (*mockAnswerRepo)(m) }
func (m *mockRepository) User() repositories.UserRepository           { return (*mockUserRepo)(m) }
func (m *mockRepository) Dashboard() repositories.DashboardRepository { return (*mockDashboardRepo)(m) }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== QUESTIONS =====

type mockQuestionRepo mockRepository

func (m *mockQuestionRepo) Create(ctx context.Context, tx *gorm.DB, q *models.HomeworkQuestion) error {
	(*mockRepository)(m).addQuestion(q)
	return nil
}

func (m *mockQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.HomeworkQuestion, error) {
	if q, ok := m.questions[id]; ok {
		return q, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.HomeworkQuestion, int64, error) {
	var out []*models.HomeworkQuestion
	for _, q := range m.questions {
		out = append(out, q)
	}
	return out, int64(len(out)), nil
}

func (m *mockQuestionRepo) GetByClass(ctx context.Context, tx *gorm.DB, classLevel string) ([]*models.HomeworkQuestion, error) {
	var out []*models.HomeworkQuestion
	for _, q := range m.questions {
		if q.ClassLevel == classLevel {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockQuestionRepo) GetByUploaderOnDate(ctx context.Context, tx *gorm.DB, uploaderID string, day time.Time) ([]*models.HomeworkQuestion, error) {
	var out []*models.HomeworkQuestion
	for _, q := range m.questions {
		if q.UploadedBy == uploaderID && sameDay(q.AssignedDate, day) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestionRepo) GetByUploaderSelection(ctx context.Context, tx *gorm.DB, uploaderID string, day time.Time, classLevel, subject string) ([]*models.HomeworkQuestion, error) {
	var out []*models.HomeworkQuestion
	for _, q := range m.questions {
		if q.UploadedBy == uploaderID && sameDay(q.AssignedDate, day) && q.ClassLevel == classLevel && q.Subject == subject {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestionRepo) CountByUploader(ctx context.Context, tx *gorm.DB, uploaderID string) (int64, error) {
	var count int64
	for _, q := range m.questions {
		if q.UploadedBy == uploaderID {
			count++
		}
	}
	return count, nil
}

func (m *mockQuestionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(len(m.questions)), nil
}

// ===== ANSWERS =====

type mockAnswerRepo mockRepository

func (m *mockAnswerRepo) Create(ctx context.Context, tx *gorm.DB, attempt *models.AnswerAttempt) error {
	// Mirrors the partial unique index: one ungraded attempt per pair.
	if !attempt.IsGraded() {
		for _, a := range m.attempts {
			if a.StudentID == attempt.StudentID && a.QuestionID == attempt.QuestionID && !a.IsGraded() {
				return fmt.Errorf("attempt already live for student %s question %d: %w",
					attempt.StudentID, attempt.QuestionID, repositories.ErrDuplicate)
			}
		}
	}
	attempt.ID = m.nextAttemptID
	m.nextAttemptID++
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *mockAnswerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AnswerAttempt, error) {
	for _, a := range m.attempts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockAnswerRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AnswerFilters) ([]*models.AnswerAttempt, int64, error) {
	var matched []*models.AnswerAttempt
	for _, a := range m.attempts {
		if filters.StudentID != nil && a.StudentID != *filters.StudentID {
			continue
		}
		if filters.QuestionID != nil && a.QuestionID != *filters.QuestionID {
			continue
		}
		if filters.Graded != nil && a.IsGraded() != *filters.Graded {
			continue
		}
		matched = append(matched, a)
	}
	return matched, int64(len(matched)), nil
}

func (m *mockAnswerRepo) GetUngraded(ctx context.Context, tx *gorm.DB, studentID string, questionID uint) (*models.AnswerAttempt, error) {
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.QuestionID == questionID && !a.IsGraded() {
			return a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockAnswerRepo) DeleteUngraded(ctx context.Context, tx *gorm.DB, studentID string, questionID uint) error {
	kept := m.attempts[:0]
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.QuestionID == questionID && !a.IsGraded() {
			continue
		}
		kept = append(kept, a)
	}
	m.attempts = kept
	return nil
}

func (m *mockAnswerRepo) GetLatest(ctx context.Context, tx *gorm.DB, studentID string, questionID uint) (*models.AnswerAttempt, error) {
	var latest *models.AnswerAttempt
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.QuestionID == questionID {
			if latest == nil || a.SubmittedDate.After(latest.SubmittedDate) {
				latest = a
			}
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	return latest, nil
}

func (m *mockAnswerRepo) GetGradedByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.AnswerAttempt, error) {
	var out []*models.AnswerAttempt
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.IsGraded() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedDate.After(out[j].SubmittedDate) })
	return out, nil
}

func (m *mockAnswerRepo) GetGradedQuestionIDs(ctx context.Context, tx *gorm.DB, studentID string) ([]uint, error) {
	seen := make(map[uint]bool)
	var ids []uint
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.IsGraded() && !seen[a.QuestionID] {
			seen[a.QuestionID] = true
			ids = append(ids, a.QuestionID)
		}
	}
	return ids, nil
}

func (m *mockAnswerRepo) HasAnyAttempt(ctx context.Context, tx *gorm.DB, studentID string, questionIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(questionIDs))
	for _, a := range m.attempts {
		if a.StudentID == studentID {
			result[a.QuestionID] = true
		}
	}
	return result, nil
}

func (m *mockAnswerRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(len(m.attempts)), nil
}

// ===== USERS =====

type mockUserRepo mockRepository

func (m *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockUserRepo) GetStudentsByClass(ctx context.Context, tx *gorm.DB, classLevel string) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		if u.Role == models.RoleStudent && u.ClassLevel == classLevel {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) GetTeachersRanked(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		if u.Role == models.RoleTeacher {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SalaryPoints > out[j].SalaryPoints })
	return out, nil
}

func (m *mockUserRepo) CountByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (m *mockUserRepo) GetUnconfirmedStudents(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		if u.Role == models.RoleStudent && !u.PaymentConfirmed {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) GetUnconfirmedStaff(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		if u.Role.IsStaff() && !u.IsConfirmed {
			out = append(out, u)
		}
	}
	return out, nil
}

// ===== DASHBOARD =====

type mockDashboardRepo mockRepository

func (m *mockDashboardRepo) AverageGrade(ctx context.Context, tx *gorm.DB, studentID string) (float64, error) {
	var sum, count float64
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.IsGraded() {
			sum += float64(*a.Grade)
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / count, nil
}

func (m *mockDashboardRepo) SubjectAverages(ctx context.Context, tx *gorm.DB, studentID string) ([]repositories.SubjectAverage, error) {
	return m.subjectAverages(func(a *models.AnswerAttempt) bool { return a.StudentID == studentID }), nil
}

func (m *mockDashboardRepo) SchoolSubjectAverages(ctx context.Context, tx *gorm.DB) ([]repositories.SubjectAverage, error) {
	return m.subjectAverages(func(*models.AnswerAttempt) bool { return true }), nil
}

func (m *mockDashboardRepo) subjectAverages(include func(*models.AnswerAttempt) bool) []repositories.SubjectAverage {
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for _, a := range m.attempts {
		if !a.IsGraded() || !include(a) {
			continue
		}
		q, ok := m.questions[a.QuestionID]
		if !ok {
			continue
		}
		sums[q.Subject] += float64(*a.Grade)
		counts[q.Subject]++
	}
	var out []repositories.SubjectAverage
	for subject, sum := range sums {
		out = append(out, repositories.SubjectAverage{Subject: subject, AverageGrade: sum / counts[subject]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AverageGrade > out[j].AverageGrade })
	return out
}

func (m *mockDashboardRepo) ClassAverages(ctx context.Context, tx *gorm.DB) ([]repositories.ClassAverage, error) {
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for _, a := range m.attempts {
		if !a.IsGraded() {
			continue
		}
		u, ok := m.users[a.StudentID]
		if !ok {
			continue
		}
		sums[u.ClassLevel] += float64(*a.Grade)
		counts[u.ClassLevel]++
	}
	var out []repositories.ClassAverage
	for class, sum := range sums {
		out = append(out, repositories.ClassAverage{ClassLevel: class, AverageGrade: sum / counts[class]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AverageGrade > out[j].AverageGrade })
	return out, nil
}

func (m *mockDashboardRepo) ScoreSeries(ctx context.Context, tx *gorm.DB, studentID string) ([]repositories.ScorePoint, error) {
	var out []repositories.ScorePoint
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.IsGraded() {
			out = append(out, repositories.ScorePoint{Date: a.SubmittedDate, Grade: *a.Grade})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *mockDashboardRepo) ClassLeaderboard(ctx context.Context, tx *gorm.DB, classLevel string) ([]repositories.LeaderboardEntry, error) {
	entries := m.leaderboard(func(u *models.User) bool { return u.ClassLevel == classLevel })
	sort.Slice(entries, func(i, j int) bool { return entries[i].AverageGrade > entries[j].AverageGrade })
	return entries, nil
}

func (m *mockDashboardRepo) TopStudents(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.LeaderboardEntry, error) {
	entries := m.leaderboard(func(*models.User) bool { return true })
	sort.Slice(entries, func(i, j int) bool { return entries[i].AverageGrade > entries[j].AverageGrade })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *mockDashboardRepo) StudentsRanked(ctx context.Context, tx *gorm.DB) ([]repositories.LeaderboardEntry, error) {
	entries := m.leaderboard(func(*models.User) bool { return true })
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ClassLevel != entries[j].ClassLevel {
			return entries[i].ClassLevel < entries[j].ClassLevel
		}
		return entries[i].AverageGrade > entries[j].AverageGrade
	})
	return entries, nil
}

func (m *mockDashboardRepo) leaderboard(include func(*models.User) bool) []repositories.LeaderboardEntry {
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for _, a := range m.attempts {
		if !a.IsGraded() {
			continue
		}
		u, ok := m.users[a.StudentID]
		if !ok || !include(u) {
			continue
		}
		sums[u.ID] += float64(*a.Grade)
		counts[u.ID]++
	}
	var out []repositories.LeaderboardEntry
	for id, sum := range sums {
		u := m.users[id]
		out = append(out, repositories.LeaderboardEntry{
			StudentID:    id,
			StudentName:  u.UserName,
			ClassLevel:   u.ClassLevel,
			AverageGrade: sum / counts[id],
		})
	}
	return out
}

func (m *mockDashboardRepo) UploadActivityOnDate(ctx context.Context, tx *gorm.DB, day time.Time) ([]repositories.TeacherActivity, error) {
	counts := make(map[string]int64)
	for _, q := range m.questions {
		if sameDay(q.AssignedDate, day) {
			counts[q.UploadedBy]++
		}
	}
	var out []repositories.TeacherActivity
	for id, count := range counts {
		name := id
		if u, ok := m.users[id]; ok {
			name = u.UserName
		}
		out = append(out, repositories.TeacherActivity{TeacherID: id, TeacherName: name, Count: count})
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
