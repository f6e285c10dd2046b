package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type memoryCourseRepo struct {
	courses map[uint]models.Course
}

func newMemoryCourseRepo(courses ...models.Course) *memoryCourseRepo {
	repo := &memoryCourseRepo{courses: make(map[uint]models.Course)}
	for _, course := range courses {
		repo.courses[course.ID] = course
	}
	return repo
}

func (m *memoryCourseRepo) GetByID(_ context.Context, id uint) (models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (m *memoryCourseRepo) ListByInstructor(_ context.Context, instructorID uint) ([]models.Course, error) {
	results := make([]models.Course, 0)
	for _, course := range m.courses {
		if course.InstructorID == instructorID {
			results = append(results, course)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryCourseRepo) Create(_ context.Context, course *models.Course) error {
	m.courses[course.ID] = *course
	return nil
}

func (m *memoryCourseRepo) Update(_ context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.courses[course.ID] = *course
	return nil
}

type memoryAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[uint]models.Assignment
	nextID      uint
	updates     int
}

func newMemoryAssignmentRepo(assignments ...models.Assignment) *memoryAssignmentRepo {
	repo := &memoryAssignmentRepo{
		assignments: make(map[uint]models.Assignment),
		nextID:      1,
	}
	for _, assignment := range assignments {
		repo.assignments[assignment.ID] = assignment
		if assignment.ID >= repo.nextID {
			repo.nextID = assignment.ID + 1
		}
	}
	return repo
}

func (m *memoryAssignmentRepo) ListByCourse(_ context.Context, courseID uint) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if assignment.CourseID == courseID {
			results = append(results, assignment)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].DueDate.Equal(results[j].DueDate) {
			return results[i].ID < results[j].ID
		}
		return results[i].DueDate.Before(results[j].DueDate)
	})
	return results, nil
}

func (m *memoryAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) GetByCourseAndID(_ context.Context, courseID, id uint) (models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	assignment, ok := m.assignments[id]
	if !ok || assignment.CourseID != courseID {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) TitleExists(_ context.Context, courseID uint, title string, excludeID *uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(title))
	for _, assignment := range m.assignments {
		if assignment.CourseID != courseID {
			continue
		}
		if excludeID != nil && assignment.ID == *excludeID {
			continue
		}
		if strings.ToLower(assignment.Title) == needle {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()
	m.assignments[m.nextID] = *assignment
	m.nextID++
	return nil
}

func (m *memoryAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.UpdatedAt = time.Now()
	m.assignments[assignment.ID] = *assignment
	m.updates++
	return nil
}

type memorySubmissionRepo struct {
	submissions map[uint]models.Submission
	nextID      uint
	updates     int
}

func newMemorySubmissionRepo(submissions ...models.Submission) *memorySubmissionRepo {
	repo := &memorySubmissionRepo{
		submissions: make(map[uint]models.Submission),
		nextID:      1,
	}
	for _, submission := range submissions {
		repo.submissions[submission.ID] = submission
		if submission.ID >= repo.nextID {
			repo.nextID = submission.ID + 1
		}
	}
	return repo
}

func (m *memorySubmissionRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	results := make([]models.Submission, 0)
	for _, submission := range m.submissions {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if len(filter.AssignmentIDs) > 0 {
			found := false
			for _, id := range filter.AssignmentIDs {
				if submission.AssignmentID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.LearnerID != nil && submission.LearnerID != *filter.LearnerID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		results = append(results, submission)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].SubmittedAt.Equal(results[j].SubmittedAt) {
			return results[i].ID < results[j].ID
		}
		return results[i].SubmittedAt.Before(results[j].SubmittedAt)
	})
	return results, nil
}

func (m *memorySubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memorySubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	submission.ID = m.nextID
	submission.CreatedAt = time.Now()
	submission.UpdatedAt = time.Now()
	m.submissions[m.nextID] = *submission
	m.nextID++
	return nil
}

func (m *memorySubmissionRepo) Update(_ context.Context, submission *models.Submission) error {
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	submission.UpdatedAt = time.Now()
	m.submissions[submission.ID] = *submission
	m.updates++
	return nil
}

type memoryEnrollmentRepo struct {
	enrollments []models.Enrollment
}

func newMemoryEnrollmentRepo(enrollments ...models.Enrollment) *memoryEnrollmentRepo {
	return &memoryEnrollmentRepo{enrollments: enrollments}
}

func (m *memoryEnrollmentRepo) GetByLearnerAndCourse(_ context.Context, learnerID, courseID uint) (models.Enrollment, error) {
	for _, enrollment := range m.enrollments {
		if enrollment.LearnerID == learnerID && enrollment.CourseID == courseID {
			return enrollment, nil
		}
	}
	return models.Enrollment{}, gorm.ErrRecordNotFound
}

func (m *memoryEnrollmentRepo) ListActiveByLearner(_ context.Context, learnerID uint) ([]models.Enrollment, error) {
	results := make([]models.Enrollment, 0)
	for _, enrollment := range m.enrollments {
		if enrollment.LearnerID == learnerID && enrollment.IsActive() {
			results = append(results, enrollment)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].EnrolledAt.Before(results[j].EnrolledAt) })
	return results, nil
}

func (m *memoryEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	m.enrollments = append(m.enrollments, *enrollment)
	return nil
}

type recorderStub struct {
	entries []ActivityEntry
}

func (r *recorderStub) Record(_ context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	r.entries = append(r.entries, entry)
	return dto.ActivityResponse{}, nil
}

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) Publish(_ context.Context, event Event) {
	r.events = append(r.events, event)
}
