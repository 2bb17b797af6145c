package school

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/mwangaza/darasa/core/user"
)

var (
	// errors
	// ErrClassAccessDenied covers every failed class resolution: wrong teacher,
	// wrong school or no such class. Callers must not be able to tell these
	// apart, lest they probe for other tenants' class IDs.
	ErrClassAccessDenied = errors.New("access denied")
)

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		CreateClass(ctx context.Context, cls Class) (Class, error)
		CreateStudent(ctx context.Context, std Student) (Student, error)
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		CreatePracticeSession(ctx context.Context, sess PracticeSession) (PracticeSession, error)
		CreateMoodCheck(ctx context.Context, mood MoodCheck) (MoodCheck, error)

		GetClass(ctx context.Context, id string) (Class, error)
		// QueryTeacherClasses returns summaries of the classes owned by the
		// given teacher within the given school.
		QueryTeacherClasses(ctx context.Context, teacherID, schoolID string) ([]ClassSummary, error)
		// QueryClassStudents returns a class's roster ordered by name ascending.
		QueryClassStudents(ctx context.Context, classID string) ([]Student, error)
		// QueryClassAssignments returns a class's assignments ordered by due date ascending.
		QueryClassAssignments(ctx context.Context, classID string) ([]Assignment, error)
		// QueryStudentRecords returns a class's roster (name ascending) with each
		// student's submissions, practice sessions and mood checks attached.
		QueryStudentRecords(ctx context.Context, classID string) ([]StudentRecords, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

// ErrNotFound is returned by repository Get* lookups. It never crosses the
// service boundary for class-scoped reads; see ErrClassAccessDenied.
var ErrNotFound = errors.New("not found")

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// AuthorizeClass resolves classID and checks it against the caller's identity.
// The class must be owned by the calling teacher and belong to their school;
// anything else - including a class that does not exist - is ErrClassAccessDenied.
func (svc *Service) AuthorizeClass(ctx context.Context, ident user.Identity, classID string) (Class, error) {
	cls, err := svc.repo.GetClass(ctx, classID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Class{}, ErrClassAccessDenied
		}
		return Class{}, err
	}
	if cls.TeacherID != ident.UserID || cls.SchoolID != ident.SchoolID {
		return Class{}, ErrClassAccessDenied
	}
	return cls, nil
}

func (svc *Service) QueryClasses(ctx context.Context, ident user.Identity) ([]ClassSummary, error) {
	return svc.repo.QueryTeacherClasses(ctx, ident.UserID, ident.SchoolID)
}

func (svc *Service) Roster(ctx context.Context, ident user.Identity, classID string) ([]Student, error) {
	if _, err := svc.AuthorizeClass(ctx, ident, classID); err != nil {
		return nil, err
	}
	return svc.repo.QueryClassStudents(ctx, classID)
}

func (svc *Service) Metrics(ctx context.Context, ident user.Identity, classID string) ([]StudentMetric, error) {
	if _, err := svc.AuthorizeClass(ctx, ident, classID); err != nil {
		return nil, err
	}
	records, err := svc.repo.QueryStudentRecords(ctx, classID)
	if err != nil {
		return nil, err
	}
	return ComputeStudentMetrics(records), nil
}

func (svc *Service) Assignments(ctx context.Context, ident user.Identity, classID string) ([]Assignment, error) {
	if _, err := svc.AuthorizeClass(ctx, ident, classID); err != nil {
		return nil, err
	}
	return svc.repo.QueryClassAssignments(ctx, classID)
}

// CreateAssignment validates na, checks class ownership and persists the new
// Assignment. Validation runs before authorization so a malformed classId is a
// 400, not a 403.
func (svc *Service) CreateAssignment(ctx context.Context, ident user.Identity, na NewAssignment) (Assignment, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Assignment{}, err
	}
	if _, err := svc.AuthorizeClass(ctx, ident, na.ClassID); err != nil {
		return Assignment{}, err
	}
	return svc.repo.CreateAssignment(ctx, na.assignment())
}
