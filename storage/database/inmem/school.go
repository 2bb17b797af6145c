package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mwangaza/darasa/core/school"
)

type schoolRepository struct {
	db *DB
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateSchool(_ context.Context, sch school.School) (school.School, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if sch.ID == "" {
		sch.ID = uuid.New().String()
	}
	if sch.CreatedAt.IsZero() {
		sch.CreatedAt = time.Now().UTC()
	}
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) CreateClass(_ context.Context, cls school.Class) (school.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if cls.ID == "" {
		cls.ID = uuid.New().String()
	}
	if cls.CreatedAt.IsZero() {
		cls.CreatedAt = time.Now().UTC()
	}
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) CreateStudent(_ context.Context, std school.Student) (school.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if std.ID == "" {
		std.ID = uuid.New().String()
	}
	if std.CreatedAt.IsZero() {
		std.CreatedAt = time.Now().UTC()
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *schoolRepository) CreateAssignment(_ context.Context, asg school.Assignment) (school.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if asg.ID == "" {
		asg.ID = uuid.New().String()
	}
	if asg.CreatedAt.IsZero() {
		asg.CreatedAt = time.Now().UTC()
	}
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *schoolRepository) CreateSubmission(_ context.Context, sub school.Submission) (school.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	repo.db.submissions[sub.ID] = &sub
	return sub, nil
}

func (repo *schoolRepository) CreatePracticeSession(_ context.Context, sess school.PracticeSession) (school.PracticeSession, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *schoolRepository) CreateMoodCheck(_ context.Context, mood school.MoodCheck) (school.MoodCheck, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if mood.ID == "" {
		mood.ID = uuid.New().String()
	}
	repo.db.moods[mood.ID] = &mood
	return mood, nil
}

func (repo *schoolRepository) GetClass(_ context.Context, id string) (school.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return school.Class{}, school.ErrNotFound
}

func (repo *schoolRepository) QueryTeacherClasses(_ context.Context, teacherID, schoolID string) ([]school.ClassSummary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	summaries := make([]school.ClassSummary, 0)
	for _, cls := range repo.db.classes {
		if cls.TeacherID != teacherID || cls.SchoolID != schoolID {
			continue
		}
		summary := school.ClassSummary{ID: cls.ID, Name: cls.Name}
		for _, std := range repo.db.students {
			if std.ClassID == cls.ID {
				summary.StudentCount++
			}
		}
		for _, asg := range repo.db.assignments {
			if asg.ClassID == cls.ID {
				summary.AssignmentCount++
			}
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

func (repo *schoolRepository) QueryClassStudents(_ context.Context, classID string) ([]school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.classStudents(classID), nil
}

func (repo *schoolRepository) classStudents(classID string) []school.Student {
	students := make([]school.Student, 0)
	for _, std := range repo.db.students {
		if std.ClassID == classID {
			students = append(students, *std)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students
}

func (repo *schoolRepository) QueryClassAssignments(_ context.Context, classID string) ([]school.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	assignments := make([]school.Assignment, 0)
	for _, asg := range repo.db.assignments {
		if asg.ClassID == classID {
			assignments = append(assignments, *asg)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].DueAt.Before(assignments[j].DueAt) })
	return assignments, nil
}

func (repo *schoolRepository) QueryStudentRecords(_ context.Context, classID string) ([]school.StudentRecords, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := repo.classStudents(classID)
	records := make([]school.StudentRecords, 0, len(students))
	for _, std := range students {
		rec := school.StudentRecords{Student: std}
		for _, sub := range repo.db.submissions {
			if sub.StudentID == std.ID {
				rec.Submissions = append(rec.Submissions, *sub)
			}
		}
		for _, sess := range repo.db.sessions {
			if sess.StudentID == std.ID {
				rec.Sessions = append(rec.Sessions, *sess)
			}
		}
		for _, mood := range repo.db.moods {
			if mood.StudentID == std.ID {
				rec.Moods = append(rec.Moods, *mood)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
