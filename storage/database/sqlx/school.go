package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mwangaza/darasa/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sql.DB) *schoolRepository {
	return &schoolRepository{db: sqlx.NewDb(db, "postgres")}
}

// Row types; kept separate from the domain models so the db tags and
// column quirks stay out of core.
type (
	classRow struct {
		ID        string    `db:"id"`
		SchoolID  string    `db:"school_id"`
		TeacherID string    `db:"teacher_id"`
		Name      string    `db:"name"`
		CreatedAt time.Time `db:"created_at"`
	}

	classSummaryRow struct {
		ID              string `db:"id"`
		Name            string `db:"name"`
		StudentCount    int    `db:"student_count"`
		AssignmentCount int    `db:"assignment_count"`
	}

	studentRow struct {
		ID        string      `db:"id"`
		ClassID   string      `db:"class_id"`
		Name      string      `db:"name"`
		Email     null.String `db:"email"`
		CreatedAt time.Time   `db:"created_at"`
	}

	assignmentRow struct {
		ID              string    `db:"id"`
		ClassID         string    `db:"class_id"`
		Title           string    `db:"title"`
		Topic           string    `db:"topic"`
		DueAt           time.Time `db:"due_at"`
		TimeEstimateMin int       `db:"time_estimate_min"`
		CreatedAt       time.Time `db:"created_at"`
	}

	submissionRow struct {
		ID           string    `db:"id"`
		AssignmentID string    `db:"assignment_id"`
		StudentID    string    `db:"student_id"`
		ScorePct     float64   `db:"score_pct"`
		CompletedAt  time.Time `db:"completed_at"`
	}

	practiceSessionRow struct {
		ID          string    `db:"id"`
		StudentID   string    `db:"student_id"`
		StartedAt   time.Time `db:"started_at"`
		DurationMin int       `db:"duration_min"`
		AccuracyPct float64   `db:"accuracy_pct"`
	}

	moodCheckRow struct {
		ID        string    `db:"id"`
		StudentID string    `db:"student_id"`
		Date      time.Time `db:"date"`
		MoodScore int       `db:"mood_score"`
	}
)

// isBadUUID reports whether err is postgres rejecting a malformed uuid literal.
// Treated the same as "no rows": the caller must not learn anything from it.
func isBadUUID(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code.Name() == "invalid_text_representation"
}

func (repo schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	if sch.ID == "" {
		sch.ID = uuid.New().String()
	}
	if sch.CreatedAt.IsZero() {
		sch.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO school (id, name, timezone, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, q, sch.ID, sch.Name, sch.Timezone, sch.CreatedAt); err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo schoolRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	if cls.ID == "" {
		cls.ID = uuid.New().String()
	}
	if cls.CreatedAt.IsZero() {
		cls.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO class (id, school_id, teacher_id, name, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, q, cls.ID, cls.SchoolID, cls.TeacherID, cls.Name, cls.CreatedAt); err != nil {
		return school.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo schoolRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	if std.ID == "" {
		std.ID = uuid.New().String()
	}
	if std.CreatedAt.IsZero() {
		std.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO student (id, class_id, name, email, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, q, std.ID, std.ClassID, std.Name, std.Email, std.CreatedAt); err != nil {
		return school.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo schoolRepository) CreateAssignment(ctx context.Context, asg school.Assignment) (school.Assignment, error) {
	if asg.ID == "" {
		asg.ID = uuid.New().String()
	}
	if asg.CreatedAt.IsZero() {
		asg.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO assignment (id, class_id, title, topic, due_at, time_estimate_min, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q, asg.ID, asg.ClassID, asg.Title, asg.Topic, asg.DueAt, asg.TimeEstimateMin, asg.CreatedAt)
	if err != nil {
		return school.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo schoolRepository) CreateSubmission(ctx context.Context, sub school.Submission) (school.Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	const q = `INSERT INTO submission (id, assignment_id, student_id, score_pct, completed_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, q, sub.ID, sub.AssignmentID, sub.StudentID, sub.ScorePct, sub.CompletedAt); err != nil {
		return school.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo schoolRepository) CreatePracticeSession(ctx context.Context, sess school.PracticeSession) (school.PracticeSession, error) {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	const q = `INSERT INTO practice_session (id, student_id, started_at, duration_min, accuracy_pct) VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, q, sess.ID, sess.StudentID, sess.StartedAt, sess.DurationMin, sess.AccuracyPct); err != nil {
		return school.PracticeSession{}, errors.Wrap(err, "inserting practice session")
	}
	return sess, nil
}

func (repo schoolRepository) CreateMoodCheck(ctx context.Context, mood school.MoodCheck) (school.MoodCheck, error) {
	if mood.ID == "" {
		mood.ID = uuid.New().String()
	}
	const q = `INSERT INTO mood_check (id, student_id, date, mood_score) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, q, mood.ID, mood.StudentID, mood.Date, mood.MoodScore); err != nil {
		return school.MoodCheck{}, errors.Wrap(err, "inserting mood check")
	}
	return mood, nil
}

func (repo schoolRepository) GetClass(ctx context.Context, id string) (school.Class, error) {
	var row classRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM class WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows || isBadUUID(err) {
			return school.Class{}, school.ErrNotFound
		}
		return school.Class{}, errors.Wrap(err, "getting class")
	}
	return school.Class(row), nil
}

func (repo schoolRepository) QueryTeacherClasses(ctx context.Context, teacherID, schoolID string) ([]school.ClassSummary, error) {
	const q = `SELECT c.id, c.name,
			(SELECT COUNT(*) FROM student s WHERE s.class_id = c.id) AS student_count,
			(SELECT COUNT(*) FROM assignment a WHERE a.class_id = c.id) AS assignment_count
		FROM class c
		WHERE c.teacher_id = $1 AND c.school_id = $2
		ORDER BY c.name`
	var rows []classSummaryRow
	if err := repo.db.SelectContext(ctx, &rows, q, teacherID, schoolID); err != nil {
		return nil, errors.Wrap(err, "querying teacher classes")
	}

	summaries := make([]school.ClassSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, school.ClassSummary(row))
	}
	return summaries, nil
}

func (repo schoolRepository) QueryClassStudents(ctx context.Context, classID string) ([]school.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM student WHERE class_id = $1 ORDER BY name`, classID); err != nil {
		return nil, errors.Wrap(err, "querying class students")
	}

	students := make([]school.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, school.Student(row))
	}
	return students, nil
}

func (repo schoolRepository) QueryClassAssignments(ctx context.Context, classID string) ([]school.Assignment, error) {
	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM assignment WHERE class_id = $1 ORDER BY due_at`, classID); err != nil {
		return nil, errors.Wrap(err, "querying class assignments")
	}

	assignments := make([]school.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, school.Assignment(row))
	}
	return assignments, nil
}

func (repo schoolRepository) QueryStudentRecords(ctx context.Context, classID string) ([]school.StudentRecords, error) {
	students, err := repo.QueryClassStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return []school.StudentRecords{}, nil
	}

	ids := make([]string, 0, len(students))
	index := make(map[string]int, len(students))
	records := make([]school.StudentRecords, 0, len(students))
	for i, std := range students {
		ids = append(ids, std.ID)
		index[std.ID] = i
		records = append(records, school.StudentRecords{Student: std})
	}

	// submissions
	q, args, err := sqlx.In(`SELECT * FROM submission WHERE student_id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building submissions query")
	}
	var subRows []submissionRow
	if err := repo.db.SelectContext(ctx, &subRows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	for _, row := range subRows {
		i := index[row.StudentID]
		records[i].Submissions = append(records[i].Submissions, school.Submission(row))
	}

	// practice sessions
	q, args, err = sqlx.In(`SELECT * FROM practice_session WHERE student_id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building practice sessions query")
	}
	var sessRows []practiceSessionRow
	if err := repo.db.SelectContext(ctx, &sessRows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying practice sessions")
	}
	for _, row := range sessRows {
		i := index[row.StudentID]
		records[i].Sessions = append(records[i].Sessions, school.PracticeSession(row))
	}

	// mood checks
	q, args, err = sqlx.In(`SELECT * FROM mood_check WHERE student_id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building mood checks query")
	}
	var moodRows []moodCheckRow
	if err := repo.db.SelectContext(ctx, &moodRows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying mood checks")
	}
	for _, row := range moodRows {
		i := index[row.StudentID]
		records[i].Moods = append(records[i].Moods, school.MoodCheck(row))
	}

	return records, nil
}
