package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mwangaza/darasa/core/school"
)

const (
	schoolID      = "22222222-2222-4222-8222-222222222222"
	otherSchoolID = "33333333-3333-4333-8333-333333333333"
	missingID     = "44444444-4444-4444-8444-444444444444"
)

func Test_classApi_query(t *testing.T) {
	srv, usrRepo, schRepo := setup(t)
	ctx := context.Background()

	teacher := createTeacher(t, usrRepo, "Ms. Johnson", "teacher@lincoln.edu", schoolID)
	colleague := createTeacher(t, usrRepo, "Mr. Banner", "banner@lincoln.edu", schoolID)

	cls1 := createClass(t, schRepo, teacher.ID, schoolID, "Algebra I - Period 1")
	cls2 := createClass(t, schRepo, teacher.ID, schoolID, "Geometry - Period 3")
	createClass(t, schRepo, colleague.ID, schoolID, "Chemistry - Period 2")

	createStudent(t, schRepo, cls1.ID, "Alice Smith", "alice@example.com")
	createStudent(t, schRepo, cls1.ID, "Bob Jones", "")
	if _, err := schRepo.CreateAssignment(ctx, school.Assignment{
		ClassID: cls1.ID, Title: "Homework", Topic: "Algebra", DueAt: time.Now().Add(24 * time.Hour), TimeEstimateMin: 30,
	}); err != nil {
		t.Fatalf("creating assignment failed: %v", err)
	}

	tests := []httpTest{
		{name: "auth required", path: "/classes", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "expired token", path: "/classes", token: getExpiredToken(t, teacher),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "garbage token", path: "/classes", token: "garbage",
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "own classes only, with counts", path: "/classes", token: getToken(t, teacher),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []school.ClassSummary{
				{ID: cls1.ID, Name: cls1.Name, StudentCount: 2, AssignmentCount: 1},
				{ID: cls2.ID, Name: cls2.Name},
			}),
		},
		{
			name: "no classes", path: "/classes",
			token:    getToken(t, createTeacher(t, usrRepo, "New Hire", "new@lincoln.edu", schoolID)),
			wantCode: http.StatusOK, wantData: []byte(`[]`),
		},
	}
	runHTTPTests(t, srv, tests)
}

func Test_classApi_roster(t *testing.T) {
	srv, usrRepo, schRepo := setup(t)

	teacher := createTeacher(t, usrRepo, "Ms. Johnson", "teacher@lincoln.edu", schoolID)
	colleague := createTeacher(t, usrRepo, "Mr. Banner", "banner@lincoln.edu", schoolID)
	impostor := createTeacher(t, usrRepo, "Dr. Doom", "doom@latveria.edu", otherSchoolID)

	cls := createClass(t, schRepo, teacher.ID, schoolID, "Algebra I - Period 1")
	bob := createStudent(t, schRepo, cls.ID, "Bob Jones", "")
	alice := createStudent(t, schRepo, cls.ID, "Alice Smith", "alice@example.com")

	accessDenied := marshallObj(t, httpErr{Error: "access denied"})
	path := fmt.Sprintf("/classes/%s/roster", cls.ID)

	tests := []httpTest{
		{name: "auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "other teacher", path: path, token: getToken(t, colleague), wantCode: http.StatusForbidden, wantData: accessDenied},
		{name: "other school", path: path, token: getToken(t, impostor), wantCode: http.StatusForbidden, wantData: accessDenied},
		{
			// same response shape whether the class exists or not
			name: "unknown class", path: fmt.Sprintf("/classes/%s/roster", missingID),
			token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: accessDenied,
		},
		{
			name: "roster ordered by name", path: path, token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marshallObj(t, []school.Student{alice, bob}),
		},
	}
	runHTTPTests(t, srv, tests)
}

func Test_classApi_metrics(t *testing.T) {
	srv, usrRepo, schRepo := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	teacher := createTeacher(t, usrRepo, "Ms. Johnson", "teacher@lincoln.edu", schoolID)
	colleague := createTeacher(t, usrRepo, "Mr. Banner", "banner@lincoln.edu", schoolID)
	cls := createClass(t, schRepo, teacher.ID, schoolID, "Algebra I - Period 1")

	alice := createStudent(t, schRepo, cls.ID, "Alice Smith", "alice@example.com")
	bob := createStudent(t, schRepo, cls.ID, "Bob Jones", "")

	for _, score := range []float64{95.5, 87.0, 72.5} {
		_, err := schRepo.CreateSubmission(ctx, school.Submission{
			StudentID: alice.ID, AssignmentID: missingID, ScorePct: score, CompletedAt: now,
		})
		assert.NoError(t, err)
	}
	sessions := []school.PracticeSession{
		{StudentID: alice.ID, StartedAt: now.Add(-24 * time.Hour), DurationMin: 25, AccuracyPct: 92.0},
		{StudentID: alice.ID, StartedAt: now.Add(-2 * 24 * time.Hour), DurationMin: 15, AccuracyPct: 88.0},
		{StudentID: alice.ID, StartedAt: now.Add(-8 * 24 * time.Hour), DurationMin: 30, AccuracyPct: 60.0}, // outside the week
	}
	for _, sess := range sessions {
		_, err := schRepo.CreatePracticeSession(ctx, sess)
		assert.NoError(t, err)
	}
	_, err := schRepo.CreateMoodCheck(ctx, school.MoodCheck{StudentID: alice.ID, Date: now.Add(-24 * time.Hour), MoodScore: 4})
	assert.NoError(t, err)
	_, err = schRepo.CreateMoodCheck(ctx, school.MoodCheck{StudentID: alice.ID, Date: now.Add(-3 * 24 * time.Hour), MoodScore: 1})
	assert.NoError(t, err)

	path := fmt.Sprintf("/classes/%s/metrics", cls.ID)
	token := getToken(t, teacher)

	tests := []httpTest{
		{name: "auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "other teacher", path: path, token: getToken(t, colleague),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "access denied"}),
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("per-student metrics", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, token)
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var metrics []school.StudentMetric
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
		if !assert.Len(t, metrics, 2) {
			return
		}

		assert.Equal(t, alice.ID, metrics[0].StudentID)
		assert.Equal(t, "Alice Smith", metrics[0].StudentName)
		assert.Equal(t, 85.0, metrics[0].AvgScorePct.Float64)
		assert.Equal(t, 2, metrics[0].SessionsThisWeek)
		assert.Equal(t, 80.0, metrics[0].AvgAccuracyPct.Float64)
		assert.Equal(t, 4, metrics[0].RecentMood.Int)

		assert.Equal(t, bob.ID, metrics[1].StudentID)
		assert.False(t, metrics[1].AvgScorePct.Valid)
		assert.False(t, metrics[1].AvgAccuracyPct.Valid)
		assert.False(t, metrics[1].RecentMood.Valid)
		assert.Equal(t, 0, metrics[1].SessionsThisWeek)
	})
}

func Test_classApi_assignments(t *testing.T) {
	srv, usrRepo, schRepo := setup(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	teacher := createTeacher(t, usrRepo, "Ms. Johnson", "teacher@lincoln.edu", schoolID)
	cls := createClass(t, schRepo, teacher.ID, schoolID, "Algebra I - Period 1")

	later, err := schRepo.CreateAssignment(ctx, school.Assignment{
		ClassID: cls.ID, Title: "Quadratic Functions Quiz", Topic: "Quadratic Functions",
		DueAt: now.Add(5 * 24 * time.Hour), TimeEstimateMin: 20,
	})
	assert.NoError(t, err)
	sooner, err := schRepo.CreateAssignment(ctx, school.Assignment{
		ClassID: cls.ID, Title: "Linear Equations Practice", Topic: "Linear Equations",
		DueAt: now.Add(3 * 24 * time.Hour), TimeEstimateMin: 30,
	})
	assert.NoError(t, err)

	tests := []httpTest{
		{
			name: "ordered by due date", path: fmt.Sprintf("/classes/%s/assignments", cls.ID), token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marshallObj(t, []school.Assignment{sooner, later}),
		},
	}
	runHTTPTests(t, srv, tests)
}

func Test_classApi_createAssignment(t *testing.T) {
	srv, usrRepo, schRepo := setup(t)

	teacher := createTeacher(t, usrRepo, "Ms. Johnson", "teacher@lincoln.edu", schoolID)
	colleague := createTeacher(t, usrRepo, "Mr. Banner", "banner@lincoln.edu", schoolID)
	cls := createClass(t, schRepo, teacher.ID, schoolID, "Algebra I - Period 1")

	token := getToken(t, teacher)
	dueAt := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second).Format(time.RFC3339)
	body := func(classID, title, topic, dueAt string, estimate int) []byte {
		return marshallObj(t, school.NewAssignment{
			ClassID: classID, Title: title, Topic: topic, DueAt: dueAt, TimeEstimateMin: estimate,
		})
	}

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/assignments",
			body: body(cls.ID, "T", "T", dueAt, 30), wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/assignments", token: token,
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"classId":         "this field is required",
				"title":           "this field is required",
				"topic":           "this field is required",
				"dueAt":           "this field is required",
				"timeEstimateMin": "this field is required",
			}),
		},
		{
			name: "malformed class id", method: http.MethodPost, path: "/assignments", token: token,
			body: body("nope", "Homework", "Algebra", dueAt, 30), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"classId": "must be a valid identifier"}),
		},
		{
			name: "malformed due date", method: http.MethodPost, path: "/assignments", token: token,
			body: body(cls.ID, "Homework", "Algebra", "next tuesday", 30), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"dueAt": "must be a valid RFC 3339 date-time"}),
		},
		{
			name: "negative time estimate", method: http.MethodPost, path: "/assignments", token: token,
			body: body(cls.ID, "Homework", "Algebra", dueAt, -5), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"timeEstimateMin": "must be a positive number"}),
		},
		{
			name: "zero time estimate", method: http.MethodPost, path: "/assignments", token: token,
			body: body(cls.ID, "Homework", "Algebra", dueAt, 0), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"timeEstimateMin": "this field is required"}),
		},
		{
			name: "non-integer time estimate", method: http.MethodPost, path: "/assignments", token: token,
			body:     []byte(fmt.Sprintf(`{"classId":%q,"title":"T","topic":"T","dueAt":%q,"timeEstimateMin":30.5}`, cls.ID, dueAt)),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "foreign class", method: http.MethodPost, path: "/assignments", token: getToken(t, colleague),
			body: body(cls.ID, "Homework", "Algebra", dueAt, 30), wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "access denied"}),
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("create then list round-trip", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/assignments", token, body(cls.ID, "Linear Equations Practice", "Linear Equations", dueAt, 30))
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created school.Assignment
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, cls.ID, created.ClassID)
		assert.Equal(t, "Linear Equations Practice", created.Title)
		assert.Equal(t, "Linear Equations", created.Topic)
		assert.Equal(t, dueAt, created.DueAt.Format(time.RFC3339))
		assert.Equal(t, 30, created.TimeEstimateMin)

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/classes/%s/assignments", cls.ID), token)
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var listed []school.Assignment
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		if assert.Len(t, listed, 1) {
			assert.Equal(t, created.ID, listed[0].ID)
		}
	})

	t.Run("nothing persisted on validation failure", func(t *testing.T) {
		cls2 := createClass(t, schRepo, teacher.ID, schoolID, "Geometry - Period 3")
		req, rec := newAuthRequest(http.MethodPost, "/assignments", token, body(cls2.ID, "Homework", "Algebra", dueAt, 0))
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/classes/%s/assignments", cls2.ID), token)
		srv.ServeHTTP(rec, req)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}
