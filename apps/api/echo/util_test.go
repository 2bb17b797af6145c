package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/mwangaza/darasa/core"
	"github.com/mwangaza/darasa/core/school"
	"github.com/mwangaza/darasa/core/user"
	"github.com/mwangaza/darasa/services/logger"
	"github.com/mwangaza/darasa/storage/database/inmem"
)

type httpErr struct {
	Error string `json:"error"`
}

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func setup(t *testing.T) (Server, user.Repository, school.Repository) {
	core.Conf.TestMode = true

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo := inmemdb.NewUserRepository(db)
	schRepo := inmemdb.NewSchoolRepository(db)

	validate, translator := core.NewValidator()
	srv := NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logsvc.NewStdLogger(log.New(os.Stdout, "test ", log.LstdFlags)),
		Validate:       validate,
		Translator:     translator,
		UserSvc:        user.NewService(usrRepo),
		SchoolSvc:      school.NewService(schRepo, validate),
	})
	return srv, usrRepo, schRepo
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func getExpiredToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	claims.IssuedAt = time.Now().Add(-14 * 24 * time.Hour).Unix()
	claims.ExpiresAt = time.Now().Add(-7 * 24 * time.Hour).Unix()
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getExpiredToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "%s: unexpected status; body: %s", tt.name, rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String(), tt.name)
	}
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), "%s: missing correlation id", tt.name)
}

func runHTTPTests(t *testing.T, srv Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// fixtures

func createTeacher(t *testing.T, repo user.Repository, name, email, schoolID string) user.User {
	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		Name:      name,
		Role:      user.RoleTeacher,
		SchoolID:  schoolID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createTeacher() failed: %v", err)
	}
	return usr
}

func createClass(t *testing.T, repo school.Repository, teacherID, schoolID, name string) school.Class {
	cls, err := repo.CreateClass(context.Background(), school.Class{SchoolID: schoolID, TeacherID: teacherID, Name: name})
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return cls
}

func createStudent(t *testing.T, repo school.Repository, classID, name, email string) school.Student {
	std := school.Student{ClassID: classID, Name: name}
	if email != "" {
		std.Email = null.StringFrom(email)
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func parseToken(t *testing.T, tokenStr string) *Claims {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(core.Conf.SecretKey), nil
	})
	if err != nil {
		t.Fatalf("parseToken() failed: %v", err)
	}
	return claims
}
