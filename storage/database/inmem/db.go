package inmemdb

import (
	"sync"

	"github.com/mwangaza/darasa/core/school"
	"github.com/mwangaza/darasa/core/user"
)

// DB is a mutex-guarded in-memory store backing the repositories in tests.
type DB struct {
	mutex sync.RWMutex

	users       map[string]*user.User
	schools     map[string]*school.School
	classes     map[string]*school.Class
	students    map[string]*school.Student
	assignments map[string]*school.Assignment
	submissions map[string]*school.Submission
	sessions    map[string]*school.PracticeSession
	moods       map[string]*school.MoodCheck
}

func Open() (*DB, error) {
	db := &DB{
		users:       make(map[string]*user.User),
		schools:     make(map[string]*school.School),
		classes:     make(map[string]*school.Class),
		students:    make(map[string]*school.Student),
		assignments: make(map[string]*school.Assignment),
		submissions: make(map[string]*school.Submission),
		sessions:    make(map[string]*school.PracticeSession),
		moods:       make(map[string]*school.MoodCheck),
	}
	return db, nil
}
