// Package dummydb is an in-memory implementation of the core repositories, used by the service tests.
// It emulates the unique & foreign key constraints of the SQL schema.
package dummydb

import (
	"sync"

	"github.com/trezcool/gradeportal/core/grade"
	"github.com/trezcool/gradeportal/core/student"
	"github.com/trezcool/gradeportal/core/subject"
	"github.com/trezcool/gradeportal/core/user"
)

// DB guards all tables with a single lock: constraint checks span tables.
type DB struct {
	sync.RWMutex
	pkCount  int64
	users    map[int64]user.User
	students map[int64]student.Student
	subjects map[int64]subject.Subject
	grades   map[int64]grade.Grade
}

func Open() *DB {
	return &DB{
		users:    make(map[int64]user.User),
		students: make(map[int64]student.Student),
		subjects: make(map[int64]subject.Subject),
		grades:   make(map[int64]grade.Grade),
	}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int64 {
	db.pkCount++
	return db.pkCount
}
