package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	. "github.com/trezcool/gradeportal/apps/api/echo"
	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/grade"
	"github.com/trezcool/gradeportal/core/student"
	"github.com/trezcool/gradeportal/core/subject"
	"github.com/trezcool/gradeportal/core/user"
	emailsvc "github.com/trezcool/gradeportal/services/email"
	logsvc "github.com/trezcool/gradeportal/services/logger"
	sqlxrepos "github.com/trezcool/gradeportal/storage/database/sqlx"
	"github.com/trezcool/gradeportal/tests"
)

const pwd = "S3cure!Pwd"

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotApproved  = httpErr{Error: "account not approved"}
)

// testApp is a Server on a fresh, migrated in-memory database.
type testApp struct {
	Server
	conf        *core.Config
	registry    *prometheus.Registry
	mailSvc     *emailsvc.ConsoleServiceMock
	usrRepo     user.Repository
	studentRepo student.Repository
	subjectRepo subject.Repository
	gradeRepo   grade.Repository
}

func setup(t *testing.T) *testApp {
	t.Helper()
	conf := testutil.NewConfig()
	db := testutil.PrepareDB(t)

	app := &testApp{
		conf:        conf,
		registry:    prometheus.NewRegistry(),
		mailSvc:     emailsvc.NewConsoleServiceMock(conf),
		usrRepo:     sqlxrepos.NewUserRepository(db),
		studentRepo: sqlxrepos.NewStudentRepository(db),
		subjectRepo: sqlxrepos.NewSubjectRepository(db),
		gradeRepo:   sqlxrepos.NewGradeRepository(db),
	}

	usrSvc := user.NewService(app.usrRepo, app.mailSvc)
	studentSvc := student.NewService(app.studentRepo, app.usrRepo)
	subjectSvc := subject.NewService(app.subjectRepo)
	gradeSvc := grade.NewService(app.gradeRepo, app.studentRepo, app.subjectRepo)
	validate, translator := testutil.NewValidator()

	app.Server = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
		UserSvc:    usrSvc,
		StudentSvc: studentSvc,
		SubjectSvc: subjectSvc,
		GradeSvc:   gradeSvc,
		Validate:   validate,
		Translator: translator,
		Metrics:    NewMetrics(app.registry),
	})
	return app
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte // not checked when nil
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

func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func (app *testApp) createUser(t *testing.T, uname string, role user.Role, status ...user.Status) (user.User, string) {
	t.Helper()
	st := user.StatusApproved
	if len(status) > 0 {
		st = status[0]
	}
	usr := testutil.CreateUser(t, app.usrRepo, uname, pwd, role, st)
	return usr, getToken(t, app.conf, usr)
}

// refetch* return the stored records, as the API would serialize them.

func (app *testApp) refetchUser(t *testing.T, id int64) user.User {
	t.Helper()
	usr, err := app.usrRepo.GetUserByID(context.Background(), id)
	if err != nil {
		t.Fatalf("refetchUser(): %v", err)
	}
	return usr
}

func (app *testApp) refetchStudent(t *testing.T, id int64) student.Student {
	t.Helper()
	s, err := app.studentRepo.GetStudentByID(context.Background(), id)
	if err != nil {
		t.Fatalf("refetchStudent(): %v", err)
	}
	return s
}

func (app *testApp) refetchGrade(t *testing.T, id int64) grade.Grade {
	t.Helper()
	g, err := app.gradeRepo.GetGradeByID(context.Background(), id)
	if err != nil {
		t.Fatalf("refetchGrade(): %v", err)
	}
	return g
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; data = %v", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
