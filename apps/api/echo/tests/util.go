package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/timeac/apps/api/echo"
	"github.com/trezcool/timeac/core/admin"
	"github.com/trezcool/timeac/core/bell"
	"github.com/trezcool/timeac/core/display"
	"github.com/trezcool/timeac/core/schedule"
	"github.com/trezcool/timeac/storage/database/inmem"
	"github.com/trezcool/timeac/storage/database/sqlrepo"
	"github.com/trezcool/timeac/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
)

type testApp struct {
	srv         *Server
	scheduleSvc *schedule.Service
	bellSvc     *bell.Service
	monitor     *display.Monitor
	token       string
}

// setup wires the API on a fresh sqlite database seeded with testutil.Collection().
func setup(t *testing.T) testApp {
	t.Helper()
	ctx := context.Background()
	conf := testutil.NewConfig()
	validate, translator := testutil.NewValidator()
	logger := &testutil.Logger{}

	// set up DB & repos
	db := testutil.PrepareDB(t)
	scheduleRepo := sqlrepo.NewScheduleRepository(db)
	adminRepo := sqlrepo.NewAdminRepository(db)
	mem := inmemdb.Open()

	// set up services
	scheduleSvc := schedule.NewService(schedule.Deps{
		Repo:     scheduleRepo,
		Notifier: inmemdb.NewNotifier(),
		Logger:   logger,
		Validate: validate,
		Dataset:  func() ([]schedule.Schedule, error) { return testutil.Collection(), nil },
	}, schedule.Options{})
	if err := scheduleSvc.Load(ctx); err != nil {
		t.Fatalf("scheduleSvc.Load() failed: %v", err)
	}
	adminSvc := admin.NewService(adminRepo, validate, conf)
	bellSvc := bell.NewService(inmemdb.NewBellStore(mem), logger, conf)
	t.Cleanup(bellSvc.Close)
	monitor := display.NewMonitor(scheduleSvc, bellSvc, logger, display.Options{TickInterval: conf.Schedule.TickInterval})

	// set up server
	srv := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		ScheduleSvc: scheduleSvc,
		AdminSvc:    adminSvc,
		BellSvc:     bellSvc,
		Monitor:     monitor,
	})
	t.Cleanup(func() { _ = srv.Close() })

	token, err := srv.Tokens().GenerateToken(srv.Tokens().AdminClaims())
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	return testApp{srv: srv, scheduleSvc: scheduleSvc, bellSvc: bellSvc, monitor: monitor, token: token}
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

func (app testApp) do(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	app.srv.ServeHTTP(rec, req)
	return rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshallObj(t *testing.T, data []byte, obj interface{}) {
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarshallObj() failed: %v; data %s", err, data)
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
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "failed! code; body %s", rec.Body.String())
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
