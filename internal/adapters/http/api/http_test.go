package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/raspa/internal/adapters/http/api"
	service "github.com/okian/raspa/internal/app"
	"github.com/okian/raspa/internal/domain/eligibility"
	"github.com/okian/raspa/internal/domain/types"
	"github.com/okian/raspa/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDeps implements api.Dependencies for handler tests.
type mockDeps struct {
	loginErr   error
	scratchErr error
	sessionErr error
	logoutErr  error

	lastUsername string
	lastAgent    string
	lastIP       string
	lastToken    string
	lastPoints   []types.Point
	lastEnd      bool

	view types.SessionView
}

func (m *mockDeps) Login(ctx context.Context, username, agent string) (types.SessionView, error) {
	m.lastUsername = username
	m.lastAgent = agent
	m.lastIP = service.ClientIPFromContext(ctx)
	return m.view, m.loginErr
}

func (m *mockDeps) Scratch(ctx context.Context, token string, points []types.Point, endStroke bool) (types.SessionView, error) {
	m.lastToken = token
	m.lastPoints = points
	m.lastEnd = endStroke
	return m.view, m.scratchErr
}

func (m *mockDeps) SessionState(ctx context.Context, token string) (types.SessionView, error) {
	m.lastToken = token
	return m.view, m.sessionErr
}

func (m *mockDeps) Logout(ctx context.Context, token string) error {
	m.lastToken = token
	return m.logoutErr
}

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps).Register(context.Background(), mux)
	return mux
}

func sampleView() types.SessionView {
	return types.SessionView{
		Token:   "tok-1",
		State:   "eligible",
		Outcome: "fresh",
		Record: types.RecordView{
			Username: "Bob",
			Agent:    "agent-07",
			Prize:    58,
			Date:     "2026-08-31",
		},
	}
}

func TestHandleLogin(t *testing.T) {
	Convey("Given the login endpoint", t, func() {
		deps := &mockDeps{view: sampleView()}
		mux := newTestMux(deps)

		Convey("When a valid login is posted", func() {
			req := httptest.NewRequest(http.MethodPost, "/login",
				strings.NewReader(`{"username":"Bob","agent":"agent-07"}`))
			req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the session view is returned and the origin captured", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastUsername, ShouldEqual, "Bob")
				So(deps.lastAgent, ShouldEqual, "agent-07")
				So(deps.lastIP, ShouldEqual, "203.0.113.7")

				var view types.SessionView
				So(json.Unmarshal(rec.Body.Bytes(), &view), ShouldBeNil)
				So(view.Token, ShouldEqual, "tok-1")
				So(view.Record.Prize, ShouldEqual, 58)
			})
		})

		Convey("When no proxy header is present", func() {
			req := httptest.NewRequest(http.MethodPost, "/login",
				strings.NewReader(`{"username":"Bob"}`))
			req.RemoteAddr = "198.51.100.4:54321"
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the peer address is used as origin", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastIP, ShouldEqual, "198.51.100.4")
			})
		})

		Convey("When the body is not JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the username is blank", func() {
			req := httptest.NewRequest(http.MethodPost, "/login",
				strings.NewReader(`{"username":"   "}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the request is rejected before the service is called", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(deps.lastUsername, ShouldBeEmpty)
			})
		})

		Convey("When the service reports an invalid username", func() {
			deps.loginErr = eligibility.ErrInvalidUsername
			req := httptest.NewRequest(http.MethodPost, "/login",
				strings.NewReader(`{"username":"bob"}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then a 400 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a login for the same user is still resolving", func() {
			deps.loginErr = service.ErrLoginInProgress
			req := httptest.NewRequest(http.MethodPost, "/login",
				strings.NewReader(`{"username":"bob"}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then a 409 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the method is not POST", func() {
			req := httptest.NewRequest(http.MethodGet, "/login", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the route does not match", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHandleScratch(t *testing.T) {
	Convey("Given the scratch endpoint", t, func() {
		deps := &mockDeps{view: sampleView()}
		mux := newTestMux(deps)

		Convey("When scratch samples are posted", func() {
			req := httptest.NewRequest(http.MethodPost, "/scratch",
				strings.NewReader(`{"token":"tok-1","points":[{"x":10,"y":20},{"x":11,"y":21}],"end":true}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the samples reach the service in order", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastToken, ShouldEqual, "tok-1")
				So(deps.lastPoints, ShouldResemble, []types.Point{{X: 10, Y: 20}, {X: 11, Y: 21}})
				So(deps.lastEnd, ShouldBeTrue)
			})
		})

		Convey("When the token is missing", func() {
			req := httptest.NewRequest(http.MethodPost, "/scratch",
				strings.NewReader(`{"points":[{"x":1,"y":2}]}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the session does not exist", func() {
			deps.scratchErr = service.ErrSessionNotFound
			req := httptest.NewRequest(http.MethodPost, "/scratch",
				strings.NewReader(`{"token":"gone"}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then a 404 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHandleSession(t *testing.T) {
	Convey("Given the session endpoint", t, func() {
		deps := &mockDeps{view: sampleView()}
		mux := newTestMux(deps)

		Convey("When a session is fetched by token", func() {
			req := httptest.NewRequest(http.MethodGet, "/session/tok-1", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then its view is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastToken, ShouldEqual, "tok-1")

				var view types.SessionView
				So(json.Unmarshal(rec.Body.Bytes(), &view), ShouldBeNil)
				So(view.State, ShouldEqual, "eligible")
			})
		})

		Convey("When a session is deleted", func() {
			req := httptest.NewRequest(http.MethodDelete, "/session/tok-1", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the logout is acknowledged", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastToken, ShouldEqual, "tok-1")
			})
		})

		Convey("When the token path segment is empty", func() {
			req := httptest.NewRequest(http.MethodGet, "/session/", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the token is unknown", func() {
			deps.sessionErr = service.ErrSessionNotFound
			req := httptest.NewRequest(http.MethodGet, "/session/gone", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then a 404 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHandleStats(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		deps := &mockDeps{view: sampleView()}
		mux := newTestMux(deps)

		Convey("When stats are fetched", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the service stats are returned as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var stats map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["started"], ShouldBeTrue)
			})
		})
	})
}
