package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/huddleapp/huddle/internal/app"
	"github.com/huddleapp/huddle/internal/app/orch"
)

func newTestRouter() (*gin.Engine, *orch.Orchestrator) {
	gin.SetMode(gin.TestMode)
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(),
		Policy:   app.DropPolicy{},
	}
	r := gin.New()
	r.GET("/ping", handlePing)
	admin := NewAdminController(o)
	r.GET("/api/rooms", admin.ListRooms)
	r.POST("/api/rooms", admin.CreateRoom)
	r.POST("/api/rooms/:roomId/users", admin.AddUser)
	r.DELETE("/api/rooms/:roomId/users", admin.RemoveUser)
	return r, o
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	r, _ := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/ping", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if !resp["success"] {
		t.Fatalf("success flag missing: %s", w.Body)
	}
}

func TestCreateRoom(t *testing.T) {
	r, o := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/api/rooms", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if resp["roomId"] == "" {
		t.Fatalf("no roomId in %s", w.Body)
	}
	if len(o.RoomsList()) != 1 {
		t.Fatalf("room not registered")
	}
}

func TestAddUser(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/rooms/r1/users", `{"displayName":"alice"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add: got %d, want 200 (%s)", w.Code, w.Body)
	}

	w = doJSON(t, r, http.MethodPost, "/api/rooms/r1/users", `{"displayName":"alice"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate add: got %d, want 409", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/rooms/r1/users", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing field: got %d, want 400", w.Code)
	}
}

func TestRemoveUser(t *testing.T) {
	r, _ := newTestRouter()

	if w := doJSON(t, r, http.MethodPost, "/api/rooms/r1/users", `{"displayName":"alice"}`); w.Code != http.StatusOK {
		t.Fatalf("seed add: %d", w.Code)
	}

	w := doJSON(t, r, http.MethodDelete, "/api/rooms/r1/users", `{"displayName":"alice"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("remove: got %d, want 200", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/rooms/r1/users", `{"displayName":"alice"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("remove absent: got %d, want 404", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/rooms/r1/users", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing field: got %d, want 400", w.Code)
	}
}
