package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/returns/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	NewRouter(engine).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("middleware applies to the whole group", func(t *testing.T) {
		engine := gin.New()
		group := NewDomainGroup("test", "/test").Use(func(c *gin.Context) {
			c.Header("X-Group", "test")
			c.Next()
		})
		group.POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) })
		group.PATCH("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
		group.DELETE("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		NewRouter(engine).Register(group).Setup()

		for _, tc := range []struct {
			method string
			path   string
			want   int
		}{
			{http.MethodPost, "/api/v1/test/items", http.StatusCreated},
			{http.MethodPatch, "/api/v1/test/items/1", http.StatusOK},
			{http.MethodDelete, "/api/v1/test/items/1", http.StatusNoContent},
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, w.Code, tc.method)
			assert.Equal(t, "test", w.Header().Get("X-Group"))
		}
	})

	t.Run("subgroups nest prefixes", func(t *testing.T) {
		engine := gin.New()
		parent := NewDomainGroup("parent", "/parent")
		parent.Group("child", "/child").GET("/leaf", func(c *gin.Context) { c.Status(http.StatusOK) })
		NewRouter(engine).Register(parent).Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/parent/child/leaf", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		routes := parent.Routes()
		require.Len(t, routes, 1)
		assert.Equal(t, "/parent/child/leaf", routes[0].Path)
	})

	t.Run("accessors", func(t *testing.T) {
		group := NewDomainGroup("returns", "/returns")
		assert.Equal(t, "returns", group.Name())
		assert.Equal(t, "/returns", group.Prefix())
	})
}

func TestNewReturnsGroup(t *testing.T) {
	h := ReturnHandlers{Returns: &handler.ReturnHandler{}, Slips: &handler.SlipHandler{}}
	guard := func(c *gin.Context) { c.AbortWithStatus(http.StatusTeapot) }
	group := NewReturnsGroup(h, guard)

	t.Run("route listing", func(t *testing.T) {
		paths := map[string]bool{}
		for _, r := range group.Routes() {
			paths[r.Method+" "+r.Path] = true
			assert.NotEmpty(t, r.Description, r.Path)
		}
		assert.True(t, paths["POST /returns"])
		assert.True(t, paths["PATCH /returns/:id/process"])
		assert.True(t, paths["DELETE /returns/:id"])
		assert.True(t, paths["GET /returns/:id/slip"])
		assert.False(t, paths["GET /returns/events/ws"], "realtime route needs a handler")
		assert.False(t, paths["POST /returns/:id/attachments"], "attachment routes need a handler")
	})

	t.Run("mutating middleware guards writes", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine).Register(group).Setup()

		for _, tc := range []struct{ method, path string }{
			{http.MethodPost, "/api/v1/returns"},
			{http.MethodPatch, "/api/v1/returns/abc/inspect"},
			{http.MethodPatch, "/api/v1/returns/abc/approve"},
			{http.MethodPatch, "/api/v1/returns/abc/reject"},
			{http.MethodPatch, "/api/v1/returns/abc/process"},
			{http.MethodDelete, "/api/v1/returns/abc"},
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusTeapot, w.Code, tc.method+" "+tc.path)
		}
	})
}
