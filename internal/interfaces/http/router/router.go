package router

import (
	"net/http"
	"path"

	"github.com/erp/returns/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts domain groups under a versioned API prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be mounted by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every registrar under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath())
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// BasePath returns the versioned prefix, e.g. /api/v1
func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// RouteInfo describes one route of a DomainGroup
type RouteInfo struct {
	Method      string
	Path        string
	Description string
}

// DomainGroup collects the routes of one bounded context before mounting
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method      string
	path        string
	handlers    []gin.HandlerFunc
	description string
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to every route of this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle registers a route with a description shown in the route listing
func (dg *DomainGroup) Handle(method, path, description string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		method:      method,
		path:        path,
		handlers:    handlers,
		description: description,
	})
	return dg
}

func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, "", handlers...)
}

func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, "", handlers...)
}

func (dg *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, path, "", handlers...)
}

func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, "", handlers...)
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Routes lists the routes of this group and its subgroups, relative to the API base path
func (dg *DomainGroup) Routes() []RouteInfo {
	var out []RouteInfo
	for _, route := range dg.routes {
		out = append(out, RouteInfo{
			Method:      route.method,
			Path:        joinPaths(dg.prefix, route.path),
			Description: route.description,
		})
	}
	for _, subgroup := range dg.subgroups {
		for _, info := range subgroup.Routes() {
			info.Path = joinPaths(dg.prefix, info.Path)
			out = append(out, info)
		}
	}
	return out
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

func joinPaths(prefix, p string) string {
	if p == "" {
		return prefix
	}
	return path.Join(prefix, p)
}

// ReturnHandlers are the handlers behind the returns routes. Realtime is
// optional and its route is skipped when nil.
type ReturnHandlers struct {
	Returns     *handler.ReturnHandler
	Attachments *handler.AttachmentHandler
	Slips       *handler.SlipHandler
	Realtime    *handler.RealtimeHandler
}

// NewReturnsGroup builds the /returns domain group. mutating runs in front of
// every route that changes state, ahead of the handler.
func NewReturnsGroup(h ReturnHandlers, mutating ...gin.HandlerFunc) *DomainGroup {
	write := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mutating...), fn)
	}

	g := NewDomainGroup("returns", "/returns")
	g.Handle(http.MethodPost, "", "Take in a return", write(h.Returns.Create)...)
	g.Handle(http.MethodGet, "", "List returns", h.Returns.List)
	g.Handle(http.MethodGet, "/stats", "Summary statistics", h.Returns.Stats)
	g.Handle(http.MethodGet, "/analytics", "Analytics breakdown", h.Returns.Analytics)
	g.Handle(http.MethodGet, "/customers", "Search customers by phone", h.Returns.SearchCustomers)
	g.Handle(http.MethodGet, "/rejection-reasons", "Offered rejection reasons", h.Returns.RejectionReasons)
	g.Handle(http.MethodGet, "/number/:returnNumber", "Get a return by number", h.Returns.GetByNumber)
	if h.Realtime != nil {
		g.Handle(http.MethodGet, "/events/ws", "Lifecycle event feed", h.Realtime.Subscribe)
	}

	g.Handle(http.MethodGet, "/:id", "Get a return", h.Returns.GetByID)
	g.Handle(http.MethodGet, "/:id/audit", "Inspection and audit history", h.Returns.GetHistory)
	g.Handle(http.MethodGet, "/:id/suggestion", "Suggested resolution", h.Returns.GetSuggestion)
	g.Handle(http.MethodPatch, "/:id/inspect", "Record an inspection", write(h.Returns.Inspect)...)
	g.Handle(http.MethodPatch, "/:id/approve", "Approve", write(h.Returns.Approve)...)
	g.Handle(http.MethodPatch, "/:id/reject", "Reject", write(h.Returns.Reject)...)
	g.Handle(http.MethodPatch, "/:id/process", "Execute the resolution", write(h.Returns.Process)...)
	g.Handle(http.MethodDelete, "/:id", "Cancel", write(h.Returns.Cancel)...)

	if h.Attachments != nil {
		g.Handle(http.MethodPost, "/:id/attachments", "Request an evidence upload", write(h.Attachments.RequestUpload)...)
		g.Handle(http.MethodGet, "/:id/attachments", "List evidence", h.Attachments.List)
	}
	if h.Slips != nil {
		g.Handle(http.MethodGet, "/:id/slip", "Render the return slip", h.Slips.Render)
	}
	return g
}
