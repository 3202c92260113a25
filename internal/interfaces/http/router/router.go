package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Route is one mounted endpoint as reported after Setup
type Route struct {
	Group  string
	Method string
	Path   string
	guard  bool
}

// Guarded reports whether the route sits behind group middleware
func (r Route) Guarded() bool {
	return r.guard
}

// Router mounts domain groups under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	groups     []*DomainGroup
	routes     []Route
}

type RouterOption func(*Router)

// WithAPIVersion overrides the "v1" path segment
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a group for Setup
func (r *Router) Register(group *DomainGroup) *Router {
	r.groups = append(r.groups, group)
	return r
}

// Setup mounts every registered group on the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, g := range r.groups {
		r.routes = append(r.routes, g.mount(api, false)...)
	}
}

// Routes lists what Setup mounted, in registration order
func (r *Router) Routes() []Route {
	return r.routes
}

// DomainGroup collects the routes of one API area before they are mounted
type DomainGroup struct {
	name       string
	prefix     string
	routes     []Route
	handlers   map[int][]gin.HandlerFunc
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix, handlers: make(map[int][]gin.HandlerFunc)}
}

// Use appends group middleware. Nil entries are dropped, so an unconfigured
// guard can be passed as is.
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	for _, m := range middleware {
		if m != nil {
			dg.middleware = append(dg.middleware, m)
		}
	}
	return dg
}

func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodGet, relativePath, handlers)
}

func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPost, relativePath, handlers)
}

func (dg *DomainGroup) add(method, relativePath string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.handlers[len(dg.routes)] = handlers
	dg.routes = append(dg.routes, Route{Group: dg.name, Method: method, Path: relativePath})
	return dg
}

// Group nests a sub-group that inherits this group's middleware
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// RegisterRoutes mounts the group on rg
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	dg.mount(rg, false)
}

func (dg *DomainGroup) mount(rg *gin.RouterGroup, guarded bool) []Route {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
		guarded = true
	}

	mounted := make([]Route, 0, len(dg.routes))
	for i, route := range dg.routes {
		group.Handle(route.Method, route.Path, dg.handlers[i]...)
		route.Path = path.Join(group.BasePath(), route.Path)
		route.guard = guarded
		mounted = append(mounted, route)
	}
	for _, sub := range dg.subgroups {
		mounted = append(mounted, sub.mount(group, guarded)...)
	}
	return mounted
}

func (dg *DomainGroup) Name() string {
	return dg.name
}

func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}
