package router

import "github.com/gin-gonic/gin"

// Module registers its routes on the group it is mounted under.
type Module interface {
	Register(rg *gin.RouterGroup)
}

type mount struct {
	prefix string
	mod    Module
}

// Registry collects modules and mounts each under its path prefix.
// Middlewares added with Use apply to every module group, not to the engine.
type Registry struct {
	Engine      *gin.Engine
	middlewares []gin.HandlerFunc
	mounts      []mount
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

// Add mounts mod under prefix ("" for the root).
func (r *Registry) Add(prefix string, mod Module) {
	r.mounts = append(r.mounts, mount{prefix: prefix, mod: mod})
}

func (r *Registry) RegisterAll() {
	groups := make(map[string]*gin.RouterGroup)
	for _, m := range r.mounts {
		g, ok := groups[m.prefix]
		if !ok {
			g = r.Engine.Group(m.prefix, r.middlewares...)
			groups[m.prefix] = g
		}
		m.mod.Register(g)
	}
}
