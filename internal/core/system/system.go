package system

// System is a named unit of behavior executed once per frame, after every
// system named in Dependencies.
type System interface {
	Tag() string
	Dependencies() []string
	Execute(ctx *Context) error
}

// Base carries the tag and dependency list; embed it in a system struct.
type Base struct {
	tag  string
	deps []string
}

func NewBase(tag string, deps ...string) Base {
	return Base{tag: tag, deps: deps}
}

func (b Base) Tag() string            { return b.tag }
func (b Base) Dependencies() []string { return b.deps }

type funcSystem struct {
	Base
	fn func(*Context) error
}

func (f *funcSystem) Execute(ctx *Context) error { return f.fn(ctx) }

// Func adapts a plain function into a System.
func Func(tag string, deps []string, fn func(*Context) error) System {
	return &funcSystem{Base: NewBase(tag, deps...), fn: fn}
}
