package system

import "fmt"

// Scheduler runs registered systems once per frame in dependency order.
// The order is resolved lazily and cached until the registration set changes.
type Scheduler struct {
	systems []System
	byTag   map[string]System
	order   []string
	sorted  bool
	running bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		systems: make([]System, 0, 16),
		byTag:   make(map[string]System, 16),
	}
}

// Register adds a system. Tags are unique; registration is refused while a
// frame is running.
func (s *Scheduler) Register(sys System) error {
	if s.running {
		return fmt.Errorf("register %q: %w", sys.Tag(), ErrRegisterMidFrame)
	}
	tag := sys.Tag()
	if _, ok := s.byTag[tag]; ok {
		return &DuplicateSystemTagError{Tag: tag}
	}
	s.systems = append(s.systems, sys)
	s.byTag[tag] = sys
	s.sorted = false
	return nil
}

// Unregister removes the system with tag, if any. It is refused mid-frame
// like Register.
func (s *Scheduler) Unregister(tag string) error {
	if s.running {
		return fmt.Errorf("unregister %q: %w", tag, ErrRegisterMidFrame)
	}
	if _, ok := s.byTag[tag]; !ok {
		return nil
	}
	delete(s.byTag, tag)
	for i, sys := range s.systems {
		if sys.Tag() == tag {
			s.systems = append(s.systems[:i], s.systems[i+1:]...)
			break
		}
	}
	s.sorted = false
	return nil
}

func (s *Scheduler) Len() int { return len(s.systems) }

// Order returns the execution order, resolving it if registrations changed.
func (s *Scheduler) Order() ([]string, error) {
	if err := s.ensureSorted(); err != nil {
		return nil, err
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

// Run executes every system once, in order, against ctx. It stops at the
// first failing system. A panicking system fails the frame like an error.
func (s *Scheduler) Run(ctx *Context) error {
	if err := s.ensureSorted(); err != nil {
		return err
	}
	s.running = true
	defer func() { s.running = false }()

	for _, tag := range s.order {
		if err := safeExecute(s.byTag[tag], ctx); err != nil {
			return fmt.Errorf("system %s: %w", tag, err)
		}
	}
	return nil
}

func safeExecute(sys System, ctx *Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrSystemPanic, rec)
		}
	}()
	if err := sys.Execute(ctx); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Scheduler) ensureSorted() error {
	if s.sorted {
		return nil
	}
	order, err := s.resolve()
	if err != nil {
		return err
	}
	s.order = order
	s.sorted = true
	return nil
}

// resolve is a depth-first topological sort. Roots are visited in
// registration order so independent subgraphs keep a stable order.
func (s *Scheduler) resolve() ([]string, error) {
	order := make([]string, 0, len(s.systems))
	visited := make(map[string]bool, len(s.systems))
	onStack := make(map[string]bool, len(s.systems))

	var visit func(tag string) error
	visit = func(tag string) error {
		if onStack[tag] {
			return &CircularDependencyError{Tag: tag}
		}
		if visited[tag] {
			return nil
		}
		onStack[tag] = true
		for _, dep := range s.byTag[tag].Dependencies() {
			if _, ok := s.byTag[dep]; !ok {
				return &UnknownDependencyError{Tag: tag, Dependency: dep}
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		onStack[tag] = false
		visited[tag] = true
		order = append(order, tag)
		return nil
	}

	for _, sys := range s.systems {
		if err := visit(sys.Tag()); err != nil {
			return nil, err
		}
	}
	return order, nil
}
