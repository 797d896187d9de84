package modules

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/stretchr/testify/require"

	"github.com/priyxstudio/pub/modkit"
)

func init() {
	log.SetHandler(discard.New())
}

func validJSON(code string) string {
	return fmt.Sprintf(`{"status":"success","comments":["generated"],"code":%q}`, code)
}

const pendingJSON = `{"status":"error","comments":["Please say what the module should count."]}`

// generatorCall records a single request made to the fake generator.
type generatorCall struct {
	kind   string
	name   string
	prior  string
	errs   []string
	others []string
}

// fakeGenerator answers with code looked up by module name. Names in pending
// are refused and names in garbage get output that isn't JSON.
type fakeGenerator struct {
	mu      sync.Mutex
	code    map[string]string
	pending map[string]bool
	garbage map[string]bool
	err     error
	block   bool
	calls   []generatorCall
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		code:    make(map[string]string),
		pending: make(map[string]bool),
		garbage: make(map[string]bool),
	}
}

func (g *fakeGenerator) setCode(name, code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.code[name] = code
}

func (g *fakeGenerator) record(call generatorCall, others []ModuleInterface) {
	for _, o := range others {
		call.others = append(call.others, o.Name)
	}
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
}

func (g *fakeGenerator) answer(ctx context.Context, name string) (string, error) {
	g.mu.Lock()
	block, err := g.block, g.err
	code, ok := g.code[name]
	pending, garbage := g.pending[name], g.garbage[name]
	g.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	switch {
	case pending:
		return pendingJSON, nil
	case garbage:
		return "I can't answer in JSON today", nil
	case !ok:
		code = "ok"
	}
	return validJSON(code), nil
}

func (g *fakeGenerator) Generate(ctx context.Context, name, _ string, others []ModuleInterface) (string, error) {
	g.record(generatorCall{kind: "generate", name: name}, others)
	return g.answer(ctx, name)
}

func (g *fakeGenerator) Fix(ctx context.Context, name, _, prior string, errs []string, others []ModuleInterface) (string, error) {
	g.record(generatorCall{kind: "fix", name: name, prior: prior, errs: errs}, others)
	return g.answer(ctx, name)
}

func (g *fakeGenerator) Adjust(ctx context.Context, name, _, instructions, prior string, others []ModuleInterface) (string, error) {
	g.record(generatorCall{kind: "adjust", name: name, prior: prior}, others)
	return fmt.Sprintf(`{"status":"info","comments":[],"code":"ok","description":%q}`, instructions), nil
}

// generated returns the sorted names of the modules generated with kind.
func (g *fakeGenerator) generated(kind string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, c := range g.calls {
		if c.kind == kind {
			out = append(out, c.name)
		}
	}
	sort.Strings(out)
	return out
}

func (g *fakeGenerator) lastCall() generatorCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

func (g *fakeGenerator) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
}

// fakeEvaluator treats the generated code as the name of a behaviour.
//
//	ok               runs until stopped
//	build-error      fails to build
//	construct-error  fails to construct
//	construct-panic  panics while constructing
//	nil-impl         constructs nothing
//	init-error       fails in init
//	init-panic       panics in init
//	run-error        fails in run
//	run-done         returns from run without an error
//	expose           exposes "count" and writes a line of output
//	peers            reports the peers it was run with
//	build-wait       signals entered and builds once gate is closed
//
// Everything that runs until stopped returns ctx.Err(), as generated code is
// told to.
type fakeEvaluator struct {
	mu    sync.Mutex
	inits int
	peers map[string][]string

	entered chan struct{}
	gate    chan struct{}
}

func newFakeEvaluator() *fakeEvaluator {
	return &fakeEvaluator{peers: make(map[string][]string)}
}

func (e *fakeEvaluator) BuildConstructor(code string) (Constructor, error) {
	switch code {
	case "build-error":
		return nil, errors.New("syntax error")
	case "build-wait":
		close(e.entered)
		<-e.gate
	}
	return &fakeConstructor{evaluator: e, code: code}, nil
}

func (e *fakeEvaluator) initCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inits
}

func (e *fakeEvaluator) peersOf(surface string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.peers[surface]
}

type fakeConstructor struct {
	evaluator *fakeEvaluator
	code      string
}

func (c *fakeConstructor) Instantiate(surface *modkit.Surface) (Implementation, error) {
	switch c.code {
	case "construct-error":
		return nil, errors.New("missing dependency")
	case "construct-panic":
		panic("constructor exploded")
	case "nil-impl":
		return nil, nil
	case "expose":
		surface.Expose("count", func() any { return 42 })
		surface.Printf("constructed")
	}
	return &fakeImplementation{evaluator: c.evaluator, code: c.code, surface: surface}, nil
}

type fakeImplementation struct {
	evaluator *fakeEvaluator
	code      string
	surface   *modkit.Surface
}

func (im *fakeImplementation) Init() error {
	im.evaluator.mu.Lock()
	im.evaluator.inits++
	im.evaluator.mu.Unlock()

	switch im.code {
	case "init-error":
		return errors.New("boom")
	case "init-panic":
		panic("kaboom")
	}
	return nil
}

func (im *fakeImplementation) Run(ctx context.Context, peers modkit.Peers) error {
	switch im.code {
	case "run-error":
		return errors.New("crashed")
	case "run-done":
		return nil
	case "peers":
		names := make([]string, 0, len(peers))
		for name := range peers {
			names = append(names, name)
		}
		sort.Strings(names)
		im.evaluator.mu.Lock()
		im.evaluator.peers[im.code] = names
		im.evaluator.mu.Unlock()
	}
	<-ctx.Done()
	return ctx.Err()
}

// memoryStore keeps module data in a map.
type memoryStore struct {
	mu        sync.Mutex
	data      map[string]ModuleData
	getAllErr error
	updateErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]ModuleData)}
}

func (s *memoryStore) GetAll() ([]ModuleData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getAllErr != nil {
		return nil, s.getAllErr
	}
	out := make([]ModuleData, 0, len(s.data))
	for _, d := range s.data {
		out = append(out, d)
	}
	return out, nil
}

func (s *memoryStore) Get(name string) (ModuleData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data[name]
	if !ok {
		return ModuleData{}, moduleNotFound(name)
	}
	return d, nil
}

func (s *memoryStore) Add(data ModuleData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[data.Name()]; ok {
		return moduleExists(data.Name())
	}
	s.data[data.Name()] = data
	return nil
}

func (s *memoryStore) Update(name string, data ModuleData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.data[name]; !ok {
		return moduleNotFound(name)
	}
	delete(s.data, name)
	s.data[data.Name()] = data
	return nil
}

func (s *memoryStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[name]; !ok {
		return moduleNotFound(name)
	}
	delete(s.data, name)
	return nil
}

func (s *memoryStore) Exists(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[name]
	return ok, nil
}

func (s *memoryStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]ModuleData)
	return nil
}

func (s *memoryStore) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for name := range s.data {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type harness struct {
	registry  *Registry
	generator *fakeGenerator
	evaluator *fakeEvaluator
	store     *memoryStore
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		generator: newFakeGenerator(),
		evaluator: newFakeEvaluator(),
		store:     newMemoryStore(),
	}
	h.registry = NewRegistry(h.store, h.generator, h.evaluator, opts...)
	t.Cleanup(h.registry.Close)
	return h
}

func definition(name string) ModuleDefinition {
	return NewModuleDefinition(name, []string{"value"}, []string{"changed"}, "a module called "+name)
}

// add registers a module without regenerating the others.
func (h *harness) add(t *testing.T, name, code string) Module {
	t.Helper()
	h.generator.setCode(name, code)
	m, err := h.registry.AddModule(context.Background(), definition(name), WithCascade(false))
	require.NoError(t, err)
	return m
}

func (h *harness) get(t *testing.T, name string) Module {
	t.Helper()
	m, ok := h.registry.Get(name)
	require.True(t, ok, "module %s is not registered", name)
	return m
}
