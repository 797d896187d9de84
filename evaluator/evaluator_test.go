package evaluator

import (
	"context"
	"strings"
	"testing"

	"github.com/priyxstudio/pub/modkit"
)

const counterSource = `package module

import (
	"context"

	"github.com/priyxstudio/pub/modkit"
)

func New(surface *modkit.Surface) (*modkit.Hooks, error) {
	count := 0
	surface.Expose("count", func() any { return count })
	return &modkit.Hooks{
		Init: func() error {
			surface.RegisterEvent("tick")
			return nil
		},
		Run: func(ctx context.Context, peers modkit.Peers) error {
			count++
			surface.Printf("peers: %d", len(peers))
			return nil
		},
	}, nil
}
`

const failingInitSource = `package module

import (
	"errors"

	"github.com/priyxstudio/pub/modkit"
)

func New(surface *modkit.Surface) (*modkit.Hooks, error) {
	return &modkit.Hooks{
		Init: func() error { return errors.New("no config") },
	}, nil
}
`

const panickingConstructorSource = `package module

import "github.com/priyxstudio/pub/modkit"

func New(surface *modkit.Surface) (*modkit.Hooks, error) {
	var m map[string]int
	m["boom"] = 1
	return nil, nil
}
`

func TestBuildAndRunModule(t *testing.T) {
	ctor, err := New().BuildConstructor(counterSource)
	if err != nil {
		t.Fatalf("expected code to build, got %v", err)
	}

	surface := modkit.NewSurface(10)
	impl, err := ctor.Instantiate(surface)
	if err != nil {
		t.Fatalf("expected module to be constructed, got %v", err)
	}
	if err := impl.Init(); err != nil {
		t.Fatalf("expected init to succeed, got %v", err)
	}
	if err := surface.On("tick", func() {}); err != nil {
		t.Fatalf("expected tick event to be registered, got %v", err)
	}
	if err := impl.Run(context.Background(), modkit.Peers{"other": modkit.NewSurface(0)}); err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}
	if v := surface.Get("count"); v != 1 {
		t.Fatalf("expected count to be 1, got %v", v)
	}
	if out := surface.Output(); len(out) != 1 || out[0] != "peers: 1" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestBuildRejectsBadCode(t *testing.T) {
	cases := map[string]string{
		"empty":        "   ",
		"syntax":       "package module\n\nfunc New(",
		"missing New":  "package module\n\nfunc Old() {}\n",
		"wrong return": "package module\n\nimport \"github.com/priyxstudio/pub/modkit\"\n\nfunc New(surface *modkit.Surface) error { return nil }\n",
		"denied":       "package module\n\nimport \"os/exec\"\n\nvar _ = exec.Command\n",
	}
	e := New()
	for name, code := range cases {
		if _, err := e.BuildConstructor(code); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestInstantiateRecoversPanics(t *testing.T) {
	ctor, err := New().BuildConstructor(panickingConstructorSource)
	if err != nil {
		t.Fatalf("expected code to build, got %v", err)
	}
	if _, err := ctor.Instantiate(modkit.NewSurface(0)); err == nil || !strings.Contains(err.Error(), "panic") {
		t.Fatalf("expected a panic error, got %v", err)
	}
}

func TestInitFailureIsReturned(t *testing.T) {
	ctor, err := New().BuildConstructor(failingInitSource)
	if err != nil {
		t.Fatalf("expected code to build, got %v", err)
	}
	impl, err := ctor.Instantiate(modkit.NewSurface(0))
	if err != nil {
		t.Fatalf("expected module to be constructed, got %v", err)
	}
	if err := impl.Init(); err == nil || err.Error() != "no config" {
		t.Fatalf("expected init error, got %v", err)
	}
	if err := impl.Run(context.Background(), nil); err != nil {
		t.Fatalf("expected a module without run to return nil, got %v", err)
	}
}

func TestInstantiateResetsSurface(t *testing.T) {
	ctor, err := New().BuildConstructor(failingInitSource)
	if err != nil {
		t.Fatalf("expected code to build, got %v", err)
	}
	surface := modkit.NewSurface(0)
	surface.Expose("stale", func() any { return true })
	surface.Printf("old output")
	if _, err := ctor.Instantiate(surface); err != nil {
		t.Fatalf("expected module to be constructed, got %v", err)
	}
	if surface.Get("stale") != nil || len(surface.Output()) != 0 {
		t.Fatalf("expected the surface to be reset")
	}
}
