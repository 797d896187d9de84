package modules

import (
	"context"

	"github.com/priyxstudio/pub/modkit"
)

// Generator turns module descriptions into raw generation responses. Every
// method returns the raw text produced by the generator; the registry
// classifies it. Errors are transport or service failures.
type Generator interface {
	Generate(ctx context.Context, name, description string, others []ModuleInterface) (string, error)
	Fix(ctx context.Context, name, description, prior string, errs []string, others []ModuleInterface) (string, error)
	Adjust(ctx context.Context, name, description, instructions, prior string, others []ModuleInterface) (string, error)
}

// Evaluator turns generated code into something that can be constructed.
type Evaluator interface {
	BuildConstructor(code string) (Constructor, error)
}

// Constructor creates live implementations of one piece of generated code.
type Constructor interface {
	Instantiate(surface *modkit.Surface) (Implementation, error)
}

// Implementation is a constructed module. Init and Run may fail; the
// registry turns such failures into a demotion of the module.
type Implementation interface {
	Init() error
	Run(ctx context.Context, peers modkit.Peers) error
}

// Store persists module data keyed by module name.
type Store interface {
	// GetAll returns the data of every persisted module.
	GetAll() ([]ModuleData, error)
	Get(name string) (ModuleData, error)
	// Add fails with ErrModuleExists if the name is taken.
	Add(data ModuleData) error
	// Update replaces the data stored under name. If the data carries a
	// different name the record moves to it. Fails with ErrModuleNotFound if
	// nothing is stored under name.
	Update(name string, data ModuleData) error
	Delete(name string) error
	Exists(name string) (bool, error)
	DeleteAll() error
}
