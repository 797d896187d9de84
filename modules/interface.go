package modules

import (
	"github.com/Jeffail/gabs/v2"
	"github.com/goccy/go-json"
)

// ModuleInterface is the public face of a module: its name and the values and
// events it exposes to the other modules.
type ModuleInterface struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
	Events []string `json:"events"`
}

// Renamed returns a copy of the interface carrying a different name.
func (i ModuleInterface) Renamed(name string) ModuleInterface {
	return ModuleInterface{
		Name:   name,
		Values: cloneStrings(i.Values),
		Events: cloneStrings(i.Events),
	}
}

// MarshalJSON always renders values and events as arrays, never null.
func (i ModuleInterface) MarshalJSON() ([]byte, error) {
	type wire ModuleInterface
	return json.Marshal(wire{Name: i.Name, Values: nonNil(i.Values), Events: nonNil(i.Events)})
}

// ModuleDefinition is what a user authors: the interface a module promises
// and the natural language description used to generate it.
type ModuleDefinition struct {
	Interface   ModuleInterface `json:"moduleInterface"`
	Description string          `json:"description"`
}

// NewModuleDefinition builds a definition, copying the given slices so the
// result can't be changed through them.
func NewModuleDefinition(name string, values, events []string, description string) ModuleDefinition {
	return ModuleDefinition{
		Interface: ModuleInterface{
			Name:   name,
			Values: cloneStrings(values),
			Events: cloneStrings(events),
		},
		Description: description,
	}
}

// Name is a shortcut for the name of the definition's interface.
func (d ModuleDefinition) Name() string {
	return d.Interface.Name
}

// Renamed returns a copy of the definition under a new name.
func (d ModuleDefinition) Renamed(name string) ModuleDefinition {
	return ModuleDefinition{
		Interface:   d.Interface.Renamed(name),
		Description: d.Description,
	}
}

// WithDescription returns a copy of the definition with a new description.
func (d ModuleDefinition) WithDescription(description string) ModuleDefinition {
	return ModuleDefinition{
		Interface:   d.Interface.Renamed(d.Interface.Name),
		Description: description,
	}
}

func interfaceFromStored(c *gabs.Container) (ModuleInterface, error) {
	name, ok := c.Path("name").Data().(string)
	if !ok {
		return ModuleInterface{}, malformed("invalid module name")
	}
	values, ok := stringsAt(c, "values")
	if !ok {
		return ModuleInterface{}, malformed("invalid module values")
	}
	events, ok := stringsAt(c, "events")
	if !ok {
		return ModuleInterface{}, malformed("invalid module events")
	}
	return ModuleInterface{Name: name, Values: values, Events: events}, nil
}

func definitionFromStored(c *gabs.Container) (ModuleDefinition, error) {
	if !isObject(c.Path("moduleInterface")) {
		return ModuleDefinition{}, malformed("invalid module interface")
	}
	iface, err := interfaceFromStored(c.Path("moduleInterface"))
	if err != nil {
		return ModuleDefinition{}, err
	}
	description, ok := c.Path("description").Data().(string)
	if !ok {
		return ModuleDefinition{}, malformed("invalid module description")
	}
	return ModuleDefinition{Interface: iface, Description: description}, nil
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
