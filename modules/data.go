package modules

import (
	"emperror.dev/errors"
	"github.com/Jeffail/gabs/v2"
	"github.com/goccy/go-json"
)

// ModuleData pairs a definition with the outcome of its last generation. It
// is the unit that gets persisted, and it is never modified once created.
type ModuleData struct {
	Definition ModuleDefinition   `json:"moduleDefinition"`
	Response   GenerationResponse `json:"response"`
}

// NewModuleData pairs a definition with a response.
func NewModuleData(definition ModuleDefinition, response GenerationResponse) ModuleData {
	return ModuleData{Definition: definition, Response: response}
}

// Name returns the name of the module described by the data.
func (d ModuleData) Name() string {
	return d.Definition.Interface.Name
}

// State returns the state a module built from this data starts in, before
// any attempt to construct its code.
func (d ModuleData) State() State {
	return StateOf(d.Response)
}

// Renamed returns a copy of the data under a new name.
func (d ModuleData) Renamed(name string) ModuleData {
	return ModuleData{Definition: d.Definition.Renamed(name), Response: d.Response}
}

// Invalidate demotes data carrying a valid response. Data in any other state
// is returned unchanged.
func (d ModuleData) Invalidate(errs []string) ModuleData {
	v, ok := d.Response.(ValidResponse)
	if !ok {
		return d
	}
	return ModuleData{Definition: d.Definition, Response: v.Invalidate(errs)}
}

// Encode renders the data in its persisted shape.
func (d ModuleData) Encode() ([]byte, error) {
	if d.Response == nil {
		return nil, errors.New("modules: cannot encode module data without a response")
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "modules: failed to encode module data")
	}
	return b, nil
}

// DecodeModuleData parses persisted module data.
func DecodeModuleData(b []byte) (ModuleData, error) {
	var record map[string]any
	if err := json.Unmarshal(b, &record); err != nil {
		return ModuleData{}, errors.WithStack(malformed(err.Error()))
	}
	return ModuleDataFromStored(record)
}

func (d *ModuleData) UnmarshalJSON(b []byte) error {
	v, err := DecodeModuleData(b)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ModuleDataFromStored validates a decoded record and rebuilds the data.
func ModuleDataFromStored(record map[string]any) (ModuleData, error) {
	c := gabs.Wrap(record)
	if !isObject(c.Path("moduleDefinition")) {
		return ModuleData{}, malformed("invalid module definition")
	}
	if !isObject(c.Path("response")) {
		return ModuleData{}, malformed("invalid module generation response")
	}
	definition, err := definitionFromStored(c.Path("moduleDefinition"))
	if err != nil {
		return ModuleData{}, err
	}
	response, err := classifyContainer(c.Path("response"))
	if err != nil {
		return ModuleData{}, err
	}
	return ModuleData{Definition: definition, Response: response}, nil
}
