package router

import (
	"sort"

	"github.com/priyxstudio/pub/modules"
)

// ErrorResponse represents the common error payload returned by the API.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ModuleDefinitionRequest is the payload used to create a module or change
// its definition.
type ModuleDefinitionRequest struct {
	Name        string   `json:"name" valid:"required~name is required,stringlength(1|64)~name must be between 1 and 64 characters"`
	Values      []string `json:"values"`
	Events      []string `json:"events"`
	Description string   `json:"description" valid:"required~description is required"`
}

// Definition converts the request into a module definition.
func (r ModuleDefinitionRequest) Definition() modules.ModuleDefinition {
	return modules.NewModuleDefinition(r.Name, r.Values, r.Events, r.Description)
}

// RenameModuleRequest is the payload used to rename a module.
type RenameModuleRequest struct {
	Name string `json:"name" valid:"required~name is required,stringlength(1|64)~name must be between 1 and 64 characters"`
}

// AdjustModuleRequest is the payload used to adjust the code of a valid
// module.
type AdjustModuleRequest struct {
	Instructions string `json:"instructions" valid:"required~instructions are required"`
}

// FixModuleRequest is the optional payload of a fix. Pending modules need a
// new definition to be fixed; invalid modules don't take one.
type FixModuleRequest struct {
	Definition *ModuleDefinitionRequest `json:"definition,omitempty" valid:"optional"`
}

// ModuleSummary describes a module in listings.
type ModuleSummary struct {
	Name        string   `json:"name"`
	State       string   `json:"state"`
	Status      string   `json:"status"`
	Values      []string `json:"values"`
	Events      []string `json:"events"`
	Description string   `json:"description"`
	Running     bool     `json:"running"`
}

// ModuleDetails describes a single module with everything known about it.
type ModuleDetails struct {
	ModuleSummary
	Comments []string `json:"comments"`
	Errors   []string `json:"errors"`
	Code     string   `json:"code,omitempty"`
	Exposed  []string `json:"exposed"`
	Output   []string `json:"output"`
}

// ModuleListResponse contains a list of modules.
type ModuleListResponse struct {
	Data []ModuleSummary `json:"data"`
}

func summarize(m modules.Module) ModuleSummary {
	def := m.Definition()
	s := ModuleSummary{
		Name:        m.Name(),
		State:       m.State().String(),
		Status:      string(modules.StatusOf(m.Data().Response)),
		Values:      nonNil(def.Interface.Values),
		Events:      nonNil(def.Interface.Events),
		Description: def.Description,
	}
	if v, ok := m.(*modules.ValidModule); ok {
		s.Running = v.Running()
	}
	return s
}

func describe(m modules.Module) ModuleDetails {
	d := ModuleDetails{
		ModuleSummary: summarize(m),
		Comments:      []string{},
		Errors:        []string{},
		Exposed:       m.Surface().Values(),
		Output:        nonNil(m.Surface().Output()),
	}
	sort.Strings(d.Exposed)
	switch v := m.(type) {
	case *modules.ValidModule:
		d.Comments = nonNil(v.Response().Comments)
		d.Code = v.Response().Code
	case *modules.InvalidModule:
		d.Errors = v.Errors()
	case *modules.PendingModule:
		d.Comments = v.Comments()
	}
	return d
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
