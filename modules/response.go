package modules

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Status is the discriminator of a generation response as it appears in
// generator output and in storage.
type Status string

const (
	StatusSuccess Status = "success"
	StatusInfo    Status = "info"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusInvalid Status = "invalid"
)

// IsValid reports whether s is one of the statuses that carry code.
func (s Status) IsValid() bool {
	switch s {
	case StatusSuccess, StatusInfo, StatusWarning:
		return true
	}
	return false
}

// State is the validity state of a module.
type State int

const (
	StateValid State = iota
	StateInvalid
	StatePending
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	case StatePending:
		return "pending"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// GenerationResponse is the classified outcome of a generation request. It is
// one of ValidResponse, PendingResponse or InvalidResponse.
type GenerationResponse interface {
	generationResponse()
}

// ValidResponse is a response carrying generated code.
type ValidResponse struct {
	Status   Status
	Comments []string
	Code     string
	// Description is only set by adjustments, where the generator rewrites the
	// module description to match the adjusted code.
	Description string
}

// PendingResponse is a response without code. The comments explain what the
// user has to change before the module can be generated.
type PendingResponse struct {
	Comments []string
}

// InvalidResponse is a malformed response, or a valid one whose code failed.
// It carries enough information to ask the generator for a fix.
type InvalidResponse struct {
	// Response is the original text that was found to be invalid.
	Response string
	Errors   []string
}

func (ValidResponse) generationResponse()   {}
func (PendingResponse) generationResponse() {}
func (InvalidResponse) generationResponse() {}

// Invalidate turns a valid response whose code failed to construct or run
// into an invalid one.
func (r ValidResponse) Invalidate(errs []string) InvalidResponse {
	if len(errs) == 0 {
		errs = []string{"Unknown error."}
	}
	return InvalidResponse{
		Response: Serialize(r),
		Errors:   cloneStrings(errs),
	}
}

// StateOf maps a response onto the state of the module carrying it.
func StateOf(r GenerationResponse) State {
	switch r.(type) {
	case ValidResponse:
		return StateValid
	case PendingResponse:
		return StatePending
	case InvalidResponse:
		return StateInvalid
	}
	panic(fmt.Sprintf("modules: unexpected generation response %T", r))
}

// StatusOf returns the storage discriminator of a response.
func StatusOf(r GenerationResponse) Status {
	switch v := r.(type) {
	case ValidResponse:
		return v.Status
	case PendingResponse:
		return StatusError
	case InvalidResponse:
		return StatusInvalid
	}
	panic(fmt.Sprintf("modules: unexpected generation response %T", r))
}

// OriginalResponse returns the text handed back to the generator when asking
// it to fix or adjust a response.
func OriginalResponse(r GenerationResponse) string {
	if v, ok := r.(InvalidResponse); ok {
		return v.Response
	}
	return Serialize(r)
}

type validWire struct {
	Status      Status   `json:"status"`
	Comments    []string `json:"comments"`
	Code        string   `json:"code"`
	Description string   `json:"description,omitempty"`
}

type pendingWire struct {
	Status   Status   `json:"status"`
	Comments []string `json:"comments"`
}

type invalidWire struct {
	Status   Status   `json:"status"`
	Response string   `json:"response"`
	Errors   []string `json:"errors"`
}

func (r ValidResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(validWire{
		Status:      r.Status,
		Comments:    nonNil(r.Comments),
		Code:        r.Code,
		Description: r.Description,
	})
}

func (r PendingResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(pendingWire{Status: StatusError, Comments: nonNil(r.Comments)})
}

func (r InvalidResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(invalidWire{Status: StatusInvalid, Response: r.Response, Errors: nonNil(r.Errors)})
}

// Serialize renders a response in its storage shape. Classify accepts the
// result and yields an equal response.
func Serialize(r GenerationResponse) string {
	b, err := json.Marshal(r)
	if err != nil {
		// Only strings and string slices are marshaled, so this can't happen.
		panic(err)
	}
	return string(b)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
