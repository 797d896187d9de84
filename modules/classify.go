package modules

import (
	"emperror.dev/errors"
	"github.com/Jeffail/gabs/v2"
)

const (
	invalidJSONMessage = "Invalid JSON response."
	contractReminder   = "Expected: {status: 'success'|'info'|'warning'|'error', comments?: string[], code?: string}"
)

// Classify parses raw generator output. It never fails: anything that doesn't
// match the response contract becomes an InvalidResponse carrying the raw text
// and the reason, so that the generator can be asked to fix it.
func Classify(raw string) GenerationResponse {
	parsed, err := gabs.ParseJSON([]byte(raw))
	if err != nil {
		return invalidJSON(raw, err.Error())
	}
	if !isObject(parsed) {
		return invalidJSON(raw, "Expected a JSON object.")
	}

	value := parsed.Path("status").Data()
	if value == nil {
		return invalidJSON(raw, "Missing status.")
	}
	status, ok := value.(string)
	if !ok {
		return invalidJSON(raw, "Invalid status.")
	}

	comments := []string{}
	if parsed.Path("comments").Data() != nil {
		if comments, ok = stringsAt(parsed, "comments"); !ok {
			return invalidJSON(raw, "Invalid comments.")
		}
	}

	switch s := Status(status); {
	case s.IsValid():
		code, ok := parsed.Path("code").Data().(string)
		if !ok {
			return invalidJSON(raw, "Invalid code.")
		}
		description, _ := parsed.Path("description").Data().(string)
		return ValidResponse{Status: s, Comments: comments, Code: code, Description: description}
	case s == StatusError:
		return PendingResponse{Comments: comments}
	case s == StatusInvalid:
		response, ok := parsed.Path("response").Data().(string)
		errs, eok := stringsAt(parsed, "errors")
		if ok && eok && len(errs) > 0 {
			return InvalidResponse{Response: response, Errors: errs}
		}
	}
	return invalidJSON(raw, "Invalid status.")
}

// ClassifyStored rebuilds a response from a record that was read back from
// storage. Unlike Classify it is strict: storage only ever holds responses
// that were classified before, so anything malformed is an error.
func ClassifyStored(record map[string]any) (GenerationResponse, error) {
	return classifyContainer(gabs.Wrap(record))
}

func classifyContainer(c *gabs.Container) (GenerationResponse, error) {
	status, ok := c.Path("status").Data().(string)
	if !ok {
		return nil, malformed("invalid response status")
	}

	switch s := Status(status); {
	case s == StatusInvalid:
		response, ok := c.Path("response").Data().(string)
		if !ok {
			return nil, malformed("invalid response")
		}
		errs, ok := stringsAt(c, "errors")
		if !ok || len(errs) == 0 {
			return nil, malformed("invalid response errors")
		}
		return InvalidResponse{Response: response, Errors: errs}, nil
	case s == StatusError:
		comments, ok := stringsAt(c, "comments")
		if !ok {
			return nil, malformed("invalid response comments")
		}
		return PendingResponse{Comments: comments}, nil
	case s.IsValid():
		comments, ok := stringsAt(c, "comments")
		if !ok {
			return nil, malformed("invalid response comments")
		}
		code, ok := c.Path("code").Data().(string)
		if !ok {
			return nil, malformed("invalid response code")
		}
		description, _ := c.Path("description").Data().(string)
		return ValidResponse{Status: s, Comments: comments, Code: code, Description: description}, nil
	}
	return nil, errors.WithDetails(malformed("invalid response status"), "status", status)
}

func invalidJSON(raw, detail string) InvalidResponse {
	errs := []string{invalidJSONMessage}
	if detail != "" {
		errs = append(errs, detail)
	}
	return InvalidResponse{Response: raw, Errors: append(errs, contractReminder)}
}

func isObject(c *gabs.Container) bool {
	_, ok := c.Data().(map[string]interface{})
	return ok
}

// stringsAt returns the array of strings stored under key. A missing key or
// any non-string element yields false.
func stringsAt(c *gabs.Container, key string) ([]string, bool) {
	items, ok := c.Path(key).Data().([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
