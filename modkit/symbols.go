package modkit

import (
	"reflect"
)

// ImportPath is the path generated module code imports the kit from.
const ImportPath = "github.com/priyxstudio/pub/modkit"

// Symbols exports the kit to the interpreter running generated code. Only
// concrete types and functions are exported so no interface wrappers are
// needed.
var Symbols = map[string]map[string]reflect.Value{
	ImportPath + "/modkit": {
		"DefaultOutputLines": reflect.ValueOf(DefaultOutputLines),
		"NewSurface":         reflect.ValueOf(NewSurface),

		"Getter":  reflect.ValueOf((*Getter)(nil)),
		"Handler": reflect.ValueOf((*Handler)(nil)),
		"Hooks":   reflect.ValueOf((*Hooks)(nil)),
		"Peers":   reflect.ValueOf((*Peers)(nil)),
		"Surface": reflect.ValueOf((*Surface)(nil)),
	},
}
