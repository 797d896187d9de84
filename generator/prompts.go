package generator

import (
	"fmt"
	"strings"

	"github.com/priyxstudio/pub/modules"
)

const responseProperties = `* "status": one of the following strings:
  * "success": the code was generated and there is nothing to add.
  * "info": the code was generated but the user should know something important.
  * "warning": the code was generated but it might run into a problem the user should know about.
  * "error": the user's requirements can't be met. The reasons go into "comments".
  Never put any other string into "status".
* "comments": anything the user must be told, in plain language. Leave it empty unless it matters.
* "code": a complete Go source file and nothing else. No markdown fences or other characters around it.`

var generationFormat = `Your response must be a JSON object with 3 properties:

` + responseProperties + `

Example of a response:

{
    "status": "info",
    "comments": ["The counter starts at 1 because 0 is not a valid step."],
    "code": "package module\n..."
}`

var adjustmentFormat = `Your response must be a JSON object with 4 properties:

` + responseProperties + `
* "description": the user's original description, changed to reflect the adjustment.

Example of a response:

{
    "status": "success",
    "comments": [],
    "description": "A counter that increments and decrements a value starting at 0.",
    "code": "package module\n..."
}`

const codeGeneration = `You implement a single module of a larger program in Go, based on the user's description. The module may interact with other modules.

The code is one Go source file in package "module". It imports the module kit from "github.com/priyxstudio/pub/modkit" and declares exactly this function:

    func New(surface *modkit.Surface) (*modkit.Hooks, error)

New sets up the module's state and returns its hooks. It must not block and must not talk to other modules.

The kit provides:
* (*modkit.Surface).Expose(name string, getter modkit.Getter): exposes a value to other modules. Getter is func() any and is called whenever another module reads the value.
* (*modkit.Surface).Get(name string) any: reads a value exposed by a module.
* (*modkit.Surface).RegisterEvent(event string): exposes an event. Always register events in Init before dispatching them.
* (*modkit.Surface).Dispatch(event string) error: calls every handler other modules added for the event.
* (*modkit.Surface).On(event string, handler modkit.Handler) error: listens to an event of a module. Handler is func().
* (*modkit.Surface).Printf(format string, args ...any): writes a line of output for the user. This is the only way to show anything.
* modkit.Hooks{Init func() error; Run func(ctx context.Context, peers modkit.Peers) error}
* modkit.Peers is map[string]*modkit.Surface holding the surfaces of the other modules by name.

Init runs once, before any module runs. Only do the setup that is necessary there and return.
Run is called once after every module was initialized and may run until ctx is done. Anything that reads values or listens to events of other modules belongs in Run, because they are not ready before. Use peers[name].Get and peers[name].On to interact with other modules and nothing else. Return nil when there is nothing left to do and ctx.Err() when ctx is done. Returning any other error marks the module as broken.

Only the Go standard library and the kit are available. Processes, networking and syscalls are not.
Comment the parts of the code the way the user thinks about their requirements.
Never produce anything but the source file in "code".`

var moduleExamples = []string{
	`Example: the user asks for a counter module that increments every second, exposes the count as "value" and dispatches an "incremented" event on every increment.

Your response (code shortened):

{
    "status": "success",
    "comments": [],
    "code": "package module\n\nimport (...)\n\nfunc New(surface *modkit.Surface) (*modkit.Hooks, error) {...}"
}

The code:

package module

import (
	"context"
	"time"

	"github.com/priyxstudio/pub/modkit"
)

func New(surface *modkit.Surface) (*modkit.Hooks, error) {
	count := 0
	surface.Expose("value", func() any { return count })
	return &modkit.Hooks{
		Init: func() error {
			surface.RegisterEvent("incremented")
			return nil
		},
		Run: func(ctx context.Context, peers modkit.Peers) error {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					count++
					surface.Printf("count: %d", count)
					surface.Dispatch("incremented")
				}
			}
		},
	}, nil
}`,
	`Example: the user asks for a module printing the factorial of the "value" of the "counter" module every time the counter dispatches "incremented".

The code:

package module

import (
	"context"

	"github.com/priyxstudio/pub/modkit"
)

func factorial(n int) int {
	if n <= 1 {
		return 1
	}
	return n * factorial(n-1)
}

func New(surface *modkit.Surface) (*modkit.Hooks, error) {
	return &modkit.Hooks{
		Run: func(ctx context.Context, peers modkit.Peers) error {
			counter := peers["counter"]
			show := func() {
				if n, ok := counter.Get("value").(int); ok {
					surface.Printf("%d! = %d", n, factorial(n))
				}
			}
			if err := counter.On("incremented", show); err != nil {
				return err
			}
			show()
			<-ctx.Done()
			return ctx.Err()
		},
	}, nil
}`,
	`Example: the user asks for the same factorial module but refers to a "result" value that the counter module does not expose. The counter exposes "value", which fits, so use it and tell the user.

Your response (code omitted):

{
    "status": "info",
    "comments": ["The counter module does not expose \"result\" but it exposes \"value\", which is used instead."],
    "code": "package module\n..."
}`,
	`Example: the user asks for the factorial module but refers to a module named "foo" that does not exist. Don't generate any code; explain the problem and how the user can fix it.

Your response:

{
    "status": "error",
    "comments": ["There is no module named \"foo\". Change the description to use another module or create the \"foo\" module."],
    "code": ""
}`,
}

var adjustmentExamples = []string{
	`Example: the user originally asked for "A counter that increments a value every second." and now asks: "Start the counter at 10."

Your response (code shortened):

{
    "status": "success",
    "comments": [],
    "description": "A counter that increments a value every second, starting at 10.",
    "code": "package module\n..."
}`,
}

const codeFix = `The module you generated produces errors. Fix it and respond in the same format as before.
Clean up the code: keep only the source file, with nothing around it.
Respond with "success", "info" or "warning" unless you could not fix the code. Don't respond with "error" if you fixed the errors.
The user lists the errors they ran into.`

const codeAdjustment = `The user asks for an adjustment of the module you generated. Generate the adjusted module and a new description that includes the adjustment.`

// otherModules describes the other modules to the generator.
func otherModules(others []modules.ModuleInterface) string {
	var b strings.Builder
	b.WriteString("All the other modules are listed below with the values and events they expose. ")
	b.WriteString("If the user asks to use a value or event a module doesn't expose, either use one with a similar name or respond with an error. Tell the user about it either way.")
	if len(others) == 0 {
		b.WriteString("\n\nThere are no other modules.")
	}
	for _, m := range others {
		b.WriteString("\n\n")
		b.WriteString(summary(m))
	}
	return b.String()
}

func summary(m modules.ModuleInterface) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n    exposed values:", m.Name)
	for _, v := range m.Values {
		fmt.Fprintf(&b, "\n        * %s", v)
	}
	b.WriteString("\n    exposed events:")
	for _, e := range m.Events {
		fmt.Fprintf(&b, "\n        * %s", e)
	}
	return b.String()
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func system(content string) Message    { return Message{Role: "system", Content: content} }
func user(content string) Message      { return Message{Role: "user", Content: content} }
func assistant(content string) Message { return Message{Role: "assistant", Content: content} }

func generationMessages(description string, others []modules.ModuleInterface) []Message {
	out := []Message{system(generationFormat), system(codeGeneration)}
	for _, example := range moduleExamples {
		out = append(out, system(example))
	}
	return append(out, system(otherModules(others)), user(description))
}

func fixMessages(description, prior string, errs []string, others []modules.ModuleInterface) []Message {
	return append(generationMessages(description, others),
		assistant(prior),
		system(codeFix),
		user("Errors: \n\n"+strings.Join(errs, "\n\n")),
	)
}

func adjustmentMessages(description, instructions, prior string, others []modules.ModuleInterface) []Message {
	out := append(generationMessages(description, others), assistant(prior), system(codeAdjustment), system(adjustmentFormat))
	for _, example := range adjustmentExamples {
		out = append(out, system(example))
	}
	return append(out, user(instructions))
}
