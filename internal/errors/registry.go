package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Runtime (E001-E039)
	"E001": {
		Category: CategoryRuntime,
		Message:  "Expression evaluation failed",
		Detail:   "A bound expression could not be evaluated against the scope.",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Digest limit reached",
		Detail:   "Watchers kept changing scope values after the maximum number of digest passes.",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Payload serialization failed",
		Detail:   "The drag payload could not be converted to text. The drag continues with an empty payload.",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Scheduler closed",
		Detail:   "A task was posted to an event loop that has already stopped.",
	},
	"E020": {
		Category: CategoryRuntime,
		Message:  "Unknown event target",
		Detail:   "The event names an element that is not mounted in this session.",
	},

	// Protocol (E060-E079)
	"E060": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
		Detail:   "The HTTP connection could not be upgraded to a WebSocket.",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
		Detail:   "A frame received from the client could not be decoded.",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "Invalid event",
		Detail:   "An event frame carried a malformed or unsupported event.",
	},
	"E063": {
		Category: CategoryProtocol,
		Message:  "Write failed",
		Detail:   "Patches could not be written to the client connection.",
	},

	// Config (E120-E139)
	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid dnd.json",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No dnd.json was found at the given location.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is outside its allowed range.",
	},

	// CLI (E140-E159)
	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command line argument has an unsupported value.",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
