// Package errors provides structured, coded errors for the dnd server.
//
// Every error carries a code (e.g. "E020") that maps to a registered
// template with a category, a short message, and a longer explanation.
// Callers add context with the builder methods:
//
//	err := errors.New("E020").
//	    WithDetail("no element with HID h42").
//	    WithSuggestion("Check that the element was mounted before the event arrived")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E020: Unknown event target
//	//
//	//   no element with HID h42
//	//
//	//   Hint: Check that the element was mounted before the event arrived
//
// # Error Categories
//
//   - runtime: drag session and dispatch errors
//   - protocol: wire decoding and transport errors
//   - config: configuration loading and validation
//   - cli: command line usage errors
package errors
