// Package scope evaluates the expressions bound to drag and drop directives.
//
// A Scope holds application variables and answers two questions for the
// directives: "what is this expression's value?" (Eval) and "run this
// callback expression" (Invoke). Callers inject per-call variables such as
// event or dropEffect through Locals.
//
// Expressions are resolved in this order:
//
//  1. a closure registered with Func for the exact expression text
//  2. an assignment statement (name = expr), Invoke only
//  3. an expr-lang expression over locals and scope variables
//
// Watch and Digest re-evaluate watched expressions after application state
// changes, calling listeners whose value changed:
//
//	sc := scope.New()
//	sc.Watch("disabled", func(v, old any) { fmt.Println("disabled:", scope.Truthy(v)) })
//	sc.Set("disabled", true)
//	_ = sc.Digest()
package scope
