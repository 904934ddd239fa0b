// Package logic implements the interview engine's addressing and
// evaluation primitives: pointers into nested answer data, an
// expression/template evaluator backed by an embedded ECMAScript runtime,
// and boolean when-conditions.
package logic
