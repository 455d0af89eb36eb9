// Package translate rewrites Snowflake-dialect SQL into DuckDB SQL.
//
// The translator is deliberately not a full SQL parser. It lexes the input
// into a flat token stream and applies table-driven rewrites keyed by
// function and type name: a type-name table, a 1:1 function-name table and
// a set of per-function call rewriters. Matching is whole-token, so short
// type names (INT, CHAR) never collide with their longer siblings and
// TIMESTAMP_NTZ never collides with TIMESTAMP. Call arguments are split
// with SplitArgs and translated before the enclosing call, so nested
// rewrites resolve inner-to-outer.
//
// The contract is best effort: anything unrecognized passes through
// verbatim and surfaces later as an execution error, never as a translation
// error.
package translate
