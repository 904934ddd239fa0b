// Package interview implements the interview state machine: immutable
// interview state, the Ask/Set/Exit step variants, and the replay-based
// update algorithm that produces the next question or a terminal result.
package interview
