// Package indvar implements strength reduction of derived induction
// variables.
//
// Within a natural loop, every phi of the loop header is a candidate basic
// counter c. A value v is a derived induction variable when it can be
// written as
//
//	v = c×Mul + Add
//
// for integer constants Mul and Add, using only multiplications and additions
// by constants. Each such value gets a Descriptor, and the descriptors of a
// loop are kept in a Table that lives exactly as long as the loop is being
// processed.
//
// A derived value with Mul ≠ 1 and Add ≠ 0 is replaced by a new header phi
// that starts at init×Mul + Add in the preheader and is bumped by Mul×s on the
// back edge, where s is the step of c. The original instruction is left in
// place with no uses; run dce to remove it.
//
// Processing a loop is split in two phases. Seed, Close and the increment
// lookup only read the function; Rewrite is the only phase that mutates it.
package indvar
