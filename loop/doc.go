// Package loop provides utilities for loop representation and detection.
//
// Loop detection finds the natural loops of an ir.Func. A back edge is an
// edge b → h where h dominates b; the loop headed by h is h together with
// every block that reaches one of its back edges without passing through h.
// Back edges sharing a header form a single loop with several latches.
//
// Loops are nested by containment, and the detector reports them innermost
// first so that a transformation can finish with an inner loop before it
// looks at the loop around it.
package loop
