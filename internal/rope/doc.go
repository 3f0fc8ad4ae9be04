// Package rope provides Text, a persistent rope of UTF-16 code units.
//
// Leaves store one byte per character when every character fits in 8 bits
// and two bytes otherwise. Composite nodes cache their length, and
// concatenation rotates subtrees so neither side of a composite grows far
// past twice the other. Insert and Delete are built from Slice and Concat
// and run in O(log n), sharing every untouched subtree with the original.
//
//	t := rope.FromString("hello world")
//	t = t.InsertString(5, ",") // "hello, world"
//	t = t.Delete(0, 7)         // "world"
package rope
