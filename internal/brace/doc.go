// Package brace moves opening braces that end a line of Java code onto a
// line of their own.
//
// The transform is a single forward pass over the lines of one file. It
// remembers at most one "owner" line, the last keyword statement or the
// last line that looks like the start of a method declaration, and gives
// the relocated '{' the owner's indentation:
//
//	if (a &&            if (a &&
//	        b) {   =>           b)
//	                    {
//
// Closing braces that share a line with a following keyword ("} else {")
// are split onto their own line first. Lines that only hold '{' are left
// alone, so running the pass twice changes nothing.
//
// Method declarations are recognised by exactly two leading spaces. The
// rule is brittle and intentionally narrow: it fits sources indented with
// two spaces per level and nothing else.
//
// Java is not parsed. Braces inside string literals or comments that
// start earlier on the line are treated like code.
package brace
