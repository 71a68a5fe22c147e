// Package naming derives file and directory names: output prefixes that
// mirror the input tree, per-format export paths, the "_input" infix for
// staged sources, flat error-log names, and in-run prefix collision
// resolution.
package naming
