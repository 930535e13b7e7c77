//go:build corio_debug

package corio

// debugAssertionsEnabled is true when built with -tags corio_debug. With it
// unset, debugAssert is a no-op and precondition violations are undefined
// behaviour, matching the source contract in §7 of the specification.
const debugAssertionsEnabled = true
