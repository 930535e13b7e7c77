//go:build !corio_debug

package corio

const debugAssertionsEnabled = false
