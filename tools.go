//go:build tools

// Package tools pins code generators used by go:generate directives.
package guestbook

import (
	_ "go.uber.org/mock/mockgen"
)
