// Package ui renders user-facing terminal output: colored status lines, the
// export progress line and go-pretty summary tables. Logs go through
// pkg/logger instead.
package ui
