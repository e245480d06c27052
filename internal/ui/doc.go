// Package ui styles terminal output with [lipgloss].
//
// A [Palette] is a small stylesheet of named styles. The CLI renders import reports and catalog
// listings through [Default], coloring item outcomes with [Palette.Status].
package ui
