// Package presets lists the presets configured on the synthesis engine.
// It helps users find the preset id to render with.
package presets
