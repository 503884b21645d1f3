// Package processor contains the batch orchestration of kanavox. It walks an
// input list one entry at a time, transliterates the text when asked to,
// obtains an audio query from the engine, renders it to a file named after
// the entry and records the outcome. A failing entry never stops the batch.
// This package serves as the main coordinator between all other components.
package processor
