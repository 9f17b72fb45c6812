// Package pipeline implements the discover, fetch, classify, and aggregate
// stages for locating vendors that cover a full analyte panel.
package pipeline
