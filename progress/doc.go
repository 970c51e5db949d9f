// Package progress keeps aggregated routing counters for a running process.
package progress
