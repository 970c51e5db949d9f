// Package dao defines the generic persistence contract used for step and
// task records together with the sentinel errors and list parameters shared
// by all store implementations (memory, fs and sqlite).
package dao
