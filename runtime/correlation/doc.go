// Package correlation joins the results of concurrently launched members of a
// single step. A Group keeps one slot per member; Store tracks groups that are
// still in flight.
package correlation
