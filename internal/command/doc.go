// Package command defines the periodic command contract driven by the
// scheduler, the leaf commands every routine is built from (instant actions
// and timed waits), and the combinators that compose them into sequential,
// parallel, race and conditional groups. Groups are commands themselves so
// routines nest arbitrarily; the graph is fixed once composed.
package command
