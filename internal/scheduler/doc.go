// Package scheduler ticks every running command once per period and enforces
// that each subsystem has at most one owning command. Scheduling a command
// interrupts whichever running commands hold any of its subsystems; that is
// the only source of interruption besides an explicit Cancel. The scheduler is
// single-threaded: no command ever blocks and no locks are taken.
package scheduler
