// Package climb contains the elevator commands and the bar-to-bar climb
// routine composed from them. The routine is a fixed sequence of stages;
// retries after a missed grab happen inside the grab commands and never in
// the sequence itself, so a grab that keeps missing stalls its stage rather
// than letting the climb advance without a confirmed hold.
package climb
