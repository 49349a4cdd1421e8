package command

import "fmt"

// journal records lifecycle calls across commands so tests can assert order.
type journal struct {
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

// countdown finishes after a fixed number of executes; negative never finishes.
type countdown struct {
	Base
	log         *journal
	finishAfter int
	executes    int
	inits       int
	ends        int
	interrupted bool
}

func newCountdown(name string, finishAfter int, log *journal, reqs ...Subsystem) *countdown {
	return &countdown{Base: NewBase(name, reqs...), log: log, finishAfter: finishAfter}
}

func (c *countdown) Initialize() {
	c.inits++
	c.executes = 0
	c.interrupted = false
	if c.log != nil {
		c.log.add("%s.init", c.Name())
	}
}

func (c *countdown) Execute() {
	c.executes++
	if c.log != nil {
		c.log.add("%s.exec", c.Name())
	}
}

func (c *countdown) IsFinished() bool {
	return c.finishAfter >= 0 && c.executes >= c.finishAfter
}

func (c *countdown) End(interrupted bool) {
	c.ends++
	c.interrupted = interrupted
	if c.log != nil {
		c.log.add("%s.end(%t)", c.Name(), interrupted)
	}
}

// drive runs cmd the way the scheduler does and returns the tick on which it
// finished, or -1 if it was still running after maxTicks.
func drive(cmd Command, maxTicks int, beforeTick func(tick int)) int {
	cmd.Initialize()
	for tick := 1; tick <= maxTicks; tick++ {
		if beforeTick != nil {
			beforeTick(tick)
		}
		cmd.Execute()
		if cmd.IsFinished() {
			cmd.End(false)
			return tick
		}
	}
	return -1
}
