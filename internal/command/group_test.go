package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceStartsNextChildOnFollowingTick(t *testing.T) {
	log := &journal{}
	a := newCountdown("A", 3, log)
	b := newCountdown("B", 1, log)
	seq := Sequence("seq", a, b)

	var tick4 []string
	finished := drive(seq, 10, func(tick int) {
		if tick == 4 {
			tick4 = append(tick4, log.entries[len(log.entries)-1])
		}
	})

	require.Equal(t, 4, finished)
	assert.Equal(t, 1, b.inits)
	assert.Equal(t, "A.end(false)", tick4[0], "tick 4 must begin right after A ended")
	assert.Equal(t, []string{
		"A.init", "A.exec", "A.exec", "A.exec", "A.end(false)",
		"B.init", "B.exec", "B.end(false)",
	}, log.entries)
}

func TestEmptyGroupsFinishOnFirstTick(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	cases := map[string]Command{
		"sequence": Sequence("empty"),
		"parallel": Parallel("empty"),
		"race":     Race("empty"),
		"timeout":  WithTimeout(Parallel("empty"), clock, time.Second),
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 1, drive(cmd, 5, nil))
		})
	}
}

func TestSequenceReinitializeBehavesLikeFresh(t *testing.T) {
	a := newCountdown("A", 2, nil)
	b := newCountdown("B", 2, nil)
	seq := Sequence("seq", a, b)

	require.Equal(t, 4, drive(seq, 10, nil))
	_, idx := seq.Current()
	require.Equal(t, 2, idx)

	require.Equal(t, 4, drive(seq, 10, nil))
	assert.Equal(t, 2, a.inits)
	assert.Equal(t, 2, b.inits)
}

func TestSequenceInterruptEndsOnlyActiveChild(t *testing.T) {
	log := &journal{}
	a := newCountdown("A", 1, log)
	b := newCountdown("B", -1, log)
	c := newCountdown("C", 1, log)
	seq := Sequence("seq", a, b, c)

	require.Equal(t, -1, drive(seq, 3, nil))
	seq.End(true)

	assert.True(t, b.interrupted)
	assert.Equal(t, 1, b.ends)
	assert.Zero(t, c.inits)
	assert.Zero(t, c.ends)
}

func TestParallelFinishesWhenAllChildrenFinish(t *testing.T) {
	a := newCountdown("A", 1, nil)
	b := newCountdown("B", 3, nil)
	par := Parallel("par", a, b)

	require.Equal(t, 3, drive(par, 10, nil))
	assert.Equal(t, 1, a.executes, "finished child must not be ticked again")
	assert.Equal(t, 1, a.ends)
	assert.Equal(t, 1, b.ends)
	assert.False(t, b.interrupted)
}

func TestParallelInterruptPropagatesToRunningChildren(t *testing.T) {
	a := newCountdown("A", 1, nil)
	b := newCountdown("B", -1, nil)
	par := Parallel("par", a, b)

	require.Equal(t, -1, drive(par, 2, nil))
	par.End(true)

	assert.False(t, a.interrupted)
	assert.Equal(t, 1, a.ends)
	assert.True(t, b.interrupted)
}

func TestRaceInterruptsLosers(t *testing.T) {
	fast := newCountdown("fast", 2, nil)
	slow := newCountdown("slow", 5, nil)
	race := Race("race", fast, slow)

	require.Equal(t, 2, drive(race, 10, nil))
	assert.False(t, fast.interrupted)
	assert.True(t, slow.interrupted)
	assert.Equal(t, 1, slow.ends)
}

func TestWithTimeoutBoundsParallelGroup(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	quick := newCountdown("quick", 1, nil)
	stuck := newCountdown("stuck", -1, nil)
	bounded := WithTimeout(Parallel("shoot", quick, stuck), clock, 1500*time.Millisecond)

	finished := drive(bounded, 200, func(int) { clock.Advance(20 * time.Millisecond) })

	require.Equal(t, 75, finished, "1.5s at 20ms per tick")
	assert.True(t, stuck.interrupted)
	assert.Equal(t, 1, stuck.ends)
	assert.False(t, quick.interrupted)
}

func TestGroupRequirementsAreUnion(t *testing.T) {
	elevator := NewResource("elevator")
	drivetrain := NewResource("drivetrain")
	a := newCountdown("A", 1, nil, elevator)
	b := newCountdown("B", 1, nil, elevator, drivetrain)

	par := Parallel("par", a, b)
	assert.ElementsMatch(t, []Subsystem{elevator, drivetrain}, par.Requirements())
}

func TestGroupRunsWhenDisabledOnlyIfAllChildrenDo(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	assert.True(t, Sequence("waits", NewWait(clock, time.Second), NewWait(clock, time.Second)).RunsWhenDisabled())
	assert.False(t, Sequence("mixed", NewWait(clock, time.Second), newCountdown("A", 1, nil)).RunsWhenDisabled())
}

func TestNilChildPanics(t *testing.T) {
	assert.Panics(t, func() { Sequence("bad", nil) })
}

func TestEitherSelectsBranchAtInitialize(t *testing.T) {
	ready := false
	yes := newCountdown("yes", 1, nil)
	no := newCountdown("no", 1, nil)
	cond := Either("maybe", yes, no, func() bool { return ready })

	require.Equal(t, 1, drive(cond, 3, nil))
	assert.Same(t, no, cond.Selected())
	assert.Zero(t, yes.inits)

	ready = true
	require.Equal(t, 1, drive(cond, 3, nil))
	assert.Same(t, yes, cond.Selected())
	assert.Equal(t, 1, yes.ends)
}

func TestWaitFinishesAtDeadline(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	w := NewWait(clock, 100*time.Millisecond)
	w.Initialize()
	clock.Advance(99 * time.Millisecond)
	assert.False(t, w.IsFinished())
	assert.Equal(t, time.Millisecond, w.Remaining())
	clock.Advance(time.Millisecond)
	assert.True(t, w.IsFinished())
	assert.Zero(t, w.Remaining())
}

func TestInstantRunsActionOnInitialize(t *testing.T) {
	calls := 0
	inst := NewInstant("bump", func() { calls++ })
	require.Equal(t, 1, drive(inst, 3, nil))
	assert.Equal(t, 1, calls)
}
