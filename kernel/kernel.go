// Package kernel is the real-time core: a static-priority interrupt
// scheduler, priority-ceiling resources, and atomic status cells.
//
// There is no thread pool and no time slicing. A task is bound to one
// interrupt line with a fixed priority; the interrupt controller is the
// dispatcher. Tasks never block: work that cannot finish immediately is
// submitted asynchronously and the task returns, to be re-entered by a
// completion interrupt.
package kernel

import "quartz/hal"

const maxTasks = 16

// TaskID names one bound task.
type TaskID uint8

// Task is an interrupt-bound unit of logic.
//
// Run is entered once per interrupt occurrence, at the task's priority,
// and must be bounded. Task state is owned by the task and never
// aliased; anything shared goes through a Resource or a Cell.
type Task interface {
	Run()
}

// TaskFunc adapts a bare function to the Task interface.
type TaskFunc func()

func (f TaskFunc) Run() { f() }

// BindResult describes the outcome of a Bind attempt.
type BindResult uint8

const (
	BindOK BindResult = iota
	BindErrStarted
	BindErrTableFull
	BindErrLineBound
	BindErrNilTask
	BindErrZeroPriority
)

func (r BindResult) String() string {
	switch r {
	case BindOK:
		return "ok"
	case BindErrStarted:
		return "table closed after start"
	case BindErrTableFull:
		return "task table full"
	case BindErrLineBound:
		return "line already bound"
	case BindErrNilTask:
		return "nil task"
	case BindErrZeroPriority:
		return "zero priority"
	default:
		return "unknown"
	}
}

type taskSlot struct {
	task Task
	line hal.IRQ
	prio hal.Priority
	busy bool
}

// Sched owns the fixed task table and drives dispatch through the
// interrupt controller.
//
// The table is built with Bind during system initialization and closed
// by Start; the running system never changes it.
type Sched struct {
	ic      hal.InterruptController
	slots   [maxTasks]taskSlot
	count   TaskID
	started bool
}

// NewSched creates a scheduler over the given controller.
func NewSched(ic hal.InterruptController) *Sched {
	return &Sched{ic: ic}
}

// Bind adds a task to the table. Legal only before Start.
func (s *Sched) Bind(line hal.IRQ, prio hal.Priority, t Task) (TaskID, BindResult) {
	if s.started {
		return 0, BindErrStarted
	}
	if t == nil {
		return 0, BindErrNilTask
	}
	if prio == 0 {
		return 0, BindErrZeroPriority
	}
	if s.count >= maxTasks {
		return 0, BindErrTableFull
	}
	for i := TaskID(0); i < s.count; i++ {
		if s.slots[i].line == line {
			return 0, BindErrLineBound
		}
	}
	id := s.count
	s.count++
	s.slots[id] = taskSlot{task: t, line: line, prio: prio}
	return id, BindOK
}

// Start programs the controller with the bound table and enables the
// lines. After Start the table is immutable.
func (s *Sched) Start() {
	if s.started {
		Fail(FaultBadConfig, "scheduler started twice")
	}
	s.started = true
	for i := TaskID(0); i < s.count; i++ {
		id := i
		sl := &s.slots[id]
		if err := s.ic.Attach(sl.line, sl.prio, func() { s.dispatch(id) }); err != nil {
			Fail(FaultBadConfig, "attach: "+err.Error())
		}
	}
	for i := TaskID(0); i < s.count; i++ {
		s.ic.Enable(s.slots[i].line)
	}
}

// Pend raises a task's bound line from software. The dispatch that
// follows obeys the same priority rules as a hardware raise.
func (s *Sched) Pend(id TaskID) {
	if id >= s.count {
		Fail(FaultBadConfig, "pend of unbound task")
	}
	s.ic.Pend(s.slots[id].line)
}

// Priority reports a bound task's fixed priority.
func (s *Sched) Priority(id TaskID) hal.Priority {
	if id >= s.count {
		return 0
	}
	return s.slots[id].prio
}

// Idle parks the processor between interrupts. It does not return.
func (s *Sched) Idle() {
	for {
		s.ic.Idle()
	}
}

// A task instance is re-entered only after its previous entry returned;
// the line firing mid-entry means the controller or the board model is
// violating the dispatch contract.
func (s *Sched) dispatch(id TaskID) {
	sl := &s.slots[id]
	if sl.busy {
		Fail(FaultReentrantDispatch, "task re-entered while in progress")
	}
	sl.busy = true
	sl.task.Run()
	sl.busy = false
}
