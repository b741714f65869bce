package monitor

// traps.go holds the default monitor routines' source text. Each routine is
// a tiny, free-standing program assembled independently and then spliced
// into one system image by image.go; none of them ever return to the code
// that faulted, since the architecture gives protected code no path back
// into the program that triggered a fault or a timeout.

// faultSource halts the machine on a RAM-bounds or privilege violation.
// A real monitor would inspect FaultFlag and the faulting PC and log
// diagnostics to a port before killing; this one just stops cleanly.
const faultSource = `
! header fault
kill
`

// timeoutSource halts the machine when a program's cycle budget is
// exceeded.
const timeoutSource = `
! header timeout
kill
`

// interruptSource is the default software-interrupt handler: it simply
// returns control to the interrupted line. Routines that need to do real
// work dispatch from here by inspecting the caller's registers; the
// default handler has nothing to dispatch to.
const interruptSource = `
! header interrupt
retint
`
