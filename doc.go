// Package await is a library for awaiting concurrently running work.
//
// While Go excels at forking, await, on the other hand, excels at joining.
// Starting a goroutine is a one-liner; getting a typed result back, together
// with an error, a panic, or a cancellation, is where the boilerplate lives.
// This library provides that joining layer.
//
// # Serial vs. Concurrent Awaiting
//
// Given three independent operations taking 2, 3 and 1 seconds, running them
// one after another takes their sum, 6 seconds. Issuing them together and
// awaiting them jointly takes about the maximum, 3 seconds, because their
// waiting periods overlap. That is the entire trick, and [Join], [All] and
// [Select] are its spellings:
//
//   - [Join] runs every [Func] and awaits all of them, collecting results
//     positionally and joining errors;
//   - [All] does the same but fails fast, canceling the remaining Funcs as
//     soon as one of them fails;
//   - [Select] awaits only the first Func to complete and cancels the rest.
//
// The overlap only pays off when the operations are independent: no shared
// mutable state, no ordering dependency. Nothing in this package checks that.
//
// # Tasks
//
// [Spawn] starts a [Func] in its own goroutine and returns a [Task], a handle
// that can be awaited any number of times, from any goroutine, with a context
// bounding each wait. Awaiting a Task does not stop it; canceling it does,
// cooperatively, through its context.
//
// A panic inside a Func does not crash the program from a random goroutine.
// It is captured together with its stack trace and re-raised in whichever
// goroutine awaits the Task, the same way a panic in a child coroutine
// propagates to its joiner.
//
// # Backpressure
//
// [Spawn] never blocks, so spawning can outrun completion and pile up
// goroutines. Where that matters, use a [Group] with a limit, or [MergeSeq],
// both of which bound the number of Funcs in flight.
package await
