// Package alert keeps an agent's open alerts consistent with checklist state.
//
// A correlation pass does two things. Completed items resolve every open alert
// whose type they answer (see ResolvesFor). Incomplete items older than their
// category's threshold raise one overdue warning each, unless an open alert of
// that type already exists. Both halves are idempotent, so a pass may be
// repeated or raced without creating duplicates.
package alert
