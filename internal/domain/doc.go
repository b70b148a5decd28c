// Package domain contains the core entities of the application: users,
// flashcards, and the per-user review rules that drive the spaced
// repetition schedule. Entities validate themselves on construction and
// expose sentinel errors for each validation failure.
package domain
