// Package session houses concrete implementations of the core.SessionStore.
// The interface itself (and the Session struct) live in the core package to
// centralize domain contracts. Keeping only implementations here prevents
// higher level packages (agents, runner) from depending on concrete storage.
//
// The pipeline holds exactly one case per run and discards it when the
// verdict is written, so the in-memory store is the default backend. Add
// durable backends in sub-packages without changing any calling code.
package session
