// Package auth defines the authentication-state contract shared by both
// backends and the feature code.
//
// The [State] holder owns the only persistent in-memory state in the core:
// the readiness gate, the authenticated flag and the current-user snapshot.
// It is single-writer (the backend's auth service), multi-reader (every
// repository and the CLI). Consumers that need the resolved session gate on
// [State.WaitReady] before reading, otherwise they race the startup probe.
//
// [Service] is the uniform operation surface (sign-in/up/out, current user);
// [TokenProvider] is the capability probed by the factory for backends that
// attach bearer tokens. The sqlite-backed [Store] persists sessions between
// CLI runs so the startup probe can restore them.
package auth
