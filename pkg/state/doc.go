// Package state defines persistence-facing contracts for prerender build
// outputs: per-route records such as generated parameter manifests and
// fallback-shell descriptors that must survive between build passes.
//
// Responsibilities:
//   - Store[T] only loads/saves a single record for a single Ref.
//   - Mutate orchestrates a load-modify-save cycle with optimistic
//     concurrency, so parallel build workers do not clobber each other's
//     output for the same route.
//   - The core rootparams package stays persistence-agnostic; all storage
//     logic lives behind Store implementations supplied by the build system.
//
// Deterministic keys:
//
//	Ref.Identifier() provides the canonical storage key (`kind/route`). Build
//	adapters that persisted records under other layouts should translate in
//	the adapter, not here.
package state
