// Package securebuf provides Buffer, a fixed-capacity byte buffer for key
// material and passwords.
//
// The backing memory of a Buffer is locked into RAM for the buffer's whole
// lifetime, so it is never written to swap, and every byte of it (not only
// the visible prefix) is wiped before it is unlocked and released.
//
// Constructors:
//
//   - [New] allocates a zero-filled buffer of a given size
//   - [FromBytes] copies a borrowed slice into a fresh locked allocation
//   - [FromOwned] adopts a slice the caller gives up, without copying it
//
// A Buffer can shrink ([Buffer.Shrink]) but never grow, so it never
// reallocates and never leaves a stale copy of its contents behind. Call
// [Buffer.Destroy] when the secret is no longer needed; a buffer that is
// garbage collected without Destroy is wiped by a runtime cleanup, but the
// timing of that is up to the collector.
//
// A Buffer has a single owner and no internal synchronization. Callers that
// share one across goroutines must guard it themselves.
//
// fmt verbs, String, GoString and slog all render a redacted description
// ("securebuf size: 32 [redacted]"), never the contents.
package securebuf
