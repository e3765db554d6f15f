// Package diag defines the findings model shared by the analysis passes.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for what the passes notice
//     in a loaded trace/type pair: depth limits that fired, dangling type
//     references, unbalanced begin/end records.
//   - Offer light-weight utilities (Reporter, Bag) that let passes emit
//     findings without coupling to storage or formatting.
//
// Package diag performs no IO. Rendering beyond FormatShort lives in
// internal/report.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – the Subject (artifact + record index) the finding is about.
//   - Notes – optional secondary subjects, e.g. the type a limit hit names.
//
// Passes emit through a Reporter, usually a BagReporter over a Bag that the
// caller sorts and deduplicates before rendering.
package diag
