// Package pipeline orchestrates asset discovery, per-asset processing and
// batch reporting.
//
// Run discovers inputs, plans every asset in discovery order (so collision
// resolution is deterministic), then hands the plans to a bounded worker
// pool. Each job skips itself when all of its outputs already exist,
// otherwise it stages QA inputs, runs one or two RapidCompact invocations,
// relocates directory renders and records failures. A failed job never
// stops the batch.
//
// List prints the same plan as an inventory without running anything.
package pipeline
