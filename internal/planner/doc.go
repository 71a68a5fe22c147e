// Package planner derives every output path for a discovered asset.
//
// BuildPlan is pure: it maps an input path and the run configuration to an
// AssetPlan (report, render and export paths, QA staging, two-pass
// intermediate). Planner adds in-run prefix collision handling on top.
// Nothing here touches the filesystem; staging and execution live in the
// pipeline and rapidcompact packages.
package planner
