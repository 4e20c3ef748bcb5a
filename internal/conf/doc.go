// Package conf implements layered declarative configuration resolution for
// confstack.
//
// # Pipeline
//
// Resolution is a synchronous pipeline of pure stages:
//
//	Load -> Merge -> Validate -> NewView
//
// Each stage is a function of its inputs with no shared mutable state. A
// changed source is handled by rebuilding the whole pipeline from scratch;
// trees are small, and rebuilding sidesteps every stale-merge bug an
// incremental patcher could have.
//
// # Load Order
//
// Sources are merged in ascending rank; by convention:
//
//  1. Schema defaults (Registry.DefaultsSource)
//  2. Project file, e.g. pyproject.toml
//  3. Drop-in files: <dir>/*.toml, in lexicographic order
//  4. Environment variables (EnvSource)
//
// The environment always outranks files: an operator export beats anything
// a file says.
//
// # Internal Architecture
//
//   - Source: one immutable origin of configuration text with a rank.
//
//   - Node/Value: the parsed tree. Key order is preserved for diagnostics
//     but has no merge semantics.
//
//   - Registry/Rule: the schema, an explicitly constructed object so that
//     independent resolutions (tests included) cannot interfere.
//
//   - Merged: the layered tree plus leaf provenance.
//
//   - Issue: one validation finding. Errors block the View, warnings are
//     surfaced for visibility only.
//
//   - View: the immutable typed facade consumers read through.
package conf
