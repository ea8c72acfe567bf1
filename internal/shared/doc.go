// Package shared holds cross-cutting helpers that belong to no single
// layer. Currently that is the testutil subpackage: log capture and
// report fixtures used by tests across the codebase.
package shared
