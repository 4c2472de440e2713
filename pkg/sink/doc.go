// Package sink defines the contract every sink-type descriptor satisfies and
// the collaborators descriptors share: the summary-column transform, the
// internal-marker stripping, the lifecycle freeze gate and a registry keyed
// by sink type.
package sink
