// Package store is the durable slot storage behind the job orchestrator.
//
// It exposes atomic get/set/remove of whole JSON records keyed by fixed
// constants, plus typed accessors for the job record and the persisted
// reference photo. There is exactly one job slot; every transition
// replaces the record wholesale, so readers never observe a partial
// update.
package store
