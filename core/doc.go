// Package core contains the iteration reporting domain: tracker entities, the
// report classification pipeline, report summaries, and the service that
// orchestrates fetching, classifying, and persisting iteration snapshots.
// Adapters (tracker client, chat notifier, stores, transports) depend on this
// package; core must not depend on them.
package core
