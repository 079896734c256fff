// Package telemetry keeps per-device operational counters.
//
// Every device owns one Session for its whole life. The lifecycle engine
// increments named counters (successful connections, failed connections,
// errors); a Reporter periodically exports snapshots of all live sessions to
// a time-series sink such as InfluxDB.
//
// Two implementations exist: RecordingSession, backed by atomic counters,
// and Nop, which discards everything. Choose between them with a Factory.
//
// # Thread Safety
//
// Sessions are safe for concurrent use. Increments after Close are ignored.
package telemetry
