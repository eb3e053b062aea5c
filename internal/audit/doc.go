// Package audit records control actions against the show engine.
//
// Every apply, stop and settings change made through the API, plus the
// startup show, is written to the audit_log table with the actor that made
// it. Reads are paginated and newest first.
package audit
