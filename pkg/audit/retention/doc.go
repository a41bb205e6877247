// Package retention prunes old audit records.
//
// The Pruner deletes records older than the configured retention period and
// the oldest records over the optional record cap. The Scheduler runs the
// pruner on a cron schedule, typically once a day during off-hours.
package retention
