// Package scheduler runs periodic maintenance such as catalog rebuilds on
// cron schedules.
package scheduler
