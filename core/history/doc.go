// Package history loads historical household energy readings and summarises
// them into an overall baseline plus hour-of-day and day-of-week profiles.
// Summaries are computed once at startup and are read-only afterwards.
package history
