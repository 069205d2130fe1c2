// Package datetime reconstructs showtime timestamps from free text.
//
// Venue pages rarely publish machine-readable dates. The helpers here pull
// month/day and time-of-day tokens out of text, guess the missing year and
// render a timestamp with an explicit numeric offset in the venue timezone.
package datetime
