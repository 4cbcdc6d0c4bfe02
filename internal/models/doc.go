// Package models holds the routine domain types shared by the client and
// the server: week days, timetable entries, department schedules, the
// principal a schedule is filtered for, and the remote maintenance flags.
//
// Schedule and Entry are plain values. A Schedule is replaced wholesale on
// every sync, so nothing in this package mutates one in place.
package models
