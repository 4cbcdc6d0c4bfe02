// Package schedules is the on-device store of department schedules.
//
// One snapshot is kept per department. Save replaces the snapshot wholesale
// inside a transaction and Clear removes it, so a deleted or reshuffled
// remote schedule never leaves orphaned rows behind. Every write is also
// pushed to Observe subscribers of that department (nil after Clear).
package schedules
