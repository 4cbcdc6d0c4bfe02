// Package rpc describes the campusroutine gRPC service.
//
// Messages are protobuf well-known types. Scalars use the wrapper types;
// structured payloads (schedules, maintenance flags, publish requests) are
// google.protobuf.Struct values keyed by the models package's JSON names.
//
// Public methods: Ping, CheckForUpdates, FetchLatest, MetadataVersion,
// Maintenance. Admin methods (bearer token required): Publish, Delete,
// SetMaintenance.
package rpc
