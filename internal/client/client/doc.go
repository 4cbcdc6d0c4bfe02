// Package client contains the client-side plumbing of campusroutine.
//
// # Overview
//
//  1. RemoteDataSource, the contract the sync layer uses to reach the
//     remote routine database, and Client, which adds Ping/Close.
//  2. GRPCClient, the default implementation over the campusroutine gRPC
//     service. It injects an optional admin token and maps status codes to
//     sentinel errors.
//  3. S3Source, an alternative implementation that reads the JSON mirror in
//     an S3-compatible bucket.
//  4. InitDatabase / RunMigrations / NewRepositories for the on-device SQLite
//     database.
//
// # Error Handling
//
// Implementations return common.ErrNotFound when a department has no routine
// documents, common.ErrUnavailable for network failures, timeouts and unknown
// remote errors, and common.ErrUnauthorized for rejected admin calls. Match
// them with errors.Is.
package client
