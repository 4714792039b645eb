// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package postgres provides PostgreSQL-backed implementations of the
// auth repositories. Repositories take a pool interface so unit tests
// can substitute pgxmock; production code passes *pgxpool.Pool.
package postgres
