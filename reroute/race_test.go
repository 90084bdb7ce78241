// reroute/race_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build race

package reroute

// Concurrent planning tests run far fewer requests under the race
// detector.
const concurrentRequests = 8
