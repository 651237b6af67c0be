// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui renders the live state of the execution manager in the
// terminal. It polls the manager on a fixed interval, so the engine never
// needs to know it is being watched.
package tui
