// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package version exposes build identification for the health endpoint and CLIs.
package version

// Version is the release version. Overridden at build time via
// -ldflags "-X github.com/mediatiger/analytics/internal/version.Version=v1.2.3".
var Version = "dev"
