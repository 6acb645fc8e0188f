// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixtures for tests that read and write packs on
// disk. Helpers fail the test immediately instead of returning errors.
package testutil
