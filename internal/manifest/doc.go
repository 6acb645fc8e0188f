// SPDX-License-Identifier: MPL-2.0

// Package manifest builds packs from a CUE build manifest.
//
// A manifest lists source packs merged in order with one strategy, overlay
// sources merged into format-ranged overlay directories, optional
// descriptor fields and icon, and where and for which format to write the
// result:
//
//	description: "Faithful tweaks"
//	pack_format: 46
//	icon:        "art/icon.png"
//	sources: [{path: "vendor/base.zip"}, {path: "src"}]
//	overlays: [{
//		directory: "legacy"
//		formats: {min: 18, max: 33}
//		sources: [{path: "legacy"}]
//	}]
//	output: {path: "dist/tweaks.zip", format: 46}
package manifest
