// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload implements the upload control: it accepts a single image
// path, enforces the client-side size limit and hands the file contents to
// the orchestrator.
//
// The size limit is the only contract enforced here. The extension list only
// configures which entries the file picker offers, the same way a browser
// picker filters on accept="image/*".
//
//	ctl := upload.NewControl(upload.DefaultMaxBytes, nil)
//	f, err := ctl.Open("scan.png")
//	if errors.Is(err, upload.ErrFileTooLarge) {
//	    // warn, change nothing
//	}
package upload
