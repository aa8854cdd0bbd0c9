// SPDX-License-Identifier: MIT

package ephemeral

import "errors"

var (
	// ErrSpawnLimit is returned when starting another executor would exceed WithMaxLive.
	ErrSpawnLimit = errors.New("ephemeral: live executor limit reached")

	// ErrNoReply is reported when an executor ended without replying.
	ErrNoReply = errors.New("ephemeral: executor ended without a reply")
)
