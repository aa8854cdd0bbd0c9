// SPDX-License-Identifier: MIT

package config

// HandleChange exposes the file-event handler to config_test.
var HandleChange = handleChange
