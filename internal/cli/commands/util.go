// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "strconv"

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
