// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package util

import "strings"

// QuoteArgForShell quotes an argument for safe use in a POSIX shell command.
// It uses single quotes and escapes any internal single quotes.
// Special handling for "~/" prefix allows shell tilde expansion (relies on remote shell behavior).
func QuoteArgForShell(arg string) string {
	// Handle ~/ prefix separately to allow shell expansion. This relies on the
	// remote shell correctly expanding ~ even when the rest is quoted.
	if strings.HasPrefix(arg, "~/") {
		quotedPart := strings.ReplaceAll(arg[2:], "'", `'\''`)
		return `~/'` + quotedPart + `'`
	}

	// For other arguments, replace internal ' with '\'' and wrap in single quotes.
	quotedArg := strings.ReplaceAll(arg, "'", `'\''`)
	return `'` + quotedArg + `'`
}

// QuoteCommand joins a command and its arguments into a single shell-safe
// string suitable for running through an SSH session.
func QuoteCommand(command string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, command)
	for _, arg := range args {
		parts = append(parts, QuoteArgForShell(arg))
	}
	return strings.Join(parts, " ")
}
