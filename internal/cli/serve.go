// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabot-dev/alphabot-tui/internal/server"
)

// =============================================================================
// SERVE COMMAND
// =============================================================================

// HandleServe runs the local mock backend. Useful for demos and for
// developing the client without a real model behind it.
func HandleServe(args []string) {
	parser := NewArgParser(args)

	port := server.DefaultPort
	if raw := parser.Flag("port"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 || p > 65535 {
			fmt.Fprintf(os.Stderr, "invalid --port %q\n", raw)
			os.Exit(2)
		}
		port = p
	}

	fmt.Printf("alphabot mock backend listening on http://127.0.0.1:%d\n", port)
	if err := server.New().ListenAndServe(port); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
