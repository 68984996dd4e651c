// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package server provides a local mock of the AlphaBot chat backend.

It implements the same wire contract the real backend exposes (POST
/api/chat streaming "data:" lines with a [DONE] terminator, and GET
/health) with canned market-flavored replies. Mentioning a ticker symbol
in the prompt triggers a scripted get_stock_quote tool exchange before the
text reply. The server exists for demos, development without a model, and
end-to-end tests of the client pipeline.
*/
package server
