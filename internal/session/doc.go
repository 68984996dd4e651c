// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package session owns chat history: the registry of saved conversations, the
active-session pointer, and the mutations user actions translate into.

The active session may be an unsaved draft. Drafts hold no turns and are
invisible to List and persistence; the first appended turn promotes the
draft into the registry, derives its title from that turn, and flushes it
to the store. Deleting the active session starts a fresh draft rather than
silently activating a neighbor.

Persistence goes through the Store interface and is best effort: a failed
flush is logged and the in-memory state stays authoritative for the rest of
the process.
*/
package session
