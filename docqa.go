// Package docqa answers questions about technical documentation sites.
// It crawls documentation from seed URLs, splits pages into overlapping
// chunks, embeds them into a persistent vector index, and answers questions
// with a language model that may only use the retrieved passages.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/).
package docqa
