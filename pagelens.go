// Package pagelens fetches web pages, extracts structured content from their
// markup and optionally hands that content to a language-model completion
// service for summarization, entity extraction, sentiment scoring,
// classification or keyword extraction.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, openai/, sqlite/).
package pagelens
