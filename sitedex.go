// Package sitedex ingests websites and makes their content retrievable via
// semantic search. It scrapes a site into normalized markdown artifacts under
// a durable session, chunks the artifacts into bounded retrieval units, and
// indexes the chunks as embedding vectors partitioned by collection and
// domain.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., fs/, sqlite/, gemini/).
package sitedex
