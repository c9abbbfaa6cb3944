// Rule-evaluation and scoring pipeline for anti-spam post analysis.
//
// This package (`github.com/meridian-social/palisade/engine`) scores a single post by running a fixed set of signal extractors over the post content and the author's recent history, combining the raw signals with configured weights, and comparing the total against flag/block thresholds. Posts that land in the FLAG band are persisted for manual review and queued for deeper analysis. The active ruleset is resolved per request through a cache-aside store, so rule changes roll out through cache invalidation rather than restarts.
//
// See `cmd/palisade` for the daemon built on this package.
package engine
