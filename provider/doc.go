// Package provider fetches raw news articles from upstream sources.
//
// A Gateway tries its tiers in order and returns the first non-empty result:
//
//  1. NewsAPI top headlines for a region (needs an API key)
//  2. NewsAPI keyword search sorted by recency (needs an API key)
//  3. RSS feeds (only when feeds and the API key are both configured)
//  4. synthetic filler, repeated to the requested limit
//
// Transport errors, timeouts, non-200 answers and empty payloads all fall
// through to the next tier. Fetch never returns an error. A fetch whose
// context is cancelled returns nothing rather than synthetic filler.
package provider
