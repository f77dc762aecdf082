// Package keyword is an offline ai.Provider: a keyword scorer over the news
// categories and a capitalisation-based entity tagger.
package keyword
