// Package enrichment turns article text into a topic and a list of named
// entities using the shared model provider.
//
//	engine, err := enrichment.NewEngine(provider)
//	topic := engine.Classify(ctx, article.ClassificationText())
//	entities := engine.ExtractEntities(ctx, article.ClassificationText(), enrichment.DefaultMaxChars)
package enrichment
